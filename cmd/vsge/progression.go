package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbegin/vsge-go"
	"github.com/cbegin/vsge-go/internal/tempo"
	"github.com/cbegin/vsge-go/internal/theory"
)

func newProgressionCmd(a *app) *cobra.Command {
	var beatsPerChord int
	cmd := &cobra.Command{
		Use:     "progression <key> <degrees>...",
		Aliases: []string{"prog"},
		Short:   "Plays a Roman-numeral chord progression",
		Long:    `Plays a progression in a key, e.g. "vsge progression C4 I-V-vi-IV" or "vsge prog A3 ii V I".`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := theory.ParseNote(args[0])
			if err != nil {
				return err
			}
			if beatsPerChord <= 0 {
				beatsPerChord = a.cfg.BeatsPerMeasure
			}
			prog, err := theory.ParseProgression(key, strings.Join(args[1:], " "), beatsPerChord)
			if err != nil {
				return err
			}
			if a.dryRun {
				return a.printProgression(cmd, prog)
			}
			length := a.span(float64(prog.TotalBeats()))
			return a.perform(a.context(cmd), cmd.OutOrStdout(), length, func(e *vsge.Engine) error {
				return e.PlayProgression(prog, a.pattern(), a.cfg.Tempo)
			})
		},
	}
	cmd.Flags().IntVar(&beatsPerChord, "beats-per-chord", 0, "beats each chord lasts (default one measure)")
	return cmd
}

func (a *app) printProgression(cmd *cobra.Command, prog theory.Progression) error {
	e, err := a.dryRunEngine()
	if err != nil {
		return err
	}
	chords, err := prog.Chords()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s @ %d bpm\n", prog, a.pattern().Name(), a.cfg.Tempo)
	beatMs := 60000 / float64(a.cfg.Tempo)
	for i, chord := range chords {
		dispatches, err := e.Timeline(chord, a.pattern(), a.cfg.Tempo)
		if err != nil {
			return err
		}
		offset := tempo.MsToDuration(float64(i*prog.BeatsPerChord()) * beatMs)
		fmt.Fprintf(w, "-- %s at %s\n", chord, offset.Round(time.Millisecond))
		printTimeline(w, offset, dispatches)
	}
	return nil
}
