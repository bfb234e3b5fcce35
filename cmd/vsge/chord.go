package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/vsge-go"
	"github.com/cbegin/vsge-go/internal/theory"
)

func newChordCmd(a *app) *cobra.Command {
	var (
		strike   bool
		velocity int
		beats    float64
	)
	cmd := &cobra.Command{
		Use:   "chord <root> [quality]",
		Short: "Plays one measure of a chord",
		Long: `Plays one measure of a chord in the selected style, e.g. "vsge chord C4 minor7".
With --strike the chord tones sound once, together.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chord, err := parseChord(args)
			if err != nil {
				return err
			}
			if a.dryRun {
				e, err := a.dryRunEngine()
				if err != nil {
					return err
				}
				dispatches, err := e.Timeline(chord, a.pattern(), a.cfg.Tempo)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s @ %d bpm\n", chord, a.pattern().Name(), a.cfg.Tempo)
				printTimeline(cmd.OutOrStdout(), 0, dispatches)
				return nil
			}
			length := a.span(float64(a.cfg.BeatsPerMeasure))
			if strike && beats > 0 {
				length = a.span(beats)
			}
			return a.perform(a.context(cmd), cmd.OutOrStdout(), length, func(e *vsge.Engine) error {
				if strike {
					if err := e.SetTempo(a.cfg.Tempo); err != nil {
						return err
					}
					if beats <= 0 {
						beats = float64(e.BeatsPerMeasure())
					}
					return e.Strike(chord, velocity, beats)
				}
				return e.PlayChord(chord, a.pattern(), a.cfg.Tempo)
			})
		},
	}
	cmd.Flags().BoolVar(&strike, "strike", false, "sound all chord tones once instead of playing the pattern")
	cmd.Flags().IntVar(&velocity, "velocity", 100, "velocity for --strike")
	cmd.Flags().Float64Var(&beats, "beats", 0, "length of --strike in beats (default one measure)")
	return cmd
}

func parseChord(args []string) (theory.Chord, error) {
	root, err := theory.ParseNote(args[0])
	if err != nil {
		return theory.Chord{}, err
	}
	quality := theory.Major
	if len(args) > 1 {
		if quality, err = theory.ParseQuality(args[1]); err != nil {
			return theory.Chord{}, err
		}
	}
	return theory.NewChord(root, quality)
}
