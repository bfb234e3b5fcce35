package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cbegin/vsge-go/internal/config"
)

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	envFile string
	noHuman bool
	dryRun  bool
	outFile string
	reverb  float32
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}
	root := &cobra.Command{
		Use:          "vsge",
		Short:        "Guitar-style performance scheduling engine",
		Long:         `Plays chords and chord progressions with rhythm patterns and humanized timing on a synth, a MIDI port or the log.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.envFile, "env-file", ".env", "file of VSGE_* settings to load before reading the environment")
	f.IntP("tempo", "t", a.cfg.Tempo, "tempo in beats per minute (60-200)")
	f.StringP("style", "s", a.cfg.Style, "rhythm style: folk, pop, jazz or rock")
	f.Int("beats-per-measure", a.cfg.BeatsPerMeasure, "beats in one measure")
	f.String("sink", a.cfg.Sink, "output: synth, midi or log")
	f.String("midi-port", a.cfg.MIDIPort, "MIDI output port number or name")
	f.Int("sample-rate", a.cfg.SampleRate, "synth sample rate")
	f.Int("latency-ms", a.cfg.LatencyMS, "synth device buffer in milliseconds")
	f.Int64("seed", a.cfg.Seed, "random seed for jitter and humanization (0 = time based)")
	f.BoolVar(&a.noHuman, "no-humanize", false, "play pattern timing and velocity exactly")
	f.String("log-level", a.cfg.LogLevel, "debug, info, warn or error")
	f.BoolVar(&a.dryRun, "dry-run", false, "print the dispatch timeline instead of playing")
	f.StringVarP(&a.outFile, "out", "o", "", "render to this WAV file instead of playing live")
	f.Float32Var(&a.reverb, "reverb", 0.3, "synth room reverb amount, 0 to 1")

	root.AddCommand(newChordCmd(a), newProgressionCmd(a), newStylesCmd())
	return root
}

// setup layers the env file, the environment and changed flags, in that
// order.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg := config.Load()
	f := cmd.Flags()
	if f.Changed("tempo") {
		cfg.Tempo, _ = f.GetInt("tempo")
	}
	if f.Changed("style") {
		cfg.Style, _ = f.GetString("style")
	}
	if f.Changed("beats-per-measure") {
		cfg.BeatsPerMeasure, _ = f.GetInt("beats-per-measure")
	}
	if f.Changed("sink") {
		cfg.Sink, _ = f.GetString("sink")
	}
	if f.Changed("midi-port") {
		cfg.MIDIPort, _ = f.GetString("midi-port")
	}
	if f.Changed("sample-rate") {
		cfg.SampleRate, _ = f.GetInt("sample-rate")
	}
	if f.Changed("latency-ms") {
		cfg.LatencyMS, _ = f.GetInt("latency-ms")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	if a.noHuman {
		cfg.Humanize = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "vsge",
		Level:           cfg.Level(),
		ReportTimestamp: true,
	})
	a.logger.Debug("config loaded", "tempo", cfg.Tempo, "style", cfg.Style, "sink", cfg.Sink, "seed", cfg.Seed)
	return nil
}

// context carries the logger to the playback code.
func (a *app) context(cmd *cobra.Command) context.Context {
	return log.WithContext(cmd.Context(), a.logger)
}
