package vsge

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/schedule"
	"github.com/cbegin/vsge-go/internal/sink"
)

const DefaultBeatsPerMeasure = 4

type EngineOption func(*engineConfig)

type engineConfig struct {
	sink            sink.Sink
	clock           schedule.Clock
	logger          *log.Logger
	rng             rhythm.Rand
	beatsPerMeasure int
	defaultStyle    string
	humanization    humanize.Settings
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		clock:           schedule.RealClock(),
		logger:          log.NewWithOptions(os.Stderr, log.Options{Prefix: "vsge"}),
		rng:             rhythm.DefaultRand(),
		beatsPerMeasure: DefaultBeatsPerMeasure,
		defaultStyle:    rhythm.DefaultStyle,
		humanization:    humanize.Default(),
	}
}

// WithSink sets the device the engine plays on. It is required.
func WithSink(s sink.Sink) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sink = s
	}
}

// WithClock replaces the wall clock, typically with a schedule.ManualClock
// in tests.
func WithClock(c schedule.Clock) EngineOption {
	return func(cfg *engineConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

func WithLogger(l *log.Logger) EngineOption {
	return func(cfg *engineConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSeed makes pattern jitter and humanization reproducible.
func WithSeed(seed int64) EngineOption {
	return func(cfg *engineConfig) {
		cfg.rng = rhythm.NewLockedRand(seed)
	}
}

func WithBeatsPerMeasure(n int) EngineOption {
	return func(cfg *engineConfig) {
		if n > 0 {
			cfg.beatsPerMeasure = n
		}
	}
}

// WithDefaultStyle sets the pattern used when a requested style name is
// unknown.
func WithDefaultStyle(style string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.defaultStyle = style
	}
}

func WithHumanization(s humanize.Settings) EngineOption {
	return func(cfg *engineConfig) {
		cfg.humanization = s
	}
}
