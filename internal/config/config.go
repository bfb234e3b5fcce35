package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/tempo"
)

// Sink kinds.
const (
	SinkSynth = "synth"
	SinkMIDI  = "midi"
	SinkLog   = "log"
)

// Config holds the command-line driver's settings. Flags override it.
type Config struct {
	Tempo           int
	Style           string
	BeatsPerMeasure int

	// Output
	Sink       string // synth, midi or log
	MIDIPort   string // port number or name
	SampleRate int
	LatencyMS  int // audio device buffer

	Humanize bool
	Seed     int64 // 0 seeds from the clock

	LogLevel string
}

// LoadEnvFile reads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Missing files are not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() *Config {
	return &Config{
		Tempo:           getInt("VSGE_TEMPO", tempo.DefaultBPM),
		Style:           getEnv("VSGE_STYLE", rhythm.DefaultStyle),
		BeatsPerMeasure: getInt("VSGE_BEATS_PER_MEASURE", 4),
		Sink:            strings.ToLower(getEnv("VSGE_SINK", SinkSynth)),
		MIDIPort:        getEnv("VSGE_MIDI_PORT", "0"),
		SampleRate:      getInt("VSGE_SAMPLE_RATE", 48000),
		LatencyMS:       getInt("VSGE_LATENCY_MS", 50),
		Humanize:        getEnv("VSGE_HUMANIZE", "true") == "true",
		Seed:            int64(getInt("VSGE_SEED", 0)),
		LogLevel:        getEnv("VSGE_LOG_LEVEL", "info"),
	}
}

// Validate checks the values Load cannot fix up on its own.
func (c *Config) Validate() error {
	if err := tempo.Validate(c.Tempo); err != nil {
		return err
	}
	if c.BeatsPerMeasure <= 0 {
		return fmt.Errorf("beats per measure must be positive, got %d", c.BeatsPerMeasure)
	}
	switch c.Sink {
	case SinkSynth, SinkMIDI, SinkLog:
	default:
		return fmt.Errorf("unknown sink %q (want %s, %s or %s)", c.Sink, SinkSynth, SinkMIDI, SinkLog)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
