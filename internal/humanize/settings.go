// Package humanize perturbs pattern events so a performance does not sound
// machine-quantized. Settings is a plain value; the functions here never
// modify the settings they are given.
package humanize

import (
	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/cbegin/vsge-go/internal/rhythm"
)

const (
	MaxTimingRange   = 0.2
	MaxVelocityRange = 30
	MaxDurationRange = 0.5
	MaxStrumDelay    = 0.1
	MaxSwingRatio    = 0.5
)

// Settings holds each perturbation's magnitude and enable flag. Timing
// range and strum delay are in beats; duration range is a fraction of the
// note length. Setters clamp into the allowed range.
type Settings struct {
	timingRange   float64
	timingOn      bool
	velocityRange int
	velocityOn    bool
	durationRange float64
	durationOn    bool
	strumDelay    float64
	strumOn       bool
	swingRatio    float64
	swingOn       bool
}

// Default returns the general-purpose settings.
func Default() Settings {
	return Settings{
		timingRange:   0.05,
		timingOn:      true,
		velocityRange: 10,
		velocityOn:    true,
		durationRange: 0.1,
		durationOn:    true,
		strumDelay:    0.02,
		strumOn:       true,
	}
}

// Off disables every perturbation.
func Off() Settings { return Settings{} }

func (s Settings) TimingRange() float64   { return s.timingRange }
func (s Settings) TimingEnabled() bool    { return s.timingOn }
func (s Settings) VelocityRange() int     { return s.velocityRange }
func (s Settings) VelocityEnabled() bool  { return s.velocityOn }
func (s Settings) DurationRange() float64 { return s.durationRange }
func (s Settings) DurationEnabled() bool  { return s.durationOn }
func (s Settings) StrumDelay() float64    { return s.strumDelay }
func (s Settings) StrumEnabled() bool     { return s.strumOn }
func (s Settings) SwingRatio() float64    { return s.swingRatio }
func (s Settings) SwingEnabled() bool     { return s.swingOn }

func (s *Settings) SetTimingEnabled(on bool)   { s.timingOn = on }
func (s *Settings) SetVelocityEnabled(on bool) { s.velocityOn = on }
func (s *Settings) SetDurationEnabled(on bool) { s.durationOn = on }
func (s *Settings) SetStrumEnabled(on bool)    { s.strumOn = on }
func (s *Settings) SetSwingEnabled(on bool)    { s.swingOn = on }

func (s *Settings) SetTimingRange(v float64) {
	s.timingRange = bounds.Clamp(v, 0, MaxTimingRange)
}

func (s *Settings) SetVelocityRange(v int) {
	s.velocityRange = bounds.Clamp(v, 0, MaxVelocityRange)
}

func (s *Settings) SetDurationRange(v float64) {
	s.durationRange = bounds.Clamp(v, 0, MaxDurationRange)
}

func (s *Settings) SetStrumDelay(v float64) {
	s.strumDelay = bounds.Clamp(v, 0, MaxStrumDelay)
}

func (s *Settings) SetSwingRatio(v float64) {
	s.swingRatio = bounds.Clamp(v, 0, MaxSwingRatio)
}

var presets = map[string]func() Settings{
	"folk": func() Settings {
		s := Default()
		s.SetTimingRange(0.05)
		s.SetVelocityRange(15)
		s.SetDurationRange(0.15)
		s.SetStrumEnabled(false)
		s.SetSwingEnabled(false)
		return s
	},
	"pop": func() Settings {
		s := Default()
		s.SetTimingRange(0.03)
		s.SetVelocityRange(8)
		s.SetDurationRange(0.1)
		s.SetStrumDelay(0.02)
		s.SetStrumEnabled(true)
		s.SetSwingEnabled(false)
		return s
	},
	"jazz": func() Settings {
		s := Default()
		s.SetTimingRange(0.02)
		s.SetVelocityRange(6)
		s.SetDurationRange(0.08)
		s.SetStrumEnabled(false)
		s.SetSwingRatio(0.3)
		s.SetSwingEnabled(true)
		return s
	},
	"rock": func() Settings {
		s := Default()
		s.SetTimingRange(0.01)
		s.SetVelocityRange(4)
		s.SetDurationRange(0.05)
		s.SetStrumDelay(0.01)
		s.SetStrumEnabled(true)
		s.SetSwingEnabled(false)
		return s
	},
}

// Preset returns the settings tuned for a style. Style aliases are accepted.
func Preset(style string) (Settings, error) {
	name, err := rhythm.Canonical(style)
	if err != nil {
		return Settings{}, err
	}
	return presets[name](), nil
}
