// Package tempo converts between beats and wall-clock time.
package tempo

import (
	"sync/atomic"
	"time"

	"github.com/cbegin/vsge-go/internal/bounds"
)

const (
	MinBPM     = 60
	MaxBPM     = 200
	DefaultBPM = 120
)

// Controller holds the current tempo. It is safe for concurrent use; a
// tempo change only affects conversions made after it.
type Controller struct {
	bpm atomic.Int64
}

func New() *Controller {
	c := &Controller{}
	c.bpm.Store(DefaultBPM)
	return c
}

// NewWithBPM validates bpm like SetBPM.
func NewWithBPM(bpm int) (*Controller, error) {
	c := New()
	if err := c.SetBPM(bpm); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports whether bpm is an allowed tempo.
func Validate(bpm int) error {
	return bounds.Check("tempo", bpm, MinBPM, MaxBPM)
}

// SetBPM rejects values outside [60,200]; it never clamps.
func (c *Controller) SetBPM(bpm int) error {
	if err := Validate(bpm); err != nil {
		return err
	}
	c.bpm.Store(int64(bpm))
	return nil
}

func (c *Controller) BPM() int { return int(c.bpm.Load()) }

// BeatDurationMs is 60000/BPM.
func (c *Controller) BeatDurationMs() float64 {
	return 60000 / float64(c.bpm.Load())
}

func (c *Controller) MeasureDurationMs(beatsPerMeasure int) float64 {
	return c.BeatDurationMs() * float64(beatsPerMeasure)
}

func (c *Controller) BeatsToMs(beats float64) float64 {
	return beats * c.BeatDurationMs()
}

func (c *Controller) MsToBeats(ms float64) float64 {
	return ms / c.BeatDurationMs()
}

func (c *Controller) BeatsToDuration(beats float64) time.Duration {
	return MsToDuration(c.BeatsToMs(beats))
}

// MsToDuration rounds fractional milliseconds to the nearest microsecond.
func MsToDuration(ms float64) time.Duration {
	return time.Duration(ms*1000+0.5) * time.Microsecond
}
