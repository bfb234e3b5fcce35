// Package sink defines the device boundary the performance engine drives,
// plus the concrete sinks: an FM synth on the audio device, a MIDI output
// port and an in-memory recorder.
package sink

import (
	"time"

	"github.com/cbegin/vsge-go/internal/bounds"
)

const (
	MaxPitch    = 127
	MaxVelocity = 127
	MaxChannel  = 15
	MaxProgram  = 127
)

// Sink produces sound. PlayNote owns the note's length: the sink releases the
// note itself once duration has elapsed.
type Sink interface {
	PlayNote(pitch, velocity int, duration time.Duration) error
	StopAll() error
	SetInstrument(channel, program int) error
}

// ChordPlayer is implemented by sinks that can start several notes at once.
type ChordPlayer interface {
	PlayChord(pitches []int, velocity int, duration time.Duration) error
}

// NoteSwitch is implemented by sinks that accept separate note-on and
// note-off commands. The engine then schedules note-offs itself.
type NoteSwitch interface {
	NoteOn(pitch, velocity int) error
	NoteOff(pitch int) error
}

// ValidateNote checks pitch and velocity against the MIDI range.
func ValidateNote(pitch, velocity int) error {
	if err := bounds.Check("pitch", pitch, 0, MaxPitch); err != nil {
		return err
	}
	return bounds.Check("velocity", velocity, 0, MaxVelocity)
}

// ValidateInstrument checks a channel and program number.
func ValidateInstrument(channel, program int) error {
	if err := bounds.Check("channel", channel, 0, MaxChannel); err != nil {
		return err
	}
	return bounds.Check("program", program, 0, MaxProgram)
}
