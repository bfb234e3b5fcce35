// Package rhythm expands a chord into a style-specific list of timed note
// events. Patterns are stateless tables; all randomness comes from the Rand
// passed to Generate.
package rhythm

import (
	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/cbegin/vsge-go/internal/theory"
)

const (
	MinFinalVelocity = 20
	MaxFinalVelocity = 127
)

// Technique names how a note is articulated.
type Technique string

const (
	Thumb  Technique = "thumb"
	Finger Technique = "finger"
	Down   Technique = "down"
	Up     Technique = "up"
	Block  Technique = "chord"
)

// Strummed reports whether notes with this technique sweep across strings.
func (t Technique) Strummed() bool { return t == Down || t == Up }

// Event is one note of a performance. Start and Duration are in beats
// relative to the start of the chord.
type Event struct {
	Note              theory.Note
	Voice             int // index into the chord's notes
	Start             float64
	Duration          float64
	Velocity          int
	TimingOffset      float64 // beats, may be negative
	VelocityVariation int
	Accent            bool
	Technique         Technique
}

// FinalVelocity is Velocity+VelocityVariation pinned to [20,127].
func (e Event) FinalVelocity() int {
	return bounds.Clamp(e.Velocity+e.VelocityVariation, MinFinalVelocity, MaxFinalVelocity)
}

// FinalStart is Start+TimingOffset. It can be negative; the scheduler clamps
// it to zero.
func (e Event) FinalStart() float64 {
	return e.Start + e.TimingOffset
}
