package vsge

import (
	"math"
	"sort"
	"time"

	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/tempo"
	"github.com/cbegin/vsge-go/internal/theory"
)

type DispatchKind int

const (
	NoteOnDispatch DispatchKind = iota
	NoteOffDispatch
)

func (k DispatchKind) String() string {
	if k == NoteOffDispatch {
		return "note_off"
	}
	return "note_on"
}

// Dispatch is one sink command at a fixed offset from the start of a chord.
// Note-ons carry the sounding duration so sinks that time their own
// releases can use it.
type Dispatch struct {
	Kind     DispatchKind
	At       time.Duration
	Pitch    int
	Velocity int
	Duration time.Duration
	Event    rhythm.Event
	pair     int // links a note-off to its note-on
}

// Timeline resolves what PlayChord would schedule, without scheduling it or
// touching the engine's tempo.
func (e *Engine) Timeline(chord theory.Chord, pattern rhythm.Pattern, bpm int) ([]Dispatch, error) {
	if err := validateRequest(chord, pattern, bpm); err != nil {
		return nil, err
	}
	return e.timeline(chord, pattern, bpm, e.Humanization()), nil
}

func validateRequest(chord theory.Chord, pattern rhythm.Pattern, bpm int) error {
	if chord.IsZero() {
		return ErrEmptyChord
	}
	if pattern == nil {
		return ErrNilPattern
	}
	return tempo.Validate(bpm)
}

// timeline runs pattern, humanizer and tempo conversion in that order and
// returns dispatches sorted by time.
func (e *Engine) timeline(chord theory.Chord, pattern rhythm.Pattern, bpm int, h humanize.Settings) []Dispatch {
	beatMs := 60000 / float64(bpm)
	events := humanize.ApplyAll(pattern.Generate(chord, e.beatsPerMeasure, bpm, e.rng), h, e.rng)
	out := make([]Dispatch, 0, len(events)*2)
	for i, ev := range events {
		startMs := math.Max(ev.FinalStart(), 0) * beatMs
		durMs := math.Max(ev.Duration, 0) * beatMs
		on := Dispatch{
			Kind:     NoteOnDispatch,
			At:       tempo.MsToDuration(startMs),
			Pitch:    ev.Note.PitchNumber(),
			Velocity: ev.FinalVelocity(),
			Duration: tempo.MsToDuration(durMs),
			Event:    ev,
			pair:     i,
		}
		out = append(out, on)
		if ev.Duration > 0 {
			off := on
			off.Kind = NoteOffDispatch
			off.At = tempo.MsToDuration(startMs + durMs)
			out = append(out, off)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].At < out[b].At })
	return out
}
