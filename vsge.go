// Package vsge turns chords and progressions into timed, humanized note
// performances and plays them on an injected sink.
//
//	eng, _ := vsge.New(vsge.WithSink(vsge.NewRecorder(nil)))
//	c := vsge.MustChord(vsge.MustNote(vsge.C, 4), vsge.Major)
//	_ = eng.PlayChordStyle(c, "jazz", 100)
//	eng.Wait()
package vsge

import (
	"errors"
	"fmt"

	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/sink"
	"github.com/cbegin/vsge-go/internal/theory"
)

type (
	PitchClass   = theory.PitchClass
	Note         = theory.Note
	Quality      = theory.Quality
	Chord        = theory.Chord
	Degree       = theory.Degree
	Progression  = theory.Progression
	Pattern      = rhythm.Pattern
	Event        = rhythm.Event
	Humanization = humanize.Settings
	Sink         = sink.Sink
	Recorder     = sink.Recorder
	SynthSink    = sink.Synth
	MIDISink     = sink.MIDI

	InvalidRangeError     = bounds.InvalidRangeError
	OutOfRangeError       = theory.OutOfRangeError
	UnsupportedStyleError = rhythm.UnsupportedStyleError
)

const (
	C      = theory.C
	CSharp = theory.CSharp
	D      = theory.D
	DSharp = theory.DSharp
	E      = theory.E
	F      = theory.F
	FSharp = theory.FSharp
	G      = theory.G
	GSharp = theory.GSharp
	A      = theory.A
	ASharp = theory.ASharp
	B      = theory.B
)

const (
	Major      = theory.Major
	Minor      = theory.Minor
	Dominant7  = theory.Dominant7
	Minor7     = theory.Minor7
	Major7     = theory.Major7
	Diminished = theory.Diminished
)

var (
	NewNote          = theory.NewNote
	MustNote         = theory.MustNote
	ParseNote        = theory.ParseNote
	NewChord         = theory.NewChord
	MustChord        = theory.MustChord
	ParseQuality     = theory.ParseQuality
	NewProgression   = theory.NewProgression
	ParseProgression = theory.ParseProgression
	LookupPattern    = rhythm.Lookup
	Styles           = rhythm.Styles
	NewRecorder      = sink.NewRecorder
	OpenSynth        = sink.OpenSynth
	NewMIDI          = sink.NewMIDI
	OpenMIDIPort     = sink.OpenMIDIPort
)

var (
	ErrNilSink          = errors.New("vsge: no sink configured")
	ErrNilPattern       = errors.New("vsge: nil pattern")
	ErrEmptyChord       = theory.ErrEmptyChord
	ErrEmptyProgression = theory.ErrEmptyProgression
)

// SinkDispatchError is logged when the sink fails while a scheduled
// dispatch fires. It never reaches the caller that requested the
// performance.
type SinkDispatchError struct {
	Op    string
	Pitch int
	Err   error
}

func (e *SinkDispatchError) Error() string {
	return fmt.Sprintf("sink %s pitch %d: %v", e.Op, e.Pitch, e.Err)
}

func (e *SinkDispatchError) Unwrap() error { return e.Err }
