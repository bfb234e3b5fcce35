// Package theory models pitch classes, notes, intervals, chords and
// progressions. Everything here is a pure value; there is no randomness and
// no I/O at this layer.
package theory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/vsge-go/internal/bounds"
)

const (
	MinOctave = 0
	MaxOctave = 10

	MinPitchNumber = 0
	MaxPitchNumber = 127

	// C0; anything lower needs an octave below MinOctave.
	lowestPitchNumber = (MinOctave + 1) * 12
)

type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Offset is the semitone distance from C.
func (p PitchClass) Offset() int { return int(p) }

func (p PitchClass) String() string {
	if p < C || p > B {
		return "PitchClass(" + strconv.Itoa(int(p)) + ")"
	}
	return pitchClassNames[p]
}

// ParsePitchClass accepts sharps ("F#", "Fs") and flats ("Bb").
func ParsePitchClass(s string) (PitchClass, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty pitch class")
	}
	letter := strings.ToUpper(s[:1])
	base := -1
	for i, name := range pitchClassNames {
		if name == letter {
			base = i
			break
		}
	}
	if base < 0 {
		return 0, fmt.Errorf("invalid pitch class %q", s)
	}
	switch strings.ToLower(s[1:]) {
	case "":
	case "#", "s", "sharp":
		base++
	case "b", "flat":
		base--
	default:
		return 0, fmt.Errorf("invalid pitch class %q", s)
	}
	return PitchClass((base + 12) % 12), nil
}

// Note is a pitch class in a given octave. The zero value is C0; use NewNote
// to build validated notes.
type Note struct {
	pitch  PitchClass
	octave int
}

// OutOfRangeError reports a transposition that leaves [0,127]. It unwraps to
// an *bounds.InvalidRangeError so callers can match either.
type OutOfRangeError struct {
	From      int
	Semitones int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("transposing pitch %d by %d leaves the range [%d, %d]",
		e.From, e.Semitones, MinPitchNumber, MaxPitchNumber)
}

func (e *OutOfRangeError) Unwrap() error {
	return &bounds.InvalidRangeError{
		Field: "pitch number",
		Value: e.From + e.Semitones,
		Min:   MinPitchNumber,
		Max:   MaxPitchNumber,
	}
}

// NewNote validates the octave and the resulting pitch number.
func NewNote(pitch PitchClass, octave int) (Note, error) {
	if pitch < C || pitch > B {
		return Note{}, &bounds.InvalidRangeError{Field: "pitch class", Value: int(pitch), Min: int(C), Max: int(B)}
	}
	if err := bounds.Check("octave", octave, MinOctave, MaxOctave); err != nil {
		return Note{}, err
	}
	n := Note{pitch: pitch, octave: octave}
	if err := bounds.Check("pitch number", n.PitchNumber(), MinPitchNumber, MaxPitchNumber); err != nil {
		return Note{}, err
	}
	return n, nil
}

// MustNote is NewNote for literals known to be valid.
func MustNote(pitch PitchClass, octave int) Note {
	n, err := NewNote(pitch, octave)
	if err != nil {
		panic(err)
	}
	return n
}

// NoteFromPitchNumber is the exact inverse of Note.PitchNumber. Numbers below
// 12 would need octave -1 and are rejected like any other invalid octave.
func NoteFromPitchNumber(num int) (Note, error) {
	if err := bounds.Check("pitch number", num, MinPitchNumber, MaxPitchNumber); err != nil {
		return Note{}, err
	}
	return NewNote(PitchClass(num%12), num/12-1)
}

// ParseNote reads scientific pitch notation such as "C4", "F#3" or "Bb2".
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(s) {
		return Note{}, fmt.Errorf("invalid note %q", s)
	}
	pitch, err := ParsePitchClass(s[:i])
	if err != nil {
		return Note{}, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Note{}, fmt.Errorf("invalid note %q: %w", s, err)
	}
	// "B#4" and "Cb4" wrap across the octave boundary.
	letterOffset := strings.Index("C D EF G A B", strings.ToUpper(s[:1]))
	switch {
	case letterOffset == 11 && pitch == C:
		octave++
	case letterOffset == 0 && pitch == B:
		octave--
	}
	return NewNote(pitch, octave)
}

func (n Note) Pitch() PitchClass { return n.pitch }
func (n Note) Octave() int       { return n.octave }

// PitchNumber is the linear 0-127 index, (octave+1)*12 + offset.
func (n Note) PitchNumber() int {
	return (n.octave+1)*12 + n.pitch.Offset()
}

// Transpose returns a new note; the receiver is never changed.
func (n Note) Transpose(semitones int) (Note, error) {
	target := n.PitchNumber() + semitones
	if target < lowestPitchNumber || target > MaxPitchNumber {
		return Note{}, &OutOfRangeError{From: n.PitchNumber(), Semitones: semitones}
	}
	return NoteFromPitchNumber(target)
}

func (n Note) Equal(o Note) bool { return n.PitchNumber() == o.PitchNumber() }

// Compare orders notes by pitch number.
func (n Note) Compare(o Note) int {
	a, b := n.PitchNumber(), o.PitchNumber()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n Note) String() string {
	return n.pitch.String() + strconv.Itoa(n.octave)
}
