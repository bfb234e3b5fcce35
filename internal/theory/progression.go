package theory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbegin/vsge-go/internal/bounds"
)

// Degree is a scale position carrying its semitone offset from the key and
// its default chord quality.
type Degree int

const (
	I Degree = iota
	II
	III
	IV
	V
	VI
	VII
)

type degreeInfo struct {
	offset  int
	symbol  string
	quality Quality
}

var degrees = [...]degreeInfo{
	I:   {0, "I", Major},
	II:  {2, "ii", Minor},
	III: {4, "iii", Minor},
	IV:  {5, "IV", Major},
	V:   {7, "V", Major},
	VI:  {9, "vi", Minor},
	VII: {11, "vii°", Diminished},
}

func (d Degree) valid() bool { return d >= I && d <= VII }

func (d Degree) Offset() int { return degrees[d].offset }

func (d Degree) Quality() Quality { return degrees[d].quality }

func (d Degree) String() string {
	if !d.valid() {
		return fmt.Sprintf("Degree(%d)", int(d))
	}
	return degrees[d].symbol
}

// ParseDegree accepts roman numerals in either case, with or without the
// diminished mark.
func ParseDegree(s string) (Degree, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimRight(t, "°o")
	for d := I; d <= VII; d++ {
		if strings.TrimRight(strings.ToLower(degrees[d].symbol), "°") == t {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown scale degree %q", s)
}

// Common progressions.
var (
	PopProgression = []Degree{I, V, VI, IV}
	Blues12Bar     = []Degree{I, I, I, I, IV, IV, I, I, V, IV, I, V}
	JazzIIVI       = []Degree{II, V, I}
	CircleOfFifths = []Degree{I, IV, VII, III, VI, II, V, I}
)

var ErrEmptyProgression = errors.New("progression has no degrees")

// Progression is a sequence of degrees in a key, each lasting beatsPerChord.
type Progression struct {
	key           Note
	degrees       []Degree
	beatsPerChord int
}

func NewProgression(key Note, seq []Degree, beatsPerChord int) (Progression, error) {
	if len(seq) == 0 {
		return Progression{}, ErrEmptyProgression
	}
	if beatsPerChord <= 0 {
		return Progression{}, &bounds.InvalidRangeError{Field: "beats per chord", Value: beatsPerChord, Min: 1, Max: "inf"}
	}
	for _, d := range seq {
		if !d.valid() {
			return Progression{}, fmt.Errorf("unknown scale degree %d", int(d))
		}
	}
	return Progression{
		key:           key,
		degrees:       append([]Degree(nil), seq...),
		beatsPerChord: beatsPerChord,
	}, nil
}

// ParseProgression reads degrees separated by '-', ',' or spaces, e.g.
// "I-V-vi-IV".
func ParseProgression(key Note, s string, beatsPerChord int) (Progression, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ',' || r == ' '
	})
	seq := make([]Degree, 0, len(fields))
	for _, f := range fields {
		d, err := ParseDegree(f)
		if err != nil {
			return Progression{}, err
		}
		seq = append(seq, d)
	}
	return NewProgression(key, seq, beatsPerChord)
}

func (p Progression) Key() Note          { return p.key }
func (p Progression) BeatsPerChord() int { return p.beatsPerChord }
func (p Progression) Len() int           { return len(p.degrees) }
func (p Progression) TotalBeats() int    { return len(p.degrees) * p.beatsPerChord }
func (p Progression) IsZero() bool       { return len(p.degrees) == 0 }

func (p Progression) Degrees() []Degree {
	return append([]Degree(nil), p.degrees...)
}

// ChordAt builds the chord for position i from the key and that degree.
func (p Progression) ChordAt(i int) (Chord, error) {
	if i < 0 || i >= len(p.degrees) {
		return Chord{}, &bounds.InvalidRangeError{Field: "chord index", Value: i, Min: 0, Max: len(p.degrees) - 1}
	}
	d := p.degrees[i]
	root, err := p.key.Transpose(d.Offset())
	if err != nil {
		return Chord{}, fmt.Errorf("degree %s in key %s: %w", d, p.key, err)
	}
	return NewChord(root, d.Quality())
}

func (p Progression) Chords() ([]Chord, error) {
	out := make([]Chord, 0, len(p.degrees))
	for i := range p.degrees {
		c, err := p.ChordAt(i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (p Progression) String() string {
	names := make([]string, len(p.degrees))
	for i, d := range p.degrees {
		names[i] = d.String()
	}
	return fmt.Sprintf("Key: %s | Progression: %s | %d beats per chord",
		p.key, strings.Join(names, " - "), p.beatsPerChord)
}
