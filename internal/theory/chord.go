package theory

import (
	"errors"
	"fmt"
	"strings"
)

// Quality selects a chord's fixed interval structure.
type Quality int

const (
	Major Quality = iota
	Minor
	Dominant7
	Minor7
	Major7
	Diminished
)

type qualityInfo struct {
	name      string
	symbol    string
	intervals []Interval
	aliases   []string
}

var qualities = map[Quality]qualityInfo{
	Major:      {name: "major", symbol: "", intervals: []Interval{MajorThird, PerfectFifth}, aliases: []string{"maj", "M"}},
	Minor:      {name: "minor", symbol: "m", intervals: []Interval{MinorThird, PerfectFifth}, aliases: []string{"min", "m", "-"}},
	Dominant7:  {name: "dominant7", symbol: "7", intervals: []Interval{MajorThird, PerfectFifth, MinorSeventh}, aliases: []string{"7", "dom7"}},
	Minor7:     {name: "minor7", symbol: "m7", intervals: []Interval{MinorThird, PerfectFifth, MinorSeventh}, aliases: []string{"m7", "min7", "-7"}},
	Major7:     {name: "major7", symbol: "maj7", intervals: []Interval{MajorThird, PerfectFifth, MajorSeventh}, aliases: []string{"maj7", "M7"}},
	Diminished: {name: "diminished", symbol: "°", intervals: []Interval{MinorThird, Tritone}, aliases: []string{"dim", "o", "°"}},
}

func (q Quality) String() string {
	if info, ok := qualities[q]; ok {
		return info.name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

func (q Quality) Symbol() string { return qualities[q].symbol }

// Intervals returns a copy of the quality's interval list.
func (q Quality) Intervals() []Interval {
	return append([]Interval(nil), qualities[q].intervals...)
}

// ParseQuality accepts the quality name or one of its chord-symbol aliases.
// Aliases are case-sensitive ("M7" is major seventh, "m7" minor seventh);
// full names are not.
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSpace(s)
	for q := Major; q <= Diminished; q++ {
		info := qualities[q]
		if strings.EqualFold(s, info.name) {
			return q, nil
		}
		for _, alias := range info.aliases {
			if s == alias {
				return q, nil
			}
		}
	}
	if s == "" {
		return Major, nil
	}
	return 0, fmt.Errorf("unknown chord quality %q", s)
}

var ErrEmptyChord = errors.New("chord has no notes")

// Chord is a root plus the notes produced by its quality's intervals. Notes
// are fixed at construction: index 0 is the root, 1 the third, 2 the fifth
// and 3 the seventh when present.
type Chord struct {
	root    Note
	quality Quality
	notes   []Note
}

func NewChord(root Note, quality Quality) (Chord, error) {
	info, ok := qualities[quality]
	if !ok {
		return Chord{}, fmt.Errorf("unknown chord quality %d", int(quality))
	}
	notes := make([]Note, 0, len(info.intervals)+1)
	notes = append(notes, root)
	for _, iv := range info.intervals {
		n, err := root.Transpose(iv.Semitones())
		if err != nil {
			return Chord{}, fmt.Errorf("build %s%s chord: %w", root, info.symbol, err)
		}
		notes = append(notes, n)
	}
	return Chord{root: root, quality: quality, notes: notes}, nil
}

func MustChord(root Note, quality Quality) Chord {
	c, err := NewChord(root, quality)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Chord) Root() Note       { return c.root }
func (c Chord) Quality() Quality { return c.quality }
func (c Chord) Symbol() string   { return c.quality.Symbol() }

// IsZero reports whether c was never built with NewChord.
func (c Chord) IsZero() bool { return len(c.notes) == 0 }

// Notes returns a copy so the chord stays immutable.
func (c Chord) Notes() []Note {
	return append([]Note(nil), c.notes...)
}

// PitchNumbers lists the chord tones as 0-127 pitch numbers.
func (c Chord) PitchNumbers() []int {
	out := make([]int, len(c.notes))
	for i, n := range c.notes {
		out[i] = n.PitchNumber()
	}
	return out
}

func (c Chord) String() string {
	return c.root.Pitch().String() + c.quality.Symbol()
}
