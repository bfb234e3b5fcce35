package theory

import "fmt"

// VoicingType arranges chord tones across octaves for display.
type VoicingType int

const (
	RootPosition VoicingType = iota
	FirstInversion
	SecondInversion
	Close
	Open
	Drop2
	Spread
)

var voicingNames = map[VoicingType]string{
	RootPosition:    "Root Position",
	FirstInversion:  "First Inversion",
	SecondInversion: "Second Inversion",
	Close:           "Close Voicing",
	Open:            "Open Voicing",
	Drop2:           "Drop 2 Voicing",
	Spread:          "Spread Voicing",
}

func (v VoicingType) String() string {
	if name, ok := voicingNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VoicingType(%d)", int(v))
}

// Voice lays the chord's pitch classes out from baseOctave. Inversions need a
// triad and drop-2 needs four notes; when the chord is too small the result
// is empty. Notes that land outside the valid octave range are an error.
func (c Chord) Voice(baseOctave int, kind VoicingType) ([]Note, error) {
	type slot struct {
		index  int
		octave int
	}
	var slots []slot
	switch kind {
	case RootPosition:
		rootNum := c.root.PitchNumber()
		for i, n := range c.notes {
			slots = append(slots, slot{i, baseOctave + (n.PitchNumber()-rootNum)/12})
		}
	case FirstInversion:
		if len(c.notes) >= 3 {
			slots = []slot{{1, baseOctave}, {2, baseOctave}, {0, baseOctave + 1}}
		}
	case SecondInversion:
		if len(c.notes) >= 3 {
			slots = []slot{{2, baseOctave}, {0, baseOctave + 1}, {1, baseOctave + 1}}
		}
	case Close:
		for i := range c.notes {
			slots = append(slots, slot{i, baseOctave + i})
		}
	case Open:
		for i := range c.notes {
			slots = append(slots, slot{i, baseOctave + i*2})
		}
	case Drop2:
		if len(c.notes) >= 4 {
			slots = []slot{{0, baseOctave}, {2, baseOctave}, {3, baseOctave}, {1, baseOctave - 1}}
		}
	case Spread:
		for i := range c.notes {
			slots = append(slots, slot{i, baseOctave + i*3})
		}
	default:
		return c.Notes(), nil
	}
	out := make([]Note, 0, len(slots))
	for _, s := range slots {
		n, err := NewNote(c.notes[s.index].Pitch(), s.octave)
		if err != nil {
			return nil, fmt.Errorf("%s of %s: %w", kind, c, err)
		}
		out = append(out, n)
	}
	return out, nil
}
