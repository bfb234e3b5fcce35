package theory

import "fmt"

// Interval is a named semitone distance from unison to octave.
type Interval int

const (
	Unison Interval = iota
	MinorSecond
	MajorSecond
	MinorThird
	MajorThird
	PerfectFourth
	Tritone
	PerfectFifth
	MinorSixth
	MajorSixth
	MinorSeventh
	MajorSeventh
	Octave
)

var intervalSymbols = [...]string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}

func (i Interval) Semitones() int { return int(i) }

func (i Interval) Symbol() string {
	if i < Unison || i > Octave {
		return "?"
	}
	return intervalSymbols[i]
}

func (i Interval) String() string { return i.Symbol() }

// IntervalFromSemitones folds compound intervals into a single octave, so 12
// maps to Unison just like 0 does.
func IntervalFromSemitones(semitones int) (Interval, error) {
	if semitones < 0 {
		return 0, fmt.Errorf("invalid semitone count: %d", semitones)
	}
	return Interval(semitones % 12), nil
}
