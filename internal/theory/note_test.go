package theory

import (
	"errors"
	"testing"

	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRoundTripsThroughPitchNumber(t *testing.T) {
	for octave := MinOctave; octave <= MaxOctave; octave++ {
		for pc := C; pc <= B; pc++ {
			n, err := NewNote(pc, octave)
			if err != nil {
				// G9 is the highest representable note.
				require.Greater(t, (octave+1)*12+pc.Offset(), MaxPitchNumber)
				continue
			}
			back, err := NoteFromPitchNumber(n.PitchNumber())
			require.NoError(t, err)
			assert.Equal(t, n, back)
		}
	}
	for num := lowestPitchNumber; num <= MaxPitchNumber; num++ {
		n, err := NoteFromPitchNumber(num)
		require.NoError(t, err)
		assert.Equal(t, num, n.PitchNumber())
	}
	for num := MinPitchNumber; num < lowestPitchNumber; num++ {
		_, err := NoteFromPitchNumber(num)
		assert.Error(t, err, "pitch %d needs octave -1", num)
	}
}

func TestNoteRejectsInvalidOctave(t *testing.T) {
	for _, octave := range []int{-1, 11} {
		_, err := NewNote(C, octave)
		var rangeErr *bounds.InvalidRangeError
		require.True(t, errors.As(err, &rangeErr), "octave %d", octave)
		assert.Equal(t, "octave", rangeErr.Field)
	}
	_, err := NewNote(GSharp, 9)
	assert.Error(t, err, "G#9 is pitch 128")
}

func TestTransposeIsReversible(t *testing.T) {
	for num := lowestPitchNumber; num <= MaxPitchNumber; num++ {
		n, err := NoteFromPitchNumber(num)
		require.NoError(t, err)
		for s := -24; s <= 24; s++ {
			if num+s < lowestPitchNumber || num+s > MaxPitchNumber {
				continue
			}
			up, err := n.Transpose(s)
			require.NoError(t, err)
			back, err := up.Transpose(-s)
			require.NoError(t, err)
			assert.True(t, back.Equal(n))
		}
	}
}

func TestTransposeOutOfRange(t *testing.T) {
	top, _ := NoteFromPitchNumber(127)
	_, err := top.Transpose(1)

	var outErr *OutOfRangeError
	require.True(t, errors.As(err, &outErr))
	assert.Equal(t, 127, outErr.From)

	var rangeErr *bounds.InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr))

	c4 := MustNote(C, 4)
	same := c4
	_, _ = c4.Transpose(7)
	assert.Equal(t, same, c4, "receiver must not change")

	_, err = MustNote(D, 0).Transpose(-3)
	assert.True(t, errors.As(err, &outErr), "below C0")
}

func TestNoteOrderingAndFormatting(t *testing.T) {
	c4 := MustNote(C, 4)
	assert.Equal(t, 60, c4.PitchNumber())
	assert.Equal(t, "C4", c4.String())
	assert.Equal(t, -1, c4.Compare(MustNote(CSharp, 4)))
	assert.Equal(t, 1, MustNote(C, 5).Compare(MustNote(B, 4)))
	assert.Equal(t, 0, c4.Compare(c4))
}

func TestParseNote(t *testing.T) {
	cases := map[string]int{
		"C4":  60,
		"A4":  69,
		"F#3": 54,
		"Bb2": 46,
		"B#4": 72,
		"Cb4": 59,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			n, err := ParseNote(in)
			require.NoError(t, err)
			assert.Equal(t, want, n.PitchNumber())
		})
	}
	for _, bad := range []string{"", "4", "H4", "C", "C11"} {
		_, err := ParseNote(bad)
		assert.Error(t, err, bad)
	}
}

func TestIntervalLookup(t *testing.T) {
	iv, err := IntervalFromSemitones(7)
	require.NoError(t, err)
	assert.Equal(t, PerfectFifth, iv)
	assert.Equal(t, "P5", iv.Symbol())

	iv, err = IntervalFromSemitones(14)
	require.NoError(t, err)
	assert.Equal(t, MajorSecond, iv)

	_, err = IntervalFromSemitones(-1)
	assert.Error(t, err)
	assert.Equal(t, 12, Octave.Semitones())
}
