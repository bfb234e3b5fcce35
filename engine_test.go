package vsge

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/schedule"
	"github.com/cbegin/vsge-go/internal/sink"
)

type harness struct {
	engine *Engine
	clock  *schedule.ManualClock
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, s sink.Sink, opts ...EngineOption) *harness {
	t.Helper()
	clock := schedule.NewManualClock(time.Unix(0, 0))
	logs := &bytes.Buffer{}
	base := []EngineOption{
		WithSink(s),
		WithClock(clock),
		WithLogger(log.New(logs)),
		WithSeed(1),
		WithHumanization(humanize.Off()),
	}
	eng, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return &harness{engine: eng, clock: clock, logs: logs}
}

func cMajor() Chord { return MustChord(MustNote(C, 4), Major) }

func pitchCounts(calls []sink.Call, kind sink.CallKind) map[int]int {
	out := map[int]int{}
	for _, c := range calls {
		if c.Kind == kind {
			for _, p := range c.Pitches {
				out[p]++
			}
		}
	}
	return out
}

func TestNewRequiresSink(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrNilSink)

	_, err = New(WithSink(NewRecorder(nil)), WithDefaultStyle("polka"))
	var styleErr *UnsupportedStyleError
	assert.True(t, errors.As(err, &styleErr))
}

func TestStopOnIdleIsNoop(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.Stop())
	assert.Empty(t, rec.Calls())
	assert.Equal(t, Idle, h.engine.State())
}

func TestPlayChordDispatchesEveryEvent(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)

	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "pop", 120))
	assert.True(t, h.engine.IsPlaying())
	assert.Equal(t, 120, h.engine.Tempo())
	assert.Empty(t, rec.Calls(), "nothing fires before the clock moves")

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 24, rec.Count(sink.CallPlayNote))
	assert.Equal(t, map[int]int{60: 8, 64: 8, 67: 8}, pitchCounts(rec.Calls(), sink.CallPlayNote))
	assert.Zero(t, h.engine.Pending())

	for _, c := range rec.Calls() {
		assert.InDelta(t, 150*time.Millisecond, c.Duration, float64(time.Millisecond), "0.3 beats at 120 bpm")
		assert.GreaterOrEqual(t, c.Velocity, rhythm.MinFinalVelocity)
	}
}

func TestPlayCallsAreAdditive(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "rock", 120))
	require.NoError(t, h.engine.PlayChordStyle(MustChord(MustNote(A, 3), Minor), "rock", 120))
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, map[int]int{60: 4, 67: 4, 57: 4, 64: 4}, pitchCounts(rec.Calls(), sink.CallPlayNote))
}

func TestPausedDispatchesNeverReachSink(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "rock", 120))

	h.clock.Advance(250 * time.Millisecond)
	before := rec.Count(sink.CallPlayNote)
	assert.Equal(t, 2, before, "root and fifth on beat one")

	h.engine.Pause()
	assert.True(t, h.engine.IsPaused())
	assert.False(t, h.engine.IsPlaying())
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, before, rec.Count(sink.CallPlayNote))

	h.engine.Resume()
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, before, rec.Count(sink.CallPlayNote), "dropped dispatches are not replayed")
	assert.True(t, h.engine.IsPlaying())
}

func TestStopCancelsPending(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "pop", 120))
	h.clock.Advance(100 * time.Millisecond)
	played := rec.Count(sink.CallPlayNote)

	require.NoError(t, h.engine.Stop())
	assert.Equal(t, 1, rec.Count(sink.CallStopAll))
	assert.Zero(t, h.engine.Pending())
	assert.Equal(t, Idle, h.engine.State())

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, played, rec.Count(sink.CallPlayNote))

	require.NoError(t, h.engine.Stop())
	assert.Equal(t, 1, rec.Count(sink.CallStopAll), "second stop is a no-op")
}

func TestInvalidRequestsFailBeforeScheduling(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	pop, err := LookupPattern("pop")
	require.NoError(t, err)

	err = h.engine.PlayChord(cMajor(), pop, 250)
	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 120, h.engine.Tempo())

	assert.ErrorIs(t, h.engine.PlayChord(Chord{}, pop, 120), ErrEmptyChord)
	assert.ErrorIs(t, h.engine.PlayChord(cMajor(), nil, 120), ErrNilPattern)
	assert.ErrorIs(t, h.engine.PlayProgression(Progression{}, pop, 120), ErrEmptyProgression)

	assert.Zero(t, h.engine.Pending())
	assert.Equal(t, Idle, h.engine.State())
	h.clock.Advance(time.Minute)
	assert.Empty(t, rec.Calls())
}

func TestUnsupportedStyleFallsBack(t *testing.T) {
	_, err := LookupPattern("polka")
	var styleErr *UnsupportedStyleError
	require.True(t, errors.As(err, &styleErr))

	rec := NewRecorder(nil)
	h := newHarness(t, rec, WithDefaultStyle("rock"))
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "polka", 120))
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 8, rec.Count(sink.CallPlayNote))
	assert.Contains(t, h.logs.String(), "unsupported style")
}

func TestUnknownStyleFallsBackToFolk(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)

	fallback := h.engine.PatternFor("polka")
	assert.Equal(t, "Folk Fingerpicking", fallback.Name())

	dispatches, err := h.engine.Timeline(cMajor(), fallback, 120)
	require.NoError(t, err)
	var ons []Dispatch
	for _, d := range dispatches {
		if d.Kind == NoteOnDispatch {
			ons = append(ons, d)
		}
	}
	require.Len(t, ons, 8)
	assert.Equal(t, rhythm.Thumb, ons[0].Event.Technique)
	assert.Equal(t, 60, ons[0].Pitch)

	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "polka", 120))
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, map[int]int{60: 2, 64: 2, 67: 4}, pitchCounts(rec.Calls(), sink.CallPlayNote))
	assert.Contains(t, h.logs.String(), "unsupported style")
}

func TestSinkErrorDoesNotAbortSiblings(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Fail = func(pitch int) error {
		if pitch == 64 {
			return errors.New("stuck key")
		}
		return nil
	}
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "pop", 120))
	h.clock.Advance(3 * time.Second)

	assert.Equal(t, map[int]int{60: 8, 67: 8}, pitchCounts(rec.Calls(), sink.CallPlayNote))
	assert.Contains(t, h.logs.String(), "dispatch failed")
	assert.Contains(t, h.logs.String(), "stuck key")
}

func TestNoteSwitchSinkGetsNoteOffs(t *testing.T) {
	rec := sink.NewSwitchRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "jazz", 120))
	h.clock.Advance(5 * time.Second)

	assert.Equal(t, 12, rec.Count(sink.CallNoteOn))
	assert.Equal(t, 12, rec.Count(sink.CallNoteOff))
	assert.Zero(t, rec.Count(sink.CallPlayNote))
}

func TestPauseDropsNoteOffsForUnplayedNotes(t *testing.T) {
	rec := sink.NewSwitchRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "rock", 120))
	h.clock.Advance(100 * time.Millisecond)
	h.engine.Pause()
	h.clock.Advance(5 * time.Second)

	assert.Equal(t, 2, rec.Count(sink.CallNoteOn))
	assert.Equal(t, 2, rec.Count(sink.CallNoteOff), "notes already sounding are still released")
}

func TestProgressionTiming(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	prog, err := ParseProgression(MustNote(C, 4), "I-V-vi-IV", 4)
	require.NoError(t, err)

	require.NoError(t, h.engine.PlayProgressionStyle(prog, "rock", 120))
	h.clock.Advance(1900 * time.Millisecond)
	assert.Equal(t, map[int]int{60: 4, 67: 4}, pitchCounts(rec.Calls(), sink.CallPlayNote))

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, map[int]int{60: 4, 67: 8, 74: 4}, pitchCounts(rec.Calls(), sink.CallPlayNote))

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 32, rec.Count(sink.CallPlayNote))
	assert.Zero(t, h.engine.Pending())
}

func TestProgressionChordsFollowTempoChanges(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	prog, err := ParseProgression(MustNote(C, 4), "I-V", 4)
	require.NoError(t, err)
	require.NoError(t, h.engine.PlayProgressionStyle(prog, "rock", 120))

	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.engine.SetTempo(60))

	// the V chord still starts at 2s but its beats are a second apart
	h.clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, 10, rec.Count(sink.CallPlayNote))
	assert.Equal(t, map[int]int{60: 4, 67: 5, 74: 1}, pitchCounts(rec.Calls(), sink.CallPlayNote))

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 16, rec.Count(sink.CallPlayNote))
	assert.Equal(t, 60, h.engine.Tempo())
}

func TestProgressionSkipsChordsWhilePaused(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	prog, err := ParseProgression(MustNote(C, 4), "I-V-vi-IV", 4)
	require.NoError(t, err)
	require.NoError(t, h.engine.PlayProgressionStyle(prog, "rock", 120))

	h.clock.Advance(1900 * time.Millisecond)
	h.engine.Pause()
	h.clock.Advance(200 * time.Millisecond)
	h.engine.Resume()
	h.clock.Advance(10 * time.Second)

	counts := pitchCounts(rec.Calls(), sink.CallPlayNote)
	assert.Zero(t, counts[74], "the V chord's fifth never sounds")
	assert.Equal(t, 4, counts[69], "vi chord root")
	assert.Equal(t, 4, counts[65], "IV chord root")
}

func TestTimelineIsSortedAndPaired(t *testing.T) {
	h := newHarness(t, NewRecorder(nil))
	rock, err := LookupPattern("rock")
	require.NoError(t, err)

	dispatches, err := h.engine.Timeline(cMajor(), rock, 100)
	require.NoError(t, err)
	require.Len(t, dispatches, 16)
	assert.Equal(t, 120, h.engine.Tempo(), "timeline leaves tempo alone")

	ons := map[int]Dispatch{}
	for i, d := range dispatches {
		if i > 0 {
			assert.GreaterOrEqual(t, d.At, dispatches[i-1].At)
		}
		switch d.Kind {
		case NoteOnDispatch:
			ons[d.pair] = d
		case NoteOffDispatch:
			on, ok := ons[d.pair]
			require.True(t, ok, "note-off before its note-on")
			assert.InDelta(t, on.At+on.Duration, d.At, float64(2*time.Microsecond))
			assert.InDelta(t, 480*time.Millisecond, on.Duration, float64(time.Microsecond), "0.8 beats at 100 bpm")
		}
	}
	assert.Len(t, ons, 8)

	_, err = h.engine.Timeline(cMajor(), rock, 10)
	assert.Error(t, err)
}

func TestHumanizationSettings(t *testing.T) {
	h := newHarness(t, NewRecorder(nil))
	require.NoError(t, h.engine.SetStyleHumanization("jazz"))
	got := h.engine.Humanization()
	assert.True(t, got.SwingEnabled())

	got.SetSwingEnabled(false)
	assert.True(t, h.engine.Humanization().SwingEnabled(), "snapshot is a copy")

	assert.Error(t, h.engine.SetStyleHumanization("polka"))
	assert.True(t, h.engine.Humanization().SwingEnabled())
}

func TestTempoAndMeasure(t *testing.T) {
	h := newHarness(t, NewRecorder(nil), WithBeatsPerMeasure(3))
	require.NoError(t, h.engine.SetTempo(90))
	assert.Equal(t, 2*time.Second, h.engine.MeasureDuration())
	assert.Error(t, h.engine.SetTempo(59))
	assert.Equal(t, 90, h.engine.Tempo())
}

func TestStrikeUsesPlayNoteWithoutChordSupport(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.Strike(cMajor(), 100, 2))
	assert.Equal(t, map[int]int{60: 1, 64: 1, 67: 1}, pitchCounts(rec.Calls(), sink.CallPlayNote))
	assert.Equal(t, time.Second, rec.Calls()[0].Duration)
	assert.Error(t, h.engine.Strike(cMajor(), 200, 1))
}

func TestCloseRejectsNewWork(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.PlayChordStyle(cMajor(), "pop", 120))
	require.NoError(t, h.engine.Close())
	require.NoError(t, h.engine.Close())

	assert.ErrorIs(t, h.engine.PlayChordStyle(cMajor(), "pop", 120), schedule.ErrClosed)
	h.clock.Advance(5 * time.Second)
	assert.Zero(t, rec.Count(sink.CallPlayNote))
	assert.Equal(t, 1, rec.Count(sink.CallStopAll))
}

func TestSetInstrumentReachesSink(t *testing.T) {
	rec := NewRecorder(nil)
	h := newHarness(t, rec)
	require.NoError(t, h.engine.SetInstrument(1, 25))
	require.Equal(t, 1, rec.Count(sink.CallSetInstrument))
	assert.Equal(t, 25, rec.Calls()[0].Program)
	assert.Error(t, h.engine.SetInstrument(16, 0))
}
