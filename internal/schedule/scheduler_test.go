package schedule

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManual() (*Scheduler, *ManualClock) {
	clock := NewManualClock(time.Unix(0, 0))
	return New(WithClock(clock)), clock
}

func TestTasksFireInDeadlineOrder(t *testing.T) {
	s, clock := newManual()
	var order []int
	for i, d := range []time.Duration{30, 10, 20, 10} {
		i := i
		_, err := s.After(d*time.Millisecond, func() { order = append(order, i) })
		require.NoError(t, err)
	}
	assert.Equal(t, 4, s.Pending())

	clock.Advance(15 * time.Millisecond)
	assert.Equal(t, []int{1, 3}, order)

	clock.Advance(time.Second)
	assert.Equal(t, []int{1, 3, 2, 0}, order)
	assert.Zero(t, s.Pending())
	s.Wait()
}

func TestClockTimeAtFire(t *testing.T) {
	s, clock := newManual()
	var firedAt time.Time
	_, err := s.After(250*time.Millisecond, func() { firedAt = clock.Now() })
	require.NoError(t, err)
	clock.Advance(time.Second)
	assert.Equal(t, time.Unix(0, 0).Add(250*time.Millisecond), firedAt)
	assert.Equal(t, time.Unix(1, 0), clock.Now())
}

func TestCancel(t *testing.T) {
	s, clock := newManual()
	var fired atomic.Int32
	h, err := s.After(time.Millisecond, func() { fired.Add(1) })
	require.NoError(t, err)
	_, err = s.After(time.Millisecond, func() { fired.Add(10) })
	require.NoError(t, err)

	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h))
	clock.Advance(time.Second)
	assert.Equal(t, int32(10), fired.Load())
	assert.Zero(t, clock.Pending())
}

func TestCancelAll(t *testing.T) {
	s, clock := newManual()
	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		_, err := s.After(time.Duration(i)*time.Millisecond, func() { fired.Add(1) })
		require.NoError(t, err)
	}
	assert.Equal(t, 5, s.CancelAll())
	clock.Advance(time.Second)
	assert.Zero(t, fired.Load())
	s.Wait()
}

func TestTasksScheduledFromTasks(t *testing.T) {
	s, clock := newManual()
	var order []string
	_, err := s.After(10*time.Millisecond, func() {
		order = append(order, "outer")
		_, _ = s.After(5*time.Millisecond, func() { order = append(order, "inner") })
	})
	require.NoError(t, err)
	clock.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestPanicDoesNotStopSiblings(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var reported []error
	s := New(WithClock(clock), WithErrorHandler(func(err error) { reported = append(reported, err) }))

	var fired atomic.Int32
	_, _ = s.After(time.Millisecond, func() { panic("boom") })
	_, _ = s.After(2*time.Millisecond, func() { fired.Add(1) })
	clock.Advance(time.Second)

	assert.Equal(t, int32(1), fired.Load())
	require.Len(t, reported, 1)
	var panicErr *PanicError
	require.True(t, errors.As(reported[0], &panicErr))
	assert.Equal(t, "boom", panicErr.Value)
	s.Wait()
}

func TestClose(t *testing.T) {
	s, clock := newManual()
	var fired atomic.Int32
	_, _ = s.After(time.Millisecond, func() { fired.Add(1) })
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.After(time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrClosed)
	clock.Advance(time.Second)
	assert.Zero(t, fired.Load())
}

func TestRealClock(t *testing.T) {
	s := New()
	done := make(chan struct{})
	_, err := s.After(time.Millisecond, func() { close(done) })
	require.NoError(t, err)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
	s.Wait()
}
