// Package schedule runs one-shot deferred tasks that can be cancelled
// individually or all at once.
package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrClosed = errors.New("scheduler closed")

// Handle identifies a scheduled task.
type Handle uint64

// PanicError wraps a value recovered from a task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("scheduled task panicked: %v", e.Value) }

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithErrorHandler receives a *PanicError for every task that panics.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// Scheduler owns a set of pending tasks. A task that panics is recovered so
// the remaining tasks still run.
type Scheduler struct {
	clock   Clock
	onError func(error)

	mu     sync.Mutex
	tasks  map[Handle]Timer
	next   Handle
	closed bool
	wg     sync.WaitGroup
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: RealClock(),
		tasks: make(map[Handle]Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Clock() Clock { return s.clock }

// After runs fn once d has elapsed. Negative delays run as soon as possible.
func (s *Scheduler) After(d time.Duration, fn func()) (Handle, error) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.next++
	h := s.next
	s.wg.Add(1)
	s.tasks[h] = s.clock.AfterFunc(d, func() { s.run(h, fn) })
	return h, nil
}

func (s *Scheduler) run(h Handle, fn func()) {
	s.mu.Lock()
	_, ok := s.tasks[h]
	delete(s.tasks, h)
	s.mu.Unlock()
	if !ok {
		return
	}
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil && s.onError != nil {
			s.onError(&PanicError{Value: r})
		}
	}()
	fn()
}

// Cancel stops a pending task. It reports whether the task was still pending.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	t, ok := s.tasks[h]
	delete(s.tasks, h)
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.Stop()
	s.wg.Done()
	return true
}

// CancelAll stops every pending task and returns how many were cancelled.
// Tasks already running are not interrupted.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	timers := s.drainLocked()
	s.mu.Unlock()
	for _, t := range timers {
		t.Stop()
		s.wg.Done()
	}
	return len(timers)
}

func (s *Scheduler) drainLocked() []Timer {
	timers := make([]Timer, 0, len(s.tasks))
	for h, t := range s.tasks {
		timers = append(timers, t)
		delete(s.tasks, h)
	}
	return timers
}

// Pending counts tasks that have not started.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Wait blocks until no task is pending or running.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels everything and rejects further tasks.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.CancelAll()
	return nil
}
