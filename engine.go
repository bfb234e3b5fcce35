package vsge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cbegin/vsge-go/internal/humanize"
	"github.com/cbegin/vsge-go/internal/rhythm"
	"github.com/cbegin/vsge-go/internal/schedule"
	"github.com/cbegin/vsge-go/internal/sink"
	"github.com/cbegin/vsge-go/internal/tempo"
	"github.com/cbegin/vsge-go/internal/theory"
)

type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "idle"
}

// Engine schedules performances on a sink. Play calls are additive: a new
// chord or progression is layered over whatever is already pending. All
// methods are safe for concurrent use.
type Engine struct {
	sink            sink.Sink
	sched           *schedule.Scheduler
	tempo           *tempo.Controller
	logger          *log.Logger
	rng             rhythm.Rand
	beatsPerMeasure int
	defaultPattern  rhythm.Pattern
	defaultStyle    string

	playing atomic.Bool
	paused  atomic.Bool
	epoch   atomic.Uint64 // bumped by Stop; tasks from older epochs do nothing

	mu     sync.Mutex
	human  humanize.Settings
	closed bool
}

func New(opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sink == nil {
		return nil, ErrNilSink
	}
	defaultPattern, err := rhythm.Lookup(cfg.defaultStyle)
	if err != nil {
		return nil, fmt.Errorf("default style: %w", err)
	}
	e := &Engine{
		sink:            cfg.sink,
		tempo:           tempo.New(),
		logger:          cfg.logger,
		rng:             cfg.rng,
		beatsPerMeasure: cfg.beatsPerMeasure,
		defaultPattern:  defaultPattern,
		defaultStyle:    cfg.defaultStyle,
		human:           cfg.humanization,
	}
	e.sched = schedule.New(
		schedule.WithClock(cfg.clock),
		schedule.WithErrorHandler(func(err error) {
			e.logger.Error("scheduled task failed", "err", err)
		}),
	)
	return e, nil
}

// Start moves an idle engine to playing. Play calls start the engine
// automatically.
func (e *Engine) Start() {
	if e.playing.CompareAndSwap(false, true) {
		e.paused.Store(false)
		e.logger.Info("playback started")
	}
}

// Pause suppresses note-on dispatches until Resume. Pending tasks stay
// scheduled and keep their original times.
func (e *Engine) Pause() {
	if !e.playing.Load() {
		return
	}
	if e.paused.CompareAndSwap(false, true) {
		e.logger.Info("playback paused")
	}
}

func (e *Engine) Resume() {
	if e.paused.CompareAndSwap(true, false) {
		e.logger.Info("playback resumed")
	}
}

// Stop cancels every pending dispatch and silences the sink once. Stopping
// an idle engine does nothing.
func (e *Engine) Stop() error {
	if !e.playing.Load() && e.sched.Pending() == 0 {
		return nil
	}
	e.epoch.Add(1)
	cancelled := e.sched.CancelAll()
	e.playing.Store(false)
	e.paused.Store(false)
	e.logger.Info("playback stopped", "cancelled", cancelled)
	if err := e.sink.StopAll(); err != nil {
		return &SinkDispatchError{Op: "stop_all", Pitch: -1, Err: err}
	}
	return nil
}

// Close stops playback and releases the scheduler. The sink is left open;
// it belongs to the caller.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	err := e.Stop()
	return errors.Join(err, e.sched.Close())
}

// Wait blocks until every scheduled dispatch has fired or been cancelled.
func (e *Engine) Wait() {
	e.sched.Wait()
}

// IsPlaying reports whether the engine is playing and not paused.
func (e *Engine) IsPlaying() bool { return e.playing.Load() && !e.paused.Load() }
func (e *Engine) IsPaused() bool  { return e.paused.Load() }

func (e *Engine) State() State {
	switch {
	case !e.playing.Load():
		return Idle
	case e.paused.Load():
		return Paused
	}
	return Playing
}

// Pending counts dispatches not yet fired.
func (e *Engine) Pending() int { return e.sched.Pending() }

func (e *Engine) Tempo() int { return e.tempo.BPM() }

// SetTempo affects conversions made from now on; already scheduled
// dispatches keep their times.
func (e *Engine) SetTempo(bpm int) error { return e.tempo.SetBPM(bpm) }

func (e *Engine) BeatsPerMeasure() int { return e.beatsPerMeasure }

// MeasureDuration is the length of one measure at the current tempo.
func (e *Engine) MeasureDuration() time.Duration {
	return tempo.MsToDuration(e.tempo.MeasureDurationMs(e.beatsPerMeasure))
}

// Humanization returns a copy of the current settings.
func (e *Engine) Humanization() humanize.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.human
}

// SetHumanization applies to chords generated after the call.
func (e *Engine) SetHumanization(s humanize.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.human = s
}

// SetStyleHumanization copies a style's preset. Unknown styles leave the
// settings unchanged.
func (e *Engine) SetStyleHumanization(style string) error {
	s, err := humanize.Preset(style)
	if err != nil {
		e.logger.Warn("unknown style for humanization", "style", style)
		return err
	}
	e.SetHumanization(s)
	return nil
}

// SetInstrument forwards a program change to the sink.
func (e *Engine) SetInstrument(channel, program int) error {
	return e.sink.SetInstrument(channel, program)
}

// PatternFor resolves a style name, falling back to the default pattern
// with a warning.
func (e *Engine) PatternFor(style string) rhythm.Pattern {
	p, err := rhythm.Lookup(style)
	if err != nil {
		e.logger.Warn("unsupported style, using default", "style", style, "default", e.defaultStyle)
		return e.defaultPattern
	}
	return p
}

func (e *Engine) checkOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return schedule.ErrClosed
	}
	return nil
}

// PlayChord schedules one measure of pattern over chord at bpm and sets the
// engine tempo. Invalid input is rejected before anything is scheduled.
func (e *Engine) PlayChord(chord theory.Chord, pattern rhythm.Pattern, bpm int) error {
	if err := validateRequest(chord, pattern, bpm); err != nil {
		return err
	}
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := e.tempo.SetBPM(bpm); err != nil {
		return err
	}
	e.Start()
	logger := e.logger.With("take", uuid.NewString())
	logger.Debug("play chord", "chord", chord, "pattern", pattern.Name(), "bpm", bpm)
	return e.scheduleTimeline(e.epoch.Load(), e.timeline(chord, pattern, bpm, e.Humanization()), logger)
}

// PlayChordStyle is PlayChord with a style name. Unknown styles fall back to
// the default pattern.
func (e *Engine) PlayChordStyle(chord theory.Chord, style string, bpm int) error {
	return e.PlayChord(chord, e.PatternFor(style), bpm)
}

// PlayProgression schedules each chord at i × beatsPerChord beats of bpm.
// Each chord's events are generated when its turn comes, with the tempo and
// humanization settings current at that moment; a chord whose turn comes
// while paused is skipped.
func (e *Engine) PlayProgression(prog theory.Progression, pattern rhythm.Pattern, bpm int) error {
	if prog.IsZero() {
		return ErrEmptyProgression
	}
	if pattern == nil {
		return ErrNilPattern
	}
	if err := tempo.Validate(bpm); err != nil {
		return err
	}
	chords, err := prog.Chords()
	if err != nil {
		return err
	}
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := e.tempo.SetBPM(bpm); err != nil {
		return err
	}
	e.Start()
	logger := e.logger.With("take", uuid.NewString())
	logger.Debug("play progression", "progression", prog, "pattern", pattern.Name(), "bpm", bpm)

	epoch := e.epoch.Load()
	beatMs := 60000 / float64(bpm)
	for i, chord := range chords {
		at := tempo.MsToDuration(float64(i*prog.BeatsPerChord()) * beatMs)
		_, err := e.sched.After(at, func() {
			if e.epoch.Load() != epoch {
				return
			}
			if e.paused.Load() {
				logger.Debug("chord skipped while paused", "index", i, "chord", chord)
				return
			}
			// Start offsets are fixed; the chord's own events follow the
			// tempo current when it comes due.
			now := e.tempo.BPM()
			dispatches := e.timeline(chord, pattern, now, e.Humanization())
			if err := e.scheduleTimeline(epoch, dispatches, logger); err != nil {
				logger.Warn("chord not scheduled", "index", i, "chord", chord, "err", err)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PlayProgressionStyle is PlayProgression with a style name.
func (e *Engine) PlayProgressionStyle(prog theory.Progression, style string, bpm int) error {
	return e.PlayProgression(prog, e.PatternFor(style), bpm)
}

// Strike sounds every chord tone at once for beats at the current tempo. It
// uses the sink's chord call when available. Nothing sounds while paused.
func (e *Engine) Strike(chord theory.Chord, velocity int, beats float64) error {
	if chord.IsZero() {
		return ErrEmptyChord
	}
	pitches := chord.PitchNumbers()
	for _, p := range pitches {
		if err := sink.ValidateNote(p, velocity); err != nil {
			return err
		}
	}
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.Start()
	if e.paused.Load() {
		return nil
	}
	d := e.tempo.BeatsToDuration(beats)
	if cp, ok := e.sink.(sink.ChordPlayer); ok {
		return cp.PlayChord(pitches, velocity, d)
	}
	for _, p := range pitches {
		if err := e.sink.PlayNote(p, velocity, d); err != nil {
			return err
		}
	}
	return nil
}

// scheduleTimeline queues dispatches relative to now. Sinks without
// NoteSwitch release notes themselves, so their note-offs are not queued.
func (e *Engine) scheduleTimeline(epoch uint64, dispatches []Dispatch, logger *log.Logger) error {
	sw, switched := e.sink.(sink.NoteSwitch)
	sounded := make([]atomic.Bool, len(dispatches))
	for _, d := range dispatches {
		if d.Kind == NoteOffDispatch && !switched {
			continue
		}
		flag := &sounded[d.pair]
		_, err := e.sched.After(d.At, func() {
			if e.epoch.Load() != epoch {
				return
			}
			e.fire(d, sw, flag, logger)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// fire sends one dispatch. Note-ons are dropped while paused; a note-off is
// only sent when its note-on actually sounded.
func (e *Engine) fire(d Dispatch, sw sink.NoteSwitch, sounded *atomic.Bool, logger *log.Logger) {
	var err error
	switch d.Kind {
	case NoteOnDispatch:
		if e.paused.Load() {
			return
		}
		if sw != nil {
			err = sw.NoteOn(d.Pitch, d.Velocity)
		} else {
			err = e.sink.PlayNote(d.Pitch, d.Velocity, d.Duration)
		}
		if err == nil {
			sounded.Store(true)
		}
	case NoteOffDispatch:
		if !sounded.Load() {
			return
		}
		err = sw.NoteOff(d.Pitch)
	}
	if err != nil {
		logger.Error("dispatch failed", "err", &SinkDispatchError{Op: d.Kind.String(), Pitch: d.Pitch, Err: err})
	}
}
