package sink

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// CallKind names a recorded sink method.
type CallKind string

const (
	CallPlayNote      CallKind = "play_note"
	CallPlayChord     CallKind = "play_chord"
	CallNoteOn        CallKind = "note_on"
	CallNoteOff       CallKind = "note_off"
	CallStopAll       CallKind = "stop_all"
	CallSetInstrument CallKind = "set_instrument"
)

// Call is one recorded sink invocation.
type Call struct {
	Kind     CallKind
	Pitches  []int
	Velocity int
	Duration time.Duration
	Channel  int
	Program  int
}

// Recorder keeps every call in memory. It is the sink behind dry runs and
// tests. Set Fail to make PlayNote return an error.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	logger *log.Logger
	Fail   func(pitch int) error
}

// NewRecorder logs each call at debug level when logger is non-nil.
func NewRecorder(logger *log.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Debug("sink", "call", c.Kind, "pitches", c.Pitches, "velocity", c.Velocity, "duration", c.Duration)
	}
}

func (r *Recorder) PlayNote(pitch, velocity int, duration time.Duration) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	if r.Fail != nil {
		if err := r.Fail(pitch); err != nil {
			return err
		}
	}
	r.record(Call{Kind: CallPlayNote, Pitches: []int{pitch}, Velocity: velocity, Duration: duration})
	return nil
}

func (r *Recorder) StopAll() error {
	r.record(Call{Kind: CallStopAll})
	return nil
}

func (r *Recorder) SetInstrument(channel, program int) error {
	if err := ValidateInstrument(channel, program); err != nil {
		return err
	}
	r.record(Call{Kind: CallSetInstrument, Channel: channel, Program: program})
	return nil
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of kind were recorded.
func (r *Recorder) Count(kind CallKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// SwitchRecorder is a Recorder that also accepts separate note-on and
// note-off commands.
type SwitchRecorder struct {
	*Recorder
}

func NewSwitchRecorder(logger *log.Logger) *SwitchRecorder {
	return &SwitchRecorder{Recorder: NewRecorder(logger)}
}

func (r *SwitchRecorder) NoteOn(pitch, velocity int) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	r.record(Call{Kind: CallNoteOn, Pitches: []int{pitch}, Velocity: velocity})
	return nil
}

func (r *SwitchRecorder) NoteOff(pitch int) error {
	if err := ValidateNote(pitch, 0); err != nil {
		return err
	}
	r.record(Call{Kind: CallNoteOff, Pitches: []int{pitch}})
	return nil
}
