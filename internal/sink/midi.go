package sink

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cbegin/vsge-go/internal/schedule"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const allNotesOff = 123

// MIDI drives an external instrument through a message send function.
// Note-offs for PlayNote are timed on the sink's own scheduler.
type MIDI struct {
	send  func(midi.Message) error
	sched *schedule.Scheduler
	port  drivers.Out

	mu      sync.Mutex
	channel uint8
	used    map[uint8]bool
	held    map[int][]uint8 // pitch -> channels of unreleased NoteOn calls
	sendErr error
}

type MIDIOption func(*MIDI)

// WithMIDIClock times note-offs on clock instead of the wall clock.
func WithMIDIClock(clock schedule.Clock) MIDIOption {
	return func(m *MIDI) { m.sched = schedule.New(schedule.WithClock(clock)) }
}

// NewMIDI wraps send, e.g. the function returned by midi.SendTo.
func NewMIDI(send func(midi.Message) error, opts ...MIDIOption) *MIDI {
	m := &MIDI{
		send: send,
		used: make(map[uint8]bool),
		held: make(map[int][]uint8),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sched == nil {
		m.sched = schedule.New()
	}
	return m
}

// OpenMIDIPort opens an output port by number or by name. A MIDI driver
// must be registered first, e.g. by importing drivers/rtmididrv.
func OpenMIDIPort(port string) (*MIDI, error) {
	var (
		out drivers.Out
		err error
	)
	if n, convErr := strconv.Atoi(port); convErr == nil {
		out, err = midi.OutPort(n)
	} else {
		out, err = midi.FindOutPort(port)
	}
	if err != nil {
		return nil, fmt.Errorf("open MIDI port %q: %w", port, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("send to MIDI port %q: %w", port, err)
	}
	m := NewMIDI(send)
	m.port = out
	return m, nil
}

func (m *MIDI) write(msg midi.Message) error {
	if err := m.send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg, err)
	}
	return nil
}

func (m *MIDI) currentChannel() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[m.channel] = true
	return m.channel
}

func (m *MIDI) PlayNote(pitch, velocity int, duration time.Duration) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	ch := m.currentChannel()
	if err := m.write(midi.NoteOn(ch, uint8(pitch), uint8(velocity))); err != nil {
		return err
	}
	_, err := m.sched.After(duration, func() {
		if err := m.write(midi.NoteOff(ch, uint8(pitch))); err != nil {
			m.mu.Lock()
			m.sendErr = err
			m.mu.Unlock()
		}
	})
	return err
}

func (m *MIDI) PlayChord(pitches []int, velocity int, duration time.Duration) error {
	for _, p := range pitches {
		if err := m.PlayNote(p, velocity, duration); err != nil {
			return err
		}
	}
	return nil
}

func (m *MIDI) NoteOn(pitch, velocity int) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	ch := m.currentChannel()
	if err := m.write(midi.NoteOn(ch, uint8(pitch), uint8(velocity))); err != nil {
		return err
	}
	m.mu.Lock()
	m.held[pitch] = append(m.held[pitch], ch)
	m.mu.Unlock()
	return nil
}

// NoteOff releases the oldest held NoteOn for pitch on the channel it was
// played on, even if SetInstrument has moved on since.
func (m *MIDI) NoteOff(pitch int) error {
	if err := ValidateNote(pitch, 0); err != nil {
		return err
	}
	m.mu.Lock()
	ch := m.channel
	if chs := m.held[pitch]; len(chs) > 0 {
		ch = chs[0]
		if len(chs) == 1 {
			delete(m.held, pitch)
		} else {
			m.held[pitch] = chs[1:]
		}
	}
	m.mu.Unlock()
	return m.write(midi.NoteOff(ch, uint8(pitch)))
}

// StopAll drops pending note-offs and sends all-notes-off on every channel
// this sink has played on.
func (m *MIDI) StopAll() error {
	m.sched.CancelAll()
	m.mu.Lock()
	clear(m.held)
	channels := make([]uint8, 0, len(m.used))
	for ch := range m.used {
		channels = append(channels, ch)
	}
	m.mu.Unlock()
	var firstErr error
	for _, ch := range channels {
		if err := m.write(midi.ControlChange(ch, allNotesOff, 0)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetInstrument sends a program change and makes channel the one later notes
// play on.
func (m *MIDI) SetInstrument(channel, program int) error {
	if err := ValidateInstrument(channel, program); err != nil {
		return err
	}
	m.mu.Lock()
	m.channel = uint8(channel)
	m.mu.Unlock()
	return m.write(midi.ProgramChange(uint8(channel), uint8(program)))
}

// Err returns the last failure from a timed note-off.
func (m *MIDI) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendErr
}

// Close silences the port and closes it.
func (m *MIDI) Close() error {
	err := m.StopAll()
	m.sched.Close()
	if m.port != nil {
		if cerr := m.port.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
