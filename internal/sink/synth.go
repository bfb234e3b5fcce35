package sink

import (
	"sync"
	"time"

	"github.com/cbegin/vsge-go/internal/audio"
	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/cbegin/vsge-go/internal/effects"
	"github.com/cbegin/vsge-go/internal/synth"
)

const DefaultSampleRate = 48000

type pendingOff struct {
	frame int64
	id    int
}

// Synth plays notes on an FM engine. Note lengths are counted in rendered
// frames, so a note lasts exactly as long as the audio it produces.
type Synth struct {
	mu         sync.Mutex
	engine     *synth.Engine
	sampleRate int
	frame      int64
	offs       []pendingOff
	held       map[int][]int // pitch -> voice ids started by NoteOn
	fx         *effects.Chain
	out        *audio.Output
}

// NewSynth builds an unconnected synth; call Process to pull audio from it.
func NewSynth(sampleRate int, params synth.Params) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synth{
		engine:     synth.New(sampleRate, params),
		sampleRate: sampleRate,
		held:       make(map[int][]int),
	}
}

// OpenSynth starts a synth on the default audio device. A non-positive
// latency uses the audio package default.
func OpenSynth(sampleRate int, latency time.Duration) (*Synth, error) {
	s := NewSynth(sampleRate, synth.DefaultParams())
	out, err := audio.Open(s.sampleRate, s, audio.WithLatency(latency))
	if err != nil {
		return nil, err
	}
	s.out = out
	return s, nil
}

// Process renders interleaved stereo frames, releasing notes as they come
// due.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		s.releaseDue()
		dst[i], dst[i+1] = s.fx.Process(s.engine.RenderFrame())
		s.frame++
	}
}

func (s *Synth) releaseDue() {
	if len(s.offs) == 0 {
		return
	}
	kept := s.offs[:0]
	for _, off := range s.offs {
		if off.frame <= s.frame {
			s.engine.NoteOff(off.id)
			continue
		}
		kept = append(kept, off)
	}
	s.offs = kept
}

func (s *Synth) frames(d time.Duration) int64 {
	return int64(d.Seconds() * float64(s.sampleRate))
}

func pan(pitch int) int {
	return bounds.Clamp((pitch-60)*2, -32, 32)
}

func (s *Synth) PlayNote(pitch, velocity int, duration time.Duration) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.engine.NoteOn(pitch, velocity, pan(pitch))
	s.offs = append(s.offs, pendingOff{frame: s.frame + s.frames(duration), id: id})
	return nil
}

func (s *Synth) PlayChord(pitches []int, velocity int, duration time.Duration) error {
	for _, p := range pitches {
		if err := ValidateNote(p, velocity); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.frame + s.frames(duration)
	for _, p := range pitches {
		id := s.engine.NoteOn(p, velocity, pan(p))
		s.offs = append(s.offs, pendingOff{frame: end, id: id})
	}
	return nil
}

func (s *Synth) NoteOn(pitch, velocity int) error {
	if err := ValidateNote(pitch, velocity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[pitch] = append(s.held[pitch], s.engine.NoteOn(pitch, velocity, pan(pitch)))
	return nil
}

// NoteOff releases the oldest held voice on pitch.
func (s *Synth) NoteOff(pitch int) error {
	if err := ValidateNote(pitch, 0); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.held[pitch]
	if len(ids) == 0 {
		return nil
	}
	s.engine.NoteOff(ids[0])
	if len(ids) == 1 {
		delete(s.held, pitch)
	} else {
		s.held[pitch] = ids[1:]
	}
	return nil
}

// StopAll cuts every voice immediately.
func (s *Synth) StopAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	s.fx.Reset()
	s.offs = nil
	clear(s.held)
	return nil
}

// SetInstrument selects the FM waveform. The synth has a single timbre, so
// the channel is validated but otherwise ignored.
func (s *Synth) SetInstrument(channel, program int) error {
	if err := ValidateInstrument(channel, program); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetProgram(program)
	return nil
}

// ActiveVoices counts voices still sounding, release tails included.
func (s *Synth) ActiveVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ActiveVoiceCount()
}

func (s *Synth) SetMasterGain(gain float64) { s.engine.SetMasterGain(gain) }

func (s *Synth) SampleRate() int { return s.sampleRate }

// SetEffects replaces the output chain; nil removes it.
func (s *Synth) SetEffects(fx *effects.Chain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fx = fx
}

// Close stops the device stream, if any.
func (s *Synth) Close() error {
	if s.out == nil {
		return nil
	}
	return s.out.Close()
}
