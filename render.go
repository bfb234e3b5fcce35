package vsge

import (
	"errors"
	"io"
	"time"

	"github.com/cbegin/vsge-go/internal/audio"
	"github.com/cbegin/vsge-go/internal/schedule"
	"github.com/cbegin/vsge-go/internal/sink"
	"github.com/cbegin/vsge-go/internal/synth"
)

// renderStep is how far the clock moves between synth pulls; dispatches land
// on these boundaries.
const renderStep = time.Millisecond

// NewOfflineSynth returns a synth that is not attached to an audio device,
// for use with Render.
func NewOfflineSynth(sampleRate int) *SynthSink {
	return sink.NewSynth(sampleRate, synth.DefaultParams())
}

// Render runs play on an engine driven by a manual clock and pulls length
// worth of interleaved stereo audio from s as the clock advances. The result
// is the same performance the live engine would produce, without waiting
// for it.
func Render(s *SynthSink, length time.Duration, play func(e *Engine) error, opts ...EngineOption) ([]float32, error) {
	if s == nil {
		return nil, ErrNilSink
	}
	if play == nil {
		return nil, errors.New("vsge: nothing to render")
	}
	rate := s.SampleRate()
	clock := schedule.NewManualClock(time.Unix(0, 0))
	e, err := New(append(opts, WithSink(s), WithClock(clock))...)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	if err := play(e); err != nil {
		return nil, err
	}

	frames := int(length.Seconds() * float64(rate))
	out := make([]float32, frames*2)
	step := max(int(renderStep.Seconds()*float64(rate)), 1)
	at := func(frame int) time.Duration {
		return time.Duration(int64(frame) * int64(time.Second) / int64(rate))
	}
	for f := 0; f < frames; f += step {
		n := min(step, frames-f)
		clock.Advance(at(f+n) - at(f))
		s.Process(out[f*2 : (f+n)*2])
	}
	return out, nil
}

// RenderWAV is Render followed by a float WAV encode to w.
func RenderWAV(w io.Writer, s *SynthSink, length time.Duration, play func(e *Engine) error, opts ...EngineOption) error {
	samples, err := Render(s, length, play, opts...)
	if err != nil {
		return err
	}
	return audio.WriteWAV(w, samples, s.SampleRate())
}
