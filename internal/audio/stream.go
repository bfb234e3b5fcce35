// Package audio streams interleaved stereo float32 samples to the system
// audio device.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with interleaved stereo frames.
type SampleSource interface {
	Process(dst []float32)
}

const bytesPerFrame = 8 // two little-endian float32 channels

// Stream pulls whole frames from a SampleSource and encodes them for the
// device player. Samples are clipped to [-1, 1]. After Close every Read
// returns io.EOF.
type Stream struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	frames int64
	closed bool
}

func NewStream(source SampleSource) *Stream {
	return &Stream{source: source}
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.EOF
	}
	n := len(p) / bytesPerFrame
	if n == 0 {
		return 0, nil
	}
	if cap(s.buf) < n*2 {
		s.buf = make([]float32, n*2)
	}
	s.buf = s.buf[:n*2]
	s.source.Process(s.buf)
	for i, v := range s.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(clip(v)))
	}
	s.frames += int64(n)
	return n * bytesPerFrame, nil
}

func clip(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v:
		return 0
	}
	return v
}

// Frames reports how many frames have been handed to the device.
func (s *Stream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// DefaultLatency is the device buffer used unless WithLatency overrides it.
// Small buffers keep note onsets close to their scheduled time.
const DefaultLatency = 50 * time.Millisecond

type openOptions struct {
	latency time.Duration
}

type OpenOption func(*openOptions)

// WithLatency sets the player buffer size. Non-positive values keep the
// default.
func WithLatency(d time.Duration) OpenOption {
	return func(o *openOptions) {
		if d > 0 {
			o.latency = d
		}
	}
}

// Output is a running device stream.
type Output struct {
	player     *ebitaudio.Player
	stream     *Stream
	sampleRate int
}

var (
	contextOnce       sync.Once
	audioContext      *ebitaudio.Context
	contextSampleRate int
)

// The ebiten audio context is process-wide and fixed to one sample rate.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if contextSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", contextSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Open starts streaming source to the default device.
func Open(sampleRate int, source SampleSource, opts ...OpenOption) (*Output, error) {
	o := openOptions{latency: DefaultLatency}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	stream := NewStream(source)
	pl, err := ctx.NewPlayerF32(stream)
	if err != nil {
		return nil, fmt.Errorf("open audio stream: %w", err)
	}
	pl.SetBufferSize(o.latency)
	pl.Play()
	return &Output{player: pl, stream: stream, sampleRate: sampleRate}, nil
}

func (o *Output) IsPlaying() bool { return o.player.IsPlaying() }

// Elapsed is the audio time rendered so far.
func (o *Output) Elapsed() time.Duration {
	return FrameDuration(o.stream.Frames(), o.sampleRate)
}

// FrameDuration converts a frame count at sampleRate to wall time.
func FrameDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func (o *Output) Close() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.stream.Close()
}
