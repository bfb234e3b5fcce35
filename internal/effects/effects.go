// Package effects post-processes the synth's stereo output.
package effects

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies effects in order. A nil *Chain passes audio through.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	if c == nil {
		return l, r
	}
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

// ProcessBuffer runs the chain over interleaved stereo samples in place.
func (c *Chain) ProcessBuffer(buf []float32) {
	if c == nil || len(c.effects) == 0 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = c.Process(buf[i], buf[i+1])
	}
}

func (c *Chain) Reset() {
	if c == nil {
		return
	}
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.effects)
}

// Room is the acoustic-guitar finish: gentle compression into a small
// room reverb. amount in [0,1] scales the reverb mix and size; zero or less
// returns nil.
func Room(sampleRate int, amount float32) *Chain {
	if amount <= 0 {
		return nil
	}
	amount = clamp(amount, 0, 1)
	return NewChain(
		NewCompressor(sampleRate, CompressorParams{ThresholdDB: -18, Ratio: 3, AttackMs: 5, ReleaseMs: 120, MakeupDB: 3}),
		NewReverb(sampleRate, ReverbParams{Size: 0.3 + 0.5*amount, Decay: 0.6 + 0.25*amount, Wet: 0.35 * amount}),
	)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
