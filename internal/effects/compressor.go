package effects

import "math"

// CompressorParams are in dB and milliseconds; Ratio is n for n:1.
type CompressorParams struct {
	ThresholdDB float32
	Ratio       float32
	AttackMs    float32
	ReleaseMs   float32
	MakeupDB    float32
}

// Compressor follows each channel's envelope and reduces gain above the
// threshold. It evens out strummed chords where every string lands at once.
type Compressor struct {
	threshold float32
	exponent  float64 // 1/ratio - 1
	attack    float32
	release   float32
	makeup    float32
	env       [2]float32
}

func NewCompressor(sampleRate int, p CompressorParams) *Compressor {
	ratio := max(p.Ratio, 1)
	return &Compressor{
		threshold: dbToGain(p.ThresholdDB),
		exponent:  1/float64(ratio) - 1,
		attack:    coefficient(p.AttackMs, sampleRate),
		release:   coefficient(p.ReleaseMs, sampleRate),
		makeup:    dbToGain(p.MakeupDB),
	}
}

func dbToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

// coefficient is the one-pole smoothing factor for a time constant.
func coefficient(ms float32, sampleRate int) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1000/(float64(ms)*float64(sampleRate))))
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	return c.channel(0, l), c.channel(1, r)
}

func (c *Compressor) channel(ch int, x float32) float32 {
	level := float32(math.Abs(float64(x)))
	if level > c.env[ch] {
		c.env[ch] += c.attack * (level - c.env[ch])
	} else {
		c.env[ch] += c.release * (level - c.env[ch])
	}
	return x * c.gain(c.env[ch]) * c.makeup
}

func (c *Compressor) gain(env float32) float32 {
	if env <= c.threshold {
		return 1
	}
	return float32(math.Pow(float64(env/c.threshold), c.exponent))
}

func (c *Compressor) Reset() {
	c.env = [2]float32{}
}
