package effects

// ReverbParams shape a Schroeder reverb. Size and Decay are in [0,1]; Wet is
// the wet/dry mix.
type ReverbParams struct {
	Size  float32
	Decay float32
	Wet   float32
}

// Reverb runs four parallel comb filters into two allpass stages.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float32
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

func NewReverb(sampleRate int, p ReverbParams) *Reverb {
	base := max(int(float32(sampleRate)*p.Size*0.05), 10)
	decay := clamp(p.Decay, 0, 0.95)
	r := &Reverb{wet: clamp(p.Wet, 0, 1)}
	for i, ratio := range combRatios {
		r.combs[i] = delayLine{buf: make([]float32, base*ratio/1000), fb: decay}
	}
	for i, ratio := range allpassRatios {
		r.allpass[i] = delayLine{buf: make([]float32, max(base*ratio/1000, 1)), fb: 0.5}
	}
	return r
}

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	mono := (l + rt) * 0.5
	var tail float32
	for i := range r.combs {
		tail += r.combs[i].comb(mono)
	}
	tail *= 0.25
	for i := range r.allpass {
		tail = r.allpass[i].allpass(tail)
	}
	dry := 1 - r.wet
	return l*dry + tail*r.wet, rt*dry + tail*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
