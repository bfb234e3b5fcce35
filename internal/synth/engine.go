// Package synth is a small polyphonic two-operator FM voice engine used by
// the audio sink. It is not safe for concurrent use; the sink serializes
// access.
package synth

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/vsge-go/internal/bounds"
	"github.com/cbegin/vsge-go/internal/lfo"
)

const twoPi = math.Pi * 2

type Params struct {
	Polyphony   int
	CarrierMul  float64
	ModMul      float64
	ModIndex    float64
	AttackSec   float64
	DecaySec    float64
	SustainLvl  float64
	ReleaseSec  float64
	MasterGain  float64
	VelocityAmp float64
	LPFCutoff   float64 // lowpass cutoff in Hz (0 = disabled)

	VibratoHz    float64
	VibratoCents float64 // 0 disables vibrato
}

func DefaultParams() Params {
	return Params{
		Polyphony:   32,
		CarrierMul:  1.0,
		ModMul:      2.0,
		ModIndex:    1.6,
		AttackSec:   0.005,
		DecaySec:    0.12,
		SustainLvl:  0.75,
		ReleaseSec:  0.2,
		MasterGain:  0.45,
		VelocityAmp: 0.8,
		LPFCutoff:   12000,

		VibratoHz:    5.5,
		VibratoCents: 4,
	}
}

// Waveform is the carrier shape selected by the current program.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Triangle
	Square
	Pulse25
	Pulse12
	HalfSine
	Noise
)

// WaveformForProgram maps a 0-127 program number onto the eight carrier
// shapes.
func WaveformForProgram(program int) Waveform {
	return Waveform(bounds.Clamp(program, 0, 127) % 8)
}

type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain uint64
	waveform   Waveform
	lpfL       float64
	lpfR       float64
	lpfAlpha   float64
	noise      uint32
	vibrato    *lfo.LFO
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type operator struct {
	phase    float64
	env      float64
	envState envState
	mul      float64
	level    float64
}

type voice struct {
	active   bool
	id       int
	note     int
	velocity float64
	freq     float64
	pan      float64
	waveform Waveform
	ops      [2]operator
}

func New(sampleRate int, params Params) *Engine {
	if params.Polyphony <= 0 {
		params.Polyphony = 32
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Polyphony),
		masterGain: math.Float64bits(params.MasterGain),
		noise:      0x7FFF,
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1.0 / (twoPi * params.LPFCutoff)
		dt := 1.0 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	if params.VibratoCents > 0 {
		e.vibrato = lfo.New(params.VibratoCents, params.VibratoHz, lfo.Sine)
	}
	return e
}

// SetProgram selects the waveform for notes started after this call.
func (e *Engine) SetProgram(program int) {
	e.waveform = WaveformForProgram(program)
}

func (e *Engine) Waveform() Waveform { return e.waveform }

// NoteOn starts a voice and returns its id. When every voice is busy the
// quietest one is stolen. pan runs from -64 (left) to 64 (right).
func (e *Engine) NoteOn(note int, velocity int, pan int) int {
	slot := e.stealVoice()
	id := e.nextID
	e.nextID++
	v := &e.voices[slot]
	*v = voice{
		active:   true,
		id:       id,
		note:     note,
		velocity: bounds.Clamp(float64(velocity)/127.0, 0, 1),
		freq:     pitchToFreq(note),
		pan:      bounds.Clamp(float64(pan), -64, 64),
		waveform: e.waveform,
	}
	v.ops[0] = operator{envState: envAttack, mul: e.params.CarrierMul, level: 1}
	v.ops[1] = operator{envState: envAttack, mul: e.params.ModMul, level: e.params.ModIndex / 8.0}
	return id
}

// NoteOff moves the voice into its release stage.
func (e *Engine) NoteOff(id int) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.active && v.id == id {
			for oi := range v.ops {
				v.ops[oi].envState = envRelease
			}
		}
	}
}

// Reset silences every voice immediately, without release tails.
func (e *Engine) Reset() {
	for i := range e.voices {
		e.voices[i].active = false
	}
	e.lpfL, e.lpfR = 0, 0
	e.vibrato.Reset()
}

func (e *Engine) RenderFrame() (float32, float32) {
	var l, r float64
	gain := e.masterGainValue()
	bend := lfo.Ratio(e.vibrato.Sample(e.sampleRate))
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		allOff := true
		for oi := range v.ops {
			e.advanceEnv(&v.ops[oi])
			if v.ops[oi].envState != envOff {
				allOff = false
			}
		}
		if allOff {
			v.active = false
			continue
		}
		sig := e.renderVoice(v)
		sig *= gain * (0.2 + v.velocity*e.params.VelocityAmp)
		angle := ((v.pan + 64.0) / 128.0) * (math.Pi / 2.0)
		l += sig * math.Cos(angle)
		r += sig * math.Sin(angle)
		for oi := range v.ops {
			op := &v.ops[oi]
			op.phase += twoPi * (v.freq * op.mul * bend) / e.sampleRate
			if op.phase > twoPi {
				op.phase -= twoPi
			}
		}
	}
	if e.lpfAlpha > 0 {
		e.lpfL += e.lpfAlpha * (l - e.lpfL)
		e.lpfR += e.lpfAlpha * (r - e.lpfR)
		l, r = e.lpfL, e.lpfR
	}
	return float32(bounds.Clamp(l, -1, 1)), float32(bounds.Clamp(r, -1, 1))
}

// Process fills an interleaved stereo buffer.
func (e *Engine) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = e.RenderFrame()
	}
}

// renderVoice runs the modulator into the carrier.
func (e *Engine) renderVoice(v *voice) float64 {
	car, mod := &v.ops[0], &v.ops[1]
	m := math.Sin(mod.phase) * mod.env * mod.level * e.params.ModIndex
	return e.waveformSample(car.phase+m, v.waveform) * car.env * car.level
}

func (e *Engine) stealVoice() int {
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	quiet := 0
	minEnv := e.voices[0].ops[0].env
	for i := 1; i < len(e.voices); i++ {
		if e.voices[i].ops[0].env < minEnv {
			minEnv = e.voices[i].ops[0].env
			quiet = i
		}
	}
	return quiet
}

func (e *Engine) advanceEnv(op *operator) {
	p := e.params
	switch op.envState {
	case envAttack:
		op.env += rateStep(1, p.AttackSec, e.sampleRate)
		if op.env >= 1 {
			op.env = 1
			op.envState = envDecay
		}
	case envDecay:
		op.env -= rateStep(1-p.SustainLvl, p.DecaySec, e.sampleRate)
		if op.env <= p.SustainLvl {
			op.env = p.SustainLvl
			op.envState = envSustain
		}
	case envRelease:
		op.env -= rateStep(math.Max(p.SustainLvl, 0.05), p.ReleaseSec, e.sampleRate)
		if op.env <= 0.0001 {
			op.env = 0
			op.envState = envOff
		}
	case envOff:
		op.env = 0
	}
}

// rateStep is the per-frame change needed to cover span in sec seconds.
func rateStep(span, sec, sampleRate float64) float64 {
	step := span / (sec * sampleRate)
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return 1
	}
	return step
}

func (e *Engine) waveformSample(phase float64, w Waveform) float64 {
	switch w {
	case Saw:
		return 1.0 - 2.0*math.Mod(phase, twoPi)/twoPi
	case Triangle:
		return 2.0*math.Abs(2.0*math.Mod(phase, twoPi)/twoPi-1.0) - 1.0
	case Square:
		return pulse(phase, math.Pi)
	case Pulse25:
		return pulse(phase, math.Pi/2)
	case Pulse12:
		return pulse(phase, math.Pi/4)
	case HalfSine:
		return math.Max(math.Sin(phase), 0)
	case Noise:
		e.noise = (e.noise >> 1) ^ (-(e.noise & 1) & 0xB400)
		return float64(e.noise)/float64(0x7FFF)*2.0 - 1.0
	default:
		return math.Sin(phase)
	}
}

func pulse(phase, width float64) float64 {
	if math.Mod(math.Mod(phase, twoPi)+twoPi, twoPi) < width {
		return 1.0
	}
	return -1.0
}

func pitchToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func (e *Engine) SetMasterGain(gain float64) {
	atomic.StoreUint64(&e.masterGain, math.Float64bits(math.Max(gain, 0)))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

// ActiveVoiceCount counts voices that are still sounding, release tails
// included.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}
