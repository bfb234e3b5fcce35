package synth

import (
	"math"
	"testing"
)

func TestEngineGeneratesSignal(t *testing.T) {
	e := New(48000, DefaultParams())
	id := e.NoteOn(60, 100, 0)
	if id < 0 {
		t.Fatalf("invalid voice id")
	}

	var nonZero bool
	for i := 0; i < 5000; i++ {
		l, r := e.RenderFrame()
		if l != 0 || r != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output")
	}
	e.NoteOff(id)
}

func TestPanExtremesBiasChannels(t *testing.T) {
	e := New(48000, DefaultParams())
	e.NoteOn(60, 127, -64)
	var leftEnergy, rightEnergy float64
	for i := 0; i < 4096; i++ {
		l, r := e.RenderFrame()
		leftEnergy += math.Abs(float64(l))
		rightEnergy += math.Abs(float64(r))
	}
	if leftEnergy <= rightEnergy {
		t.Fatalf("expected left-biased signal, left=%f right=%f", leftEnergy, rightEnergy)
	}
}

func TestProgramSelectsWaveform(t *testing.T) {
	for program := 0; program < 16; program++ {
		e := New(48000, DefaultParams())
		e.SetProgram(program)
		if got, want := e.Waveform(), Waveform(program%8); got != want {
			t.Fatalf("program %d: waveform %d, want %d", program, got, want)
		}
		e.NoteOn(60, 100, 0)
		var maxAbs float64
		for i := 0; i < 1000; i++ {
			l, _ := e.RenderFrame()
			if a := math.Abs(float64(l)); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs < 0.001 {
			t.Errorf("program %d produced no output", program)
		}
	}
}

func TestReleaseEndsVoice(t *testing.T) {
	e := New(48000, DefaultParams())
	id := e.NoteOn(64, 90, 0)
	for i := 0; i < 1000; i++ {
		e.RenderFrame()
	}
	e.NoteOff(id)
	for i := 0; i < 48000; i++ {
		e.RenderFrame()
	}
	if n := e.ActiveVoiceCount(); n != 0 {
		t.Fatalf("expected voice to finish release, active=%d", n)
	}
}

func TestVoiceStealing(t *testing.T) {
	p := DefaultParams()
	p.Polyphony = 2
	e := New(48000, p)
	e.NoteOn(60, 100, 0)
	e.NoteOn(64, 100, 0)
	e.NoteOn(67, 100, 0)
	if n := e.ActiveVoiceCount(); n != 2 {
		t.Fatalf("expected polyphony cap of 2, got %d", n)
	}
}

func TestResetSilences(t *testing.T) {
	e := New(48000, DefaultParams())
	for n := 60; n < 64; n++ {
		e.NoteOn(n, 100, 0)
	}
	e.Reset()
	if n := e.ActiveVoiceCount(); n != 0 {
		t.Fatalf("expected no active voices after reset, got %d", n)
	}
	buf := make([]float32, 256)
	e.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %f after reset", i, s)
		}
	}
}

func TestVibratoBendsPitch(t *testing.T) {
	render := func(cents float64) []float32 {
		p := DefaultParams()
		p.VibratoCents = cents
		e := New(48000, p)
		e.NoteOn(69, 100, 0)
		buf := make([]float32, 2*9600)
		e.Process(buf)
		return buf
	}
	plain, bent := render(0), render(30)
	diff := 0.0
	for i := range plain {
		diff += math.Abs(float64(plain[i] - bent[i]))
	}
	if diff < 1 {
		t.Fatalf("expected vibrato to change the waveform, total difference %f", diff)
	}
}
