package lfo

import (
	"math"
	"testing"
)

func collect(l *LFO, n int, sr float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = l.Sample(sr)
	}
	return out
}

func TestTriangleShape(t *testing.T) {
	s := collect(New(1, 1, Triangle), 100, 100)
	for _, c := range []struct {
		i    int
		want float64
	}{{0, -1}, {25, 0}, {50, 1}, {75, 0}} {
		if math.Abs(s[c.i]-c.want) > 0.05 {
			t.Fatalf("sample %d = %f, want %f", c.i, s[c.i], c.want)
		}
	}
}

func TestSquareAndSaw(t *testing.T) {
	sq := collect(New(2, 1, Square), 100, 100)
	if sq[10] != 2 || sq[60] != -2 {
		t.Fatalf("square = %f, %f", sq[10], sq[60])
	}
	saw := collect(New(1, 1, Saw), 100, 100)
	if saw[0] != 1 || saw[50] > 0.01 || saw[50] < -0.01 {
		t.Fatalf("saw = %f, %f", saw[0], saw[50])
	}
}

func TestSineStaysWithinDepth(t *testing.T) {
	l := New(6, 5.5, Sine)
	var peak float64
	for _, v := range collect(l, 48000, 48000) {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 6 || peak < 5.9 {
		t.Fatalf("peak = %f, want ~6", peak)
	}
}

func TestInactive(t *testing.T) {
	var nilLFO *LFO
	if nilLFO.Active() || nilLFO.Sample(48000) != 0 {
		t.Fatal("nil lfo should be silent")
	}
	if New(0, 5, Sine).Sample(48000) != 0 || New(3, 0, Sine).Sample(48000) != 0 {
		t.Fatal("zero depth or rate should be silent")
	}
}

func TestResetAndRatio(t *testing.T) {
	l := New(1, 1, Saw)
	collect(l, 30, 100)
	l.Reset()
	if v := l.Sample(100); v != 1 {
		t.Fatalf("after reset = %f, want 1", v)
	}
	if Ratio(0) != 1 || math.Abs(Ratio(1200)-2) > 1e-12 || math.Abs(Ratio(-1200)-0.5) > 1e-12 {
		t.Fatal("cents conversion off")
	}
}
