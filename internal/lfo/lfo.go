// Package lfo provides the low-frequency oscillator behind the synth's
// vibrato.
package lfo

import "math"

type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
)

// LFO produces one modulation value per sample in [-Depth, +Depth]. The
// unit of Depth is up to the caller.
type LFO struct {
	Depth  float64
	RateHz float64
	Shape  Shape
	phase  float64 // [0, 1)
}

func New(depth, rateHz float64, shape Shape) *LFO {
	return &LFO{Depth: depth, RateHz: rateHz, Shape: shape}
}

// Active reports whether Sample can return anything but zero.
func (l *LFO) Active() bool {
	return l != nil && l.Depth != 0 && l.RateHz > 0
}

// Sample returns the value at the current phase, then advances one sample.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	v := l.at(l.phase) * l.Depth
	l.phase += l.RateHz / sampleRate
	l.phase -= math.Floor(l.phase)
	return v
}

func (l *LFO) at(p float64) float64 {
	switch l.Shape {
	case Triangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Saw:
		return 1 - 2*p
	}
	return math.Sin(2 * math.Pi * p)
}

func (l *LFO) Reset() {
	if l != nil {
		l.phase = 0
	}
}

// Ratio converts a modulation value in cents to a frequency multiplier.
func Ratio(cents float64) float64 {
	if cents == 0 {
		return 1
	}
	return math.Exp2(cents / 1200)
}
