package humanize

import (
	"math"

	"github.com/cbegin/vsge-go/internal/rhythm"
)

const minDuration = 0.01

// Timing adds a uniform offset in [-range/2, +range/2] beats.
func Timing(e rhythm.Event, s Settings, rng rhythm.Rand) rhythm.Event {
	if !s.timingOn || s.timingRange <= 0 {
		return e
	}
	e.TimingOffset += (rng.Float64() - 0.5) * s.timingRange
	return e
}

// Velocity adds a uniform integer offset in [-range/2, +range/2]. The final
// velocity stays clamped to [20,127] by Event.FinalVelocity.
func Velocity(e rhythm.Event, s Settings, rng rhythm.Rand) rhythm.Event {
	half := s.velocityRange / 2
	if !s.velocityOn || half <= 0 {
		return e
	}
	e.VelocityVariation += rng.Intn(2*half+1) - half
	return e
}

// Duration scales the note length by up to ±range/2.
func Duration(e rhythm.Event, s Settings, rng rhythm.Rand) rhythm.Event {
	if !s.durationOn || s.durationRange <= 0 || e.Duration <= 0 {
		return e
	}
	e.Duration *= 1 + (rng.Float64()-0.5)*s.durationRange
	e.Duration = math.Max(e.Duration, minDuration)
	return e
}

// Strum staggers strummed notes by their position in the chord.
func Strum(e rhythm.Event, s Settings) rhythm.Event {
	if !s.strumOn || s.strumDelay <= 0 || !e.Technique.Strummed() {
		return e
	}
	e.TimingOffset += float64(e.Voice) * s.strumDelay
	return e
}

// Swing delays off-beat eighths by ratio × 0.25 beats. On-beat events, and
// events before the downbeat, are left alone.
func Swing(e rhythm.Event, s Settings) rhythm.Event {
	if !s.swingOn || s.swingRatio <= 0 {
		return e
	}
	if OffBeat(e.FinalStart()) {
		e.TimingOffset += s.swingRatio * 0.25
	}
	return e
}

// OffBeat reports whether a beat position falls in the second half of a beat.
func OffBeat(pos float64) bool {
	if pos < 0 {
		return false
	}
	return int64(math.Floor(pos*2))%2 == 1
}

// Apply runs every enabled perturbation in order: timing, velocity,
// duration, strum, then swing.
func Apply(e rhythm.Event, s Settings, rng rhythm.Rand) rhythm.Event {
	if rng == nil {
		rng = rhythm.DefaultRand()
	}
	e = Timing(e, s, rng)
	e = Velocity(e, s, rng)
	e = Duration(e, s, rng)
	e = Strum(e, s)
	return Swing(e, s)
}

// ApplyAll humanizes a copy of events.
func ApplyAll(events []rhythm.Event, s Settings, rng rhythm.Rand) []rhythm.Event {
	out := make([]rhythm.Event, len(events))
	for i, e := range events {
		out[i] = Apply(e, s, rng)
	}
	return out
}
