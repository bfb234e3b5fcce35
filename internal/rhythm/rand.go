package rhythm

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the subset of *rand.Rand the patterns and the humanizer draw from.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// LockedRand makes a *rand.Rand safe to share between goroutines.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

var defaultRand = NewLockedRand(time.Now().UnixNano())

// DefaultRand is the shared, time-seeded source used when callers pass nil.
func DefaultRand() Rand { return defaultRand }

func orDefault(rng Rand) Rand {
	if rng == nil {
		return defaultRand
	}
	return rng
}

// jitter is a pattern's intrinsic looseness: a symmetric timing window in
// milliseconds and a symmetric velocity window.
type jitter struct {
	timingMs float64
	velocity int
}

const fallbackBPM = 120

// draw returns a timing offset in beats and a velocity offset. The timing
// window is converted from milliseconds at the given tempo.
func (j jitter) draw(rng Rand, bpm int) (float64, int) {
	if bpm <= 0 {
		bpm = fallbackBPM
	}
	ms := (rng.Float64()*2 - 1) * j.timingMs
	vel := 0
	if j.velocity > 0 {
		vel = rng.Intn(2*j.velocity+1) - j.velocity
	}
	return ms * float64(bpm) / 60000, vel
}
