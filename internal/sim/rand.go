package sim

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is the random source consulted for every injected outcome.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand returns a goroutine-safe PCG source. The same seed always produces
// the same sequence of draws.
func NewRand(seed uint64) Rand {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// SequenceRand replays a fixed list of Float64 draws, wrapping around when
// exhausted. IntN scales the next draw into [0, n).
type SequenceRand struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceRand creates a SequenceRand. With no values every draw is 0.
func NewSequenceRand(values ...float64) *SequenceRand {
	return &SequenceRand{values: values}
}

func (s *SequenceRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *SequenceRand) IntN(n int) int {
	if n <= 0 {
		panic("sim: IntN called with non-positive n")
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Chance reports whether an event with probability p happens on this draw.
func Chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// Between returns a value in [lo, hi).
func Between(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Jitter returns base scaled by a random factor in [1-fraction, 1+fraction).
func Jitter(r Rand, base time.Duration, fraction float64) time.Duration {
	factor := 1 - fraction + r.Float64()*2*fraction
	return time.Duration(float64(base) * factor)
}

// Pick returns a random element of items. It panics on an empty slice.
func Pick[T any](r Rand, items []T) T {
	return items[r.IntN(len(items))]
}
