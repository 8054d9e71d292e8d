package clipper

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the only place a report draws randomness from.
// Float64 must return values in [0, 1).
type Source interface {
	Float64() float64
}

// NewSource returns a seeded PCG-backed Source.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSource seeds a Source from the wall clock.
func NewTimeSource() Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

// NewLockedSource wraps src so it can be shared between goroutines.
func NewLockedSource(src Source) Source {
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// intn draws an integer in [0, n).
func intn(src Source, n int) int {
	return int(src.Float64() * float64(n))
}

// between draws an integer in [lo, lo+span).
func between(src Source, lo, span int) int {
	return lo + intn(src, span)
}
