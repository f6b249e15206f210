// Package random provides crypto-seeded pseudo-random sources for secret
// codes and the automated breaker.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a *rand.Rand seeded from crypto/rand, falling back to the
// clock if the system source fails.
func New() *rand.Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Locked is a rand source safe for use from concurrent handlers.
type Locked struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLocked wraps r; a nil r is replaced by New().
func NewLocked(r *rand.Rand) *Locked {
	if r == nil {
		r = New()
	}
	return &Locked{rnd: r}
}

// Intn returns a uniform int in [0, n).
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}
