// Package dice provides the seeded random source behind mishap rolls.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source yields uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

// Seeded is a Source backed by math/rand with an explicit seed, so the same
// seed replays the same rolls. It is safe for concurrent use.
type Seeded struct {
	mu   sync.Mutex
	seed int64
	rng  *rand.Rand
}

// NewSeeded returns a source seeded with seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Roll returns a single die result in 1..sides. Sides below 1 roll as 1.
func Roll(src Source, sides int) int {
	if sides <= 1 {
		return 1
	}
	return src.Intn(sides) + 1
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Fixed replays a fixed sequence of results, cycling when exhausted.
// Values are die faces (1-based).
type Fixed struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixed returns a source that yields faces in order.
func NewFixed(faces ...int) *Fixed {
	return &Fixed{faces: faces}
}

func (f *Fixed) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.faces) == 0 || n <= 0 {
		return 0
	}
	face := f.faces[f.next%len(f.faces)]
	f.next++
	v := face - 1
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}
