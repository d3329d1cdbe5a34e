// Package rng provides named, reproducible random streams.
//
// Every component that needs randomness owns its own stream, so adding a
// random draw in one component never shifts the numbers seen by another.
package rng

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/iti/rngstream"
)

// A Source produces uniformly distributed numbers in (0, 1).
type Source interface {
	RandU01() float64
}

// The moduli of the two MRG32k3a components. A valid rngstream seed keeps its
// first three words below m1 and its last three below m2.
const (
	mrgM1 = 4294967087
	mrgM2 = 4294944443
)

// rngstream hands out streams from unsynchronized package state.
var streamLock sync.Mutex

// New creates the stream with the given name. With seed 0 the stream is an
// L'Ecuyer MRG32k3a stream; with any other seed it is a PCG generator. In both
// cases the stream is keyed by the seed and the stream name only, so the
// numbers do not depend on creation order or on other simulations running in
// the same process.
func New(name string, seed uint64) Source {
	key := nameKey(name)

	if seed == 0 {
		return newMRGStream(name, key)
	}

	return pcgSource{r: rand.New(rand.NewPCG(seed, key))}
}

func nameKey(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))

	return h.Sum64()
}

func newMRGStream(name string, key uint64) *rngstream.RngStream {
	r := rand.New(rand.NewPCG(0, key))
	seed := []uint64{
		1 + r.Uint64N(mrgM1-1),
		1 + r.Uint64N(mrgM1-1),
		1 + r.Uint64N(mrgM1-1),
		1 + r.Uint64N(mrgM2-1),
		1 + r.Uint64N(mrgM2-1),
		1 + r.Uint64N(mrgM2-1),
	}

	streamLock.Lock()
	defer streamLock.Unlock()

	s := rngstream.New(name)
	if !s.SetSeed(seed) {
		panic("rng: invalid stream seed")
	}

	return s
}

type pcgSource struct {
	r *rand.Rand
}

func (s pcgSource) RandU01() float64 {
	for {
		u := s.r.Float64()
		if u > 0 {
			return u
		}
	}
}

// Intn returns an integer in [0, n).
func Intn(s Source, n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}

	i := int(s.RandU01() * float64(n))
	if i >= n {
		i = n - 1
	}

	return i
}

// Uniform returns a number in (lo, hi).
func Uniform(s Source, lo, hi float64) float64 {
	return lo + (hi-lo)*s.RandU01()
}

// Shuffle randomizes the order of n elements with Fisher-Yates.
func Shuffle(s Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := Intn(s, i+1)
		swap(i, j)
	}
}
