// Package scheduling orders the messages a node offers during a contact.
package scheduling

import (
	"fmt"
	"sort"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/rng"
)

// A Policy orders candidate records for transmission. Policies never drop
// candidates; they return a new slice and leave the input untouched.
type Policy interface {
	Name() string
	Order(candidates []buffer.Record) []buffer.Record
}

// New creates a scheduling policy by name. The random source is only used
// by the random policy.
func New(name string, src rng.Source) (Policy, error) {
	switch name {
	case "", "fifo":
		return FIFO{}, nil
	case "lifo":
		return LIFO{}, nil
	case "random":
		if src == nil {
			return nil, fmt.Errorf("random scheduling requires a random source")
		}

		return Random{src: src}, nil
	case "utility":
		return Utility{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", name)
	}
}

func clone(candidates []buffer.Record) []buffer.Record {
	out := make([]buffer.Record, len(candidates))
	copy(out, candidates)

	return out
}

// FIFO offers the earliest arrivals first.
type FIFO struct{}

// Name returns "fifo".
func (FIFO) Name() string { return "fifo" }

// Order sorts by arrival time, keeping the buffer order among ties.
func (FIFO) Order(candidates []buffer.Record) []buffer.Record {
	out := clone(candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Arrival < out[j].Arrival
	})

	return out
}

// LIFO offers the latest arrivals first.
type LIFO struct{}

// Name returns "lifo".
func (LIFO) Name() string { return "lifo" }

// Order sorts by decreasing arrival time.
func (LIFO) Order(candidates []buffer.Record) []buffer.Record {
	out := clone(candidates)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Arrival > out[j].Arrival
	})

	return out
}

// Random offers the candidates in random order.
type Random struct {
	src rng.Source
}

// Name returns "random".
func (Random) Name() string { return "random" }

// Order shuffles the candidates.
func (p Random) Order(candidates []buffer.Record) []buffer.Record {
	out := clone(candidates)
	rng.Shuffle(p.src, len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// Utility offers the candidates with the highest utility first.
type Utility struct{}

// Name returns "utility".
func (Utility) Name() string { return "utility" }

// Order sorts by decreasing utility, keeping arrival order among ties.
func (Utility) Order(candidates []buffer.Record) []buffer.Record {
	out := clone(candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Utility > out[j].Utility
	})

	return out
}
