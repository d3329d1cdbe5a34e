package buffer

import (
	"fmt"
)

// A DropPolicy decides which record to evict when a buffer overflows.
type DropPolicy interface {
	Name() string

	// Victim selects the record to evict from an over-capacity buffer that
	// already contains the incoming record.
	Victim(b *Buffer, incoming Record) Record
}

// Admit stores the incoming record and, if that overflows the buffer, evicts
// records chosen by the policy until the buffer is within its capacity. It
// returns the evicted records and whether the incoming record survived.
func (b *Buffer) Admit(rec Record, policy DropPolicy) ([]Record, bool) {
	b.Add(rec)

	var evicted []Record
	for !b.IsInfinite() && b.Size() > b.capacity {
		victim := policy.Victim(b, rec)
		removed, _ := b.Remove(victim.ID)
		evicted = append(evicted, removed)
	}

	return evicted, b.Has(rec.ID)
}

// DropTail refuses the incoming record.
type DropTail struct{}

// Name returns "droptail".
func (DropTail) Name() string { return "droptail" }

// Victim returns the incoming record.
func (DropTail) Victim(_ *Buffer, incoming Record) Record {
	return incoming
}

// DropHead evicts the record that arrived first.
type DropHead struct{}

// Name returns "drophead".
func (DropHead) Name() string { return "drophead" }

// Victim returns the oldest arrival.
func (DropHead) Victim(b *Buffer, _ Record) Record {
	return b.records[0]
}

// DropOldest evicts the record with the earliest creation time, i.e. the
// one closest to expiring.
type DropOldest struct{}

// Name returns "dropoldest".
func (DropOldest) Name() string { return "dropoldest" }

// Victim returns the earliest created record.
func (DropOldest) Victim(b *Buffer, _ Record) Record {
	victim := b.records[0]
	for _, r := range b.records[1:] {
		if r.Created < victim.Created {
			victim = r
		}
	}

	return victim
}

// DropLowestUtility evicts the record with the lowest utility, possibly the
// incoming one.
type DropLowestUtility struct{}

// Name returns "droplowestutility".
func (DropLowestUtility) Name() string { return "droplowestutility" }

// Victim returns the record with the lowest utility.
func (DropLowestUtility) Victim(b *Buffer, _ Record) Record {
	return b.LowestUtility(1)[0]
}

// NewDropPolicy creates a drop policy by name.
func NewDropPolicy(name string) (DropPolicy, error) {
	switch name {
	case "", "droptail":
		return DropTail{}, nil
	case "drophead":
		return DropHead{}, nil
	case "dropoldest":
		return DropOldest{}, nil
	case "droplowestutility":
		return DropLowestUtility{}, nil
	default:
		return nil, fmt.Errorf("unknown drop policy %q", name)
	}
}
