// Package buffer provides the per-node packet buffer.
package buffer

import (
	"sort"

	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
	log "github.com/sirupsen/logrus"
)

// Infinite is the capacity of a buffer without limit.
const Infinite = 0

// HookPosAdd marks when a record is added to the buffer.
var HookPosAdd = &timing.HookPos{Name: "Buffer Add"}

// HookPosRemove marks when a record is removed from the buffer.
var HookPosRemove = &timing.HookPos{Name: "Buffer Remove"}

// A Record describes a message copy held by a node.
type Record struct {
	ID          packet.ID
	Source      packet.NodeID
	Destination packet.NodeID
	PrevHop     packet.NodeID
	Arrival     timing.VTimeInSec
	Created     timing.VTimeInSec
	Hops        int
	Replicas    int
	Utility     float64
}

// A Buffer holds the message copies of one node in arrival order.
//
// The buffer is a passive container. It never refuses a record because of
// its capacity; admission is decided by the caller, see Admit.
type Buffer struct {
	timing.HookableBase

	owner    packet.NodeID
	capacity int
	records  []Record
	index    map[packet.ID]int
}

// New creates a buffer. A capacity of Infinite means no limit.
func New(owner packet.NodeID, capacity int) *Buffer {
	if capacity < 0 {
		log.WithFields(log.Fields{
			"node":     owner,
			"capacity": capacity,
		}).Panic("negative buffer capacity")
	}

	return &Buffer{
		owner:    owner,
		capacity: capacity,
		index:    make(map[packet.ID]int),
	}
}

// Owner returns the node that owns the buffer.
func (b *Buffer) Owner() packet.NodeID {
	return b.owner
}

// Capacity returns the capacity in packets, Infinite if unlimited.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// IsInfinite tells if the buffer has no capacity limit.
func (b *Buffer) IsInfinite() bool {
	return b.capacity == Infinite
}

// Size returns the number of stored records.
func (b *Buffer) Size() int {
	return len(b.records)
}

// Free returns the number of records that can still be stored. Infinite
// buffers report -1.
func (b *Buffer) Free() int {
	if b.IsInfinite() {
		return -1
	}

	free := b.capacity - len(b.records)
	if free < 0 {
		return 0
	}

	return free
}

// IsFull tells if the buffer reached its capacity.
func (b *Buffer) IsFull() bool {
	return !b.IsInfinite() && len(b.records) >= b.capacity
}

// Add stores a record. Storing a message that is already present is a
// protocol error and aborts the simulation.
func (b *Buffer) Add(rec Record) {
	if _, ok := b.index[rec.ID]; ok {
		log.WithFields(log.Fields{
			"node":    b.owner,
			"packet":  rec.ID,
			"time":    rec.Arrival,
			"prevHop": rec.PrevHop,
		}).Panic("packet already in buffer")
	}

	b.index[rec.ID] = len(b.records)
	b.records = append(b.records, rec)

	if b.NumHooks() > 0 {
		b.InvokeHook(timing.HookCtx{
			Domain: b,
			Pos:    HookPosAdd,
			Item:   rec,
		})
	}
}

// Has tells if the message is stored.
func (b *Buffer) Has(id packet.ID) bool {
	_, ok := b.index[id]
	return ok
}

// Get returns the record of a message.
func (b *Buffer) Get(id packet.ID) (Record, bool) {
	i, ok := b.index[id]
	if !ok {
		return Record{}, false
	}

	return b.records[i], true
}

// Update replaces the stored record with the same ID.
func (b *Buffer) Update(rec Record) {
	i, ok := b.index[rec.ID]
	if !ok {
		log.WithFields(log.Fields{
			"node":   b.owner,
			"packet": rec.ID,
		}).Panic("updating a packet that is not in the buffer")
	}

	b.records[i] = rec
}

// SetUtility sets the protocol specific utility of a stored message.
func (b *Buffer) SetUtility(id packet.ID, utility float64) {
	if i, ok := b.index[id]; ok {
		b.records[i].Utility = utility
	}
}

// Remove deletes a message and returns the removed record.
func (b *Buffer) Remove(id packet.ID) (Record, bool) {
	i, ok := b.index[id]
	if !ok {
		return Record{}, false
	}

	rec := b.records[i]
	copy(b.records[i:], b.records[i+1:])
	b.records = b.records[:len(b.records)-1]
	delete(b.index, id)

	for j := i; j < len(b.records); j++ {
		b.index[b.records[j].ID] = j
	}

	if b.NumHooks() > 0 {
		b.InvokeHook(timing.HookCtx{
			Domain: b,
			Pos:    HookPosRemove,
			Item:   rec,
		})
	}

	return rec, true
}

// Records returns a copy of all the records in arrival order.
func (b *Buffer) Records() []Record {
	out := make([]Record, len(b.records))
	copy(out, b.records)

	return out
}

// IDs returns the IDs of all the stored messages in arrival order.
func (b *Buffer) IDs() []packet.ID {
	ids := make([]packet.ID, 0, len(b.records))
	for _, r := range b.records {
		ids = append(ids, r.ID)
	}

	return ids
}

// IDsExcludingDestination returns the IDs of the messages that are not
// destined to the given node.
func (b *Buffer) IDsExcludingDestination(dst packet.NodeID) []packet.ID {
	ids := make([]packet.ID, 0, len(b.records))
	for _, r := range b.records {
		if r.Destination != dst {
			ids = append(ids, r.ID)
		}
	}

	return ids
}

// IDsForDestination returns the IDs of the messages destined to the given
// node.
func (b *Buffer) IDsForDestination(dst packet.NodeID) []packet.ID {
	var ids []packet.ID
	for _, r := range b.records {
		if r.Destination == dst {
			ids = append(ids, r.ID)
		}
	}

	return ids
}

// Matching returns the records accepted by the filter.
func (b *Buffer) Matching(filter func(Record) bool) []Record {
	var out []Record
	for _, r := range b.records {
		if filter(r) {
			out = append(out, r)
		}
	}

	return out
}

// DestinedTo returns the records whose destination is in the given set.
func (b *Buffer) DestinedTo(dsts map[packet.NodeID]bool) []Record {
	return b.Matching(func(r Record) bool { return dsts[r.Destination] })
}

// LowestUtility returns up to n records ordered by increasing utility. Ties
// are broken by arrival order.
func (b *Buffer) LowestUtility(n int) []Record {
	sorted := b.Records()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Utility < sorted[j].Utility
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}

	return sorted
}

// Expired returns the records older than ttl at time now. A ttl of 0 means
// messages never expire.
func (b *Buffer) Expired(now timing.VTimeInSec, ttl float64) []Record {
	if ttl <= 0 {
		return nil
	}

	return b.Matching(func(r Record) bool { return now-r.Created > ttl })
}
