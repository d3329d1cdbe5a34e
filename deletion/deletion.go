// Package deletion provides the buffer management mechanisms that decide when
// a message copy may leave a relay's buffer.
package deletion

import (
	"fmt"
	"sort"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// An Oracle knows the ground truth about message delivery.
type Oracle interface {
	IsDelivered(id packet.ID) bool
}

// Purged lists the records a Purge removed from a buffer.
type Purged struct {
	Expired   []buffer.Record
	Delivered []buffer.Record
}

// Len returns the total number of purged records.
func (p Purged) Len() int {
	return len(p.Expired) + len(p.Delivered)
}

// A Mechanism is the deletion policy of one node.
type Mechanism interface {
	Name() string

	// SupportsVaccine tells if delivered IDs are exchanged on contact.
	SupportsVaccine() bool

	// NoDuplicates tells if a node gives up its copy after forwarding it, so
	// that at most one copy of a message exists in the network.
	NoDuplicates() bool

	// MarkDelivered records that the message reached its destination.
	MarkDelivered(id packet.ID)

	// IsDelivered tells if the message is known to be delivered.
	IsDelivered(id packet.ID) bool

	// DeliveredIDs returns the IDs to gossip, in increasing order.
	DeliveredIDs() []packet.ID

	// Learn merges IDs received from a peer and returns the new ones.
	Learn(ids []packet.ID) []packet.ID

	// Purge removes the expired and the known delivered records.
	Purge(now timing.VTimeInSec, buf *buffer.Buffer) Purged
}

// New creates a deletion mechanism by name. A ttl of 0 means messages never
// expire.
func New(name string, ttl float64, oracle Oracle) (Mechanism, error) {
	switch name {
	case "", "justttl":
		return &JustTTL{ttl: ttl}, nil
	case "vaccine":
		return newVaccine(ttl), nil
	case "cataclysm":
		if oracle == nil {
			return nil, fmt.Errorf("cataclysm deletion requires an oracle")
		}

		return &Cataclysm{Vaccine: newVaccine(ttl), oracle: oracle}, nil
	case "noduplicates":
		return &NoDuplicates{Vaccine: newVaccine(ttl)}, nil
	default:
		return nil, fmt.Errorf("unknown deletion mechanism %q", name)
	}
}

func purgeExpired(
	now timing.VTimeInSec,
	ttl float64,
	buf *buffer.Buffer,
) []buffer.Record {
	expired := buf.Expired(now, ttl)
	for _, r := range expired {
		buf.Remove(r.ID)
	}

	return expired
}

// JustTTL only removes expired messages. Delivered messages are remembered
// locally but never gossiped.
type JustTTL struct {
	ttl       float64
	delivered map[packet.ID]struct{}
}

// Name returns "justttl".
func (m *JustTTL) Name() string { return "justttl" }

// SupportsVaccine returns false.
func (m *JustTTL) SupportsVaccine() bool { return false }

// NoDuplicates returns false.
func (m *JustTTL) NoDuplicates() bool { return false }

// MarkDelivered remembers the delivery.
func (m *JustTTL) MarkDelivered(id packet.ID) {
	if m.delivered == nil {
		m.delivered = make(map[packet.ID]struct{})
	}

	m.delivered[id] = struct{}{}
}

// IsDelivered tells if this node saw the delivery.
func (m *JustTTL) IsDelivered(id packet.ID) bool {
	_, ok := m.delivered[id]
	return ok
}

// DeliveredIDs returns nothing.
func (m *JustTTL) DeliveredIDs() []packet.ID { return nil }

// Learn ignores the IDs.
func (m *JustTTL) Learn([]packet.ID) []packet.ID { return nil }

// Purge removes the expired records.
func (m *JustTTL) Purge(now timing.VTimeInSec, buf *buffer.Buffer) Purged {
	return Purged{Expired: purgeExpired(now, m.ttl, buf)}
}

// Vaccine gossips the IDs of delivered messages so that relays drop their
// stale copies.
type Vaccine struct {
	ttl       float64
	delivered map[packet.ID]struct{}
}

func newVaccine(ttl float64) *Vaccine {
	return &Vaccine{
		ttl:       ttl,
		delivered: make(map[packet.ID]struct{}),
	}
}

// Name returns "vaccine".
func (m *Vaccine) Name() string { return "vaccine" }

// SupportsVaccine returns true.
func (m *Vaccine) SupportsVaccine() bool { return true }

// NoDuplicates returns false.
func (m *Vaccine) NoDuplicates() bool { return false }

// MarkDelivered adds the message to the vaccine.
func (m *Vaccine) MarkDelivered(id packet.ID) {
	m.delivered[id] = struct{}{}
}

// IsDelivered tells if the message is in the vaccine.
func (m *Vaccine) IsDelivered(id packet.ID) bool {
	_, ok := m.delivered[id]
	return ok
}

// DeliveredIDs returns the known delivered IDs in increasing order.
func (m *Vaccine) DeliveredIDs() []packet.ID {
	ids := make([]packet.ID, 0, len(m.delivered))
	for id := range m.delivered {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Learn merges the IDs and returns those that were unknown.
func (m *Vaccine) Learn(ids []packet.ID) []packet.ID {
	var learned []packet.ID
	for _, id := range ids {
		if _, ok := m.delivered[id]; ok {
			continue
		}

		m.delivered[id] = struct{}{}
		learned = append(learned, id)
	}

	return learned
}

// Purge removes the expired and the vaccinated records.
func (m *Vaccine) Purge(now timing.VTimeInSec, buf *buffer.Buffer) Purged {
	p := Purged{Expired: purgeExpired(now, m.ttl, buf)}

	delivered := buf.Matching(func(r buffer.Record) bool {
		return m.IsDelivered(r.ID)
	})
	for _, r := range delivered {
		buf.Remove(r.ID)
	}

	p.Delivered = delivered

	return p
}

// Cataclysm behaves like Vaccine but additionally consults the global ground
// truth, so a delivery immediately invalidates every copy in the network the
// next time the holder purges its buffer.
type Cataclysm struct {
	*Vaccine
	oracle Oracle
}

var (
	_ Mechanism = (*JustTTL)(nil)
	_ Mechanism = (*Vaccine)(nil)
	_ Mechanism = (*Cataclysm)(nil)
	_ Mechanism = (*NoDuplicates)(nil)
)

// Name returns "cataclysm".
func (m *Cataclysm) Name() string { return "cataclysm" }

// IsDelivered consults the oracle as well as the local vaccine.
func (m *Cataclysm) IsDelivered(id packet.ID) bool {
	if m.Vaccine.IsDelivered(id) {
		return true
	}

	if m.oracle.IsDelivered(id) {
		m.Vaccine.MarkDelivered(id)
		return true
	}

	return false
}

// Purge removes the expired and the globally delivered records.
func (m *Cataclysm) Purge(now timing.VTimeInSec, buf *buffer.Buffer) Purged {
	p := Purged{Expired: purgeExpired(now, m.ttl, buf)}

	delivered := buf.Matching(func(r buffer.Record) bool {
		return m.IsDelivered(r.ID)
	})
	for _, r := range delivered {
		buf.Remove(r.ID)
	}

	p.Delivered = delivered

	return p
}

// NoDuplicates keeps a single copy of every message: the sender drops its
// copy once it forwarded the message. Delivered IDs are gossiped like Vaccine.
type NoDuplicates struct {
	*Vaccine
}

// Name returns "noduplicates".
func (m *NoDuplicates) Name() string { return "noduplicates" }

// NoDuplicates returns true.
func (m *NoDuplicates) NoDuplicates() bool { return true }
