// Package stats collects the ground truth and the counters of a simulation.
package stats

import (
	"sort"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
	log "github.com/sirupsen/logrus"
)

// A Message is the ledger entry of one application message.
type Message struct {
	ID          packet.ID
	Source      packet.NodeID
	Destination packet.NodeID
	Created     timing.VTimeInSec
	Delivered   bool
	DeliveredAt timing.VTimeInSec
	Hops        int
	Copies      int
	MaxCopies   int
}

// Delay returns the time the message took to reach its destination.
func (m Message) Delay() float64 {
	return m.DeliveredAt - m.Created
}

// God is the simulation wide view of every message. Nodes use it as a
// delivery oracle; it is also a buffer hook that counts the live copies of
// each message.
type God struct {
	now      timing.VTimeInSec
	messages map[packet.ID]*Message
	order    []packet.ID
}

// NewGod creates an empty ledger.
func NewGod() *God {
	return &God{
		messages: make(map[packet.ID]*Message),
	}
}

// SetSimTime records the time of the event being handled.
func (g *God) SetSimTime(now timing.VTimeInSec) {
	g.now = now
}

// Now returns the time of the event being handled.
func (g *God) Now() timing.VTimeInSec {
	return g.now
}

// RegisterMessage adds a newly generated message to the ledger.
func (g *God) RegisterMessage(
	id packet.ID,
	src, dst packet.NodeID,
	created timing.VTimeInSec,
) {
	if _, ok := g.messages[id]; ok {
		log.WithField("packet", id).Panic("message registered twice")
	}

	g.messages[id] = &Message{
		ID:          id,
		Source:      src,
		Destination: dst,
		Created:     created,
	}
	g.order = append(g.order, id)
}

func (g *God) mustGet(id packet.ID) *Message {
	m, ok := g.messages[id]
	if !ok {
		log.WithField("packet", id).Panic("unknown message")
	}

	return m
}

// Delivered records that the message reached its destination. Only the
// first delivery counts; it returns false for later ones.
func (g *God) Delivered(id packet.ID, now timing.VTimeInSec, hops int) bool {
	m := g.mustGet(id)
	if m.Delivered {
		return false
	}

	m.Delivered = true
	m.DeliveredAt = now
	m.Hops = hops

	return true
}

// IsDelivered tells if the message reached its destination.
func (g *God) IsDelivered(id packet.ID) bool {
	m, ok := g.messages[id]
	return ok && m.Delivered
}

// Message returns the ledger entry of a message.
func (g *God) Message(id packet.ID) (Message, bool) {
	m, ok := g.messages[id]
	if !ok {
		return Message{}, false
	}

	return *m, true
}

// Messages returns all the ledger entries in generation order.
func (g *God) Messages() []Message {
	out := make([]Message, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.messages[id])
	}

	return out
}

// NumMessages returns the number of registered messages.
func (g *God) NumMessages() int {
	return len(g.order)
}

// NumDelivered returns the number of delivered messages.
func (g *God) NumDelivered() int {
	n := 0
	for _, m := range g.messages {
		if m.Delivered {
			n++
		}
	}

	return n
}

// Func counts buffered copies. It is registered as a hook on every node
// buffer.
func (g *God) Func(ctx timing.HookCtx) {
	rec, ok := ctx.Item.(buffer.Record)
	if !ok {
		return
	}

	m, ok := g.messages[rec.ID]
	if !ok {
		return
	}

	switch ctx.Pos {
	case buffer.HookPosAdd:
		m.Copies++
		if m.Copies > m.MaxCopies {
			m.MaxCopies = m.Copies
		}
	case buffer.HookPosRemove:
		m.Copies--
	}
}

// Holders returns the messages that currently have at least one copy, in ID
// order.
func (g *God) Holders() []packet.ID {
	var ids []packet.ID
	for id, m := range g.messages {
		if m.Copies > 0 {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
