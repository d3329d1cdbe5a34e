// Package node provides the simulated mobile nodes.
package node

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/routing"
	"github.com/sarchlab/dtnsim/timing"
	log "github.com/sirupsen/logrus"
)

// A Node is a mobile device. It owns a buffer and runs a routing protocol.
type Node struct {
	id       packet.NodeID
	buf      *buffer.Buffer
	support  *routing.Support
	routing  routing.Routing
	env      routing.Env
	dataSize int
}

// ID returns the node ID.
func (n *Node) ID() packet.NodeID {
	return n.id
}

// Buffer returns the node buffer.
func (n *Node) Buffer() *buffer.Buffer {
	return n.buf
}

// Routing returns the routing protocol the node runs.
func (n *Node) Routing() routing.Routing {
	return n.routing
}

// ConUpdate tells the node that peer came into contact or left. A first
// meeting is announced with NewContact before Contact.
func (n *Node) ConUpdate(
	now timing.VTimeInSec,
	peer packet.NodeID,
	up bool,
	hadHistory bool,
) {
	if !up {
		n.routing.ContactRemoved(now, peer)
		return
	}

	if !hadHistory {
		n.routing.NewContact(now, peer)
	}

	n.routing.Contact(now, peer)
}

// RecvFromApp creates a new message addressed to dst and hands it to the
// routing protocol. It returns the message ID.
func (n *Node) RecvFromApp(now timing.VTimeInSec, dst packet.NodeID) packet.ID {
	if dst == n.id {
		log.WithFields(log.Fields{
			"node": n.id,
			"time": now,
		}).Panic("message addressed to its own source")
	}

	pkt := packet.New(packet.Header{
		Source:      n.id,
		Destination: dst,
		PrevHop:     packet.Application,
		NextHop:     n.id,
		Created:     now,
	}, packet.Data{}, n.dataSize)

	id := n.env.Pool.AddOriginal(pkt)
	pkt.Payload = packet.Data{Message: id}

	n.env.God.RegisterMessage(id, n.id, dst, now)
	n.env.Stats.Generated(n.id)

	n.routing.Recv(now, id)

	return id
}

// Recv hands a transmitted packet to the routing protocol.
func (n *Node) Recv(now timing.VTimeInSec, id packet.ID) {
	n.routing.Recv(now, id)
}

// Finalize purges the buffer one last time and records its occupancy.
func (n *Node) Finalize(now timing.VTimeInSec) {
	n.support.Purge(now)
	n.env.Stats.Occupancy(n.id, n.buf.Size())
}
