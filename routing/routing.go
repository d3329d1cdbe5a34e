// Package routing provides the routing protocols run by the nodes.
//
// Every protocol reacts to the same four notifications. The behavior that
// all of them share, direct delivery, vaccine gossip, the buffer status
// handshake and packet duplication, lives in Support, which each protocol
// owns and calls explicitly.
package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/congestion"
	"github.com/sarchlab/dtnsim/connectivity"
	"github.com/sarchlab/dtnsim/deletion"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/scheduling"
	"github.com/sarchlab/dtnsim/stats"
	"github.com/sarchlab/dtnsim/timing"
)

// Routing is the routing state machine of one node.
type Routing interface {
	// Name returns the protocol name.
	Name() string

	// NewContact is called when the node meets peer for the first time.
	// Contact is called right after it.
	NewContact(now timing.VTimeInSec, peer packet.NodeID)

	// Contact is called every time peer comes into contact.
	Contact(now timing.VTimeInSec, peer packet.NodeID)

	// ContactRemoved is called when peer leaves.
	ContactRemoved(now timing.VTimeInSec, peer packet.NodeID)

	// Recv handles a packet that reached the node. Messages generated by the
	// application arrive here as original packets.
	Recv(now timing.VTimeInSec, id packet.ID)
}

// Medium carries packets to the neighbours of a node.
type Medium interface {
	Broadcast(now timing.VTimeInSec, sender packet.NodeID, pkt *packet.Packet) int
	Connections() *connectivity.ConnectionMap
}

// Env holds the collaborators shared by all the nodes of a simulation.
type Env struct {
	Pool        *packet.Pool
	Medium      Medium
	God         *stats.God
	Stats       *stats.Statistics
	DataSize    int
	ControlSize int
}

// Policies holds the policies of one node.
type Policies struct {
	Deletion   deletion.Mechanism
	Scheduling scheduling.Policy
	Congestion congestion.Control
	Drop       buffer.DropPolicy
	TTL        float64
	Replicas   int
}
