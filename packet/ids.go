// Package packet defines the packets exchanged between nodes and the pool
// that owns them.
package packet

import "strconv"

// NodeID identifies a node. Valid IDs are in [0, number of nodes).
type NodeID int

// Application is the sender of packets that enter the network from the
// application layer rather than from another node.
const Application NodeID = -1

// None marks an unset hop.
const None NodeID = -2

func (n NodeID) String() string {
	switch n {
	case Application:
		return "app"
	case None:
		return "none"
	default:
		return strconv.Itoa(int(n))
	}
}

// ID identifies a packet in the pool. Original data packets, i.e. the
// messages generated by the application, take the IDs in [0, traffic load);
// every other packet takes a larger ID.
type ID int64
