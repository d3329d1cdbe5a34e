// Package connectivity tracks which nodes are in contact and carries packets
// between them.
package connectivity

import (
	"sort"

	"github.com/sarchlab/dtnsim/packet"
	log "github.com/sirupsen/logrus"
)

// ConnectionMap is the symmetric adjacency between nodes. It also remembers
// which node has already seen which peer, so that the first meeting of a
// pair can be told apart from later ones.
type ConnectionMap struct {
	nodes     int
	neighbors []map[packet.NodeID]struct{}
	met       []map[packet.NodeID]struct{}
}

// NewConnectionMap creates a map in which no node is connected.
func NewConnectionMap(nodes int) *ConnectionMap {
	m := &ConnectionMap{
		nodes:     nodes,
		neighbors: make([]map[packet.NodeID]struct{}, nodes),
		met:       make([]map[packet.NodeID]struct{}, nodes),
	}

	for i := 0; i < nodes; i++ {
		m.neighbors[i] = make(map[packet.NodeID]struct{})
		m.met[i] = make(map[packet.NodeID]struct{})
	}

	return m
}

// NumNodes returns the number of nodes.
func (m *ConnectionMap) NumNodes() int {
	return m.nodes
}

func (m *ConnectionMap) mustBeValidPair(a, b packet.NodeID) {
	if a < 0 || int(a) >= m.nodes || b < 0 || int(b) >= m.nodes || a == b {
		log.WithFields(log.Fields{
			"a":     a,
			"b":     b,
			"nodes": m.nodes,
		}).Panic("invalid node pair")
	}
}

func (m *ConnectionMap) mustBeValidNode(a packet.NodeID) {
	if a < 0 || int(a) >= m.nodes {
		log.WithFields(log.Fields{
			"node":  a,
			"nodes": m.nodes,
		}).Panic("invalid node")
	}
}

// Connect connects a and b in both directions and records that a has met b.
func (m *ConnectionMap) Connect(a, b packet.NodeID) {
	m.mustBeValidPair(a, b)

	m.neighbors[a][b] = struct{}{}
	m.neighbors[b][a] = struct{}{}
	m.met[a][b] = struct{}{}
}

// Disconnect removes the connection between a and b. Disconnecting nodes
// that are not connected is a no-op.
func (m *ConnectionMap) Disconnect(a, b packet.NodeID) {
	m.mustBeValidPair(a, b)

	delete(m.neighbors[a], b)
	delete(m.neighbors[b], a)
}

// AreConnected tells if a and b are in contact.
func (m *ConnectionMap) AreConnected(a, b packet.NodeID) bool {
	if a < 0 || int(a) >= m.nodes || b < 0 || int(b) >= m.nodes {
		return false
	}

	_, ok := m.neighbors[a][b]

	return ok
}

// HaveMet tells if a has seen b come into contact before.
func (m *ConnectionMap) HaveMet(a, b packet.NodeID) bool {
	m.mustBeValidPair(a, b)

	_, ok := m.met[a][b]

	return ok
}

// Neighbors returns the nodes connected to a in increasing ID order.
func (m *ConnectionMap) Neighbors(a packet.NodeID) []packet.NodeID {
	m.mustBeValidNode(a)

	out := make([]packet.NodeID, 0, len(m.neighbors[a]))
	for n := range m.neighbors[a] {
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Degree returns the number of nodes connected to a.
func (m *ConnectionMap) Degree(a packet.NodeID) int {
	m.mustBeValidNode(a)

	return len(m.neighbors[a])
}
