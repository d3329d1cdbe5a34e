package stats

import (
	"sync/atomic"

	"github.com/sarchlab/dtnsim/packet"
)

// NodeCounters are the counters of one node.
type NodeCounters struct {
	Generated         uint64
	DataSent          uint64
	ControlSent       uint64
	Forwards          uint64
	ControlReceived   uint64
	Duplicates        uint64
	Drops             uint64
	Expired           uint64
	Purged            uint64
	Delivered         uint64
	VaccineRejections uint64
	MaxOccupancy      int
	FinalOccupancy    int
}

// Statistics holds the per-node counters of a simulation.
//
// Counters are only written by the dispatch loop. The handled event count is
// atomic so that a monitor can read it while the simulation runs.
type Statistics struct {
	nodes             []NodeCounters
	transmissionsLost uint64
	eventsHandled     atomic.Uint64
}

// NewStatistics creates zeroed counters for the given number of nodes.
func NewStatistics(nodes int) *Statistics {
	return &Statistics{
		nodes: make([]NodeCounters, nodes),
	}
}

// NumNodes returns the number of nodes.
func (s *Statistics) NumNodes() int {
	return len(s.nodes)
}

// Generated counts a message created at n.
func (s *Statistics) Generated(n packet.NodeID) {
	s.nodes[n].Generated++
}

// Sent counts a broadcast by n.
func (s *Statistics) Sent(n packet.NodeID, t packet.Type) {
	if t.IsControl() {
		s.nodes[n].ControlSent++
		return
	}

	s.nodes[n].DataSent++
}

// Forwarded counts a data packet received by its next hop n.
func (s *Statistics) Forwarded(n packet.NodeID) {
	s.nodes[n].Forwards++
}

// ControlReceived counts a control packet received by its next hop n.
func (s *Statistics) ControlReceived(n packet.NodeID) {
	s.nodes[n].ControlReceived++
}

// Duplicate counts a message n received while already holding it.
func (s *Statistics) Duplicate(n packet.NodeID) {
	s.nodes[n].Duplicates++
}

// Dropped counts messages n dropped because its buffer was full.
func (s *Statistics) Dropped(n packet.NodeID, k int) {
	s.nodes[n].Drops += uint64(k)
}

// Expired counts messages n removed because their TTL passed.
func (s *Statistics) Expired(n packet.NodeID, k int) {
	s.nodes[n].Expired += uint64(k)
}

// Purged counts messages n removed because they were known delivered.
func (s *Statistics) Purged(n packet.NodeID, k int) {
	s.nodes[n].Purged += uint64(k)
}

// Delivered counts a first delivery at destination n.
func (s *Statistics) Delivered(n packet.NodeID) {
	s.nodes[n].Delivered++
}

// VaccineRejection counts a message n refused because it knew it delivered.
func (s *Statistics) VaccineRejection(n packet.NodeID) {
	s.nodes[n].VaccineRejections++
}

// Occupancy records the buffer size of n.
func (s *Statistics) Occupancy(n packet.NodeID, size int) {
	c := &s.nodes[n]
	c.FinalOccupancy = size

	if size > c.MaxOccupancy {
		c.MaxOccupancy = size
	}
}

// TransmissionLost counts a transmission that arrived after its link broke.
func (s *Statistics) TransmissionLost() {
	s.transmissionsLost++
}

// TransmissionsLost returns the number of lost transmissions.
func (s *Statistics) TransmissionsLost() uint64 {
	return s.transmissionsLost
}

// EventHandled counts a dispatched event.
func (s *Statistics) EventHandled() {
	s.eventsHandled.Add(1)
}

// EventsHandled returns the number of dispatched events.
func (s *Statistics) EventsHandled() uint64 {
	return s.eventsHandled.Load()
}

// Node returns the counters of n.
func (s *Statistics) Node(n packet.NodeID) NodeCounters {
	return s.nodes[n]
}

// Totals returns the sum of the counters of all nodes. Occupancies are
// summed as well.
func (s *Statistics) Totals() NodeCounters {
	var t NodeCounters

	for _, c := range s.nodes {
		t.Generated += c.Generated
		t.DataSent += c.DataSent
		t.ControlSent += c.ControlSent
		t.Forwards += c.Forwards
		t.ControlReceived += c.ControlReceived
		t.Duplicates += c.Duplicates
		t.Drops += c.Drops
		t.Expired += c.Expired
		t.Purged += c.Purged
		t.Delivered += c.Delivered
		t.VaccineRejections += c.VaccineRejections
		t.MaxOccupancy += c.MaxOccupancy
		t.FinalOccupancy += c.FinalOccupancy
	}

	return t
}
