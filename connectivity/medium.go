package connectivity

import (
	"math"

	"github.com/sarchlab/dtnsim/events"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// A Scheduler accepts the transmissions created by the medium.
type Scheduler interface {
	Schedule(e timing.Event)
}

// Medium is an ideal shared broadcast channel. Every packet sent by a node
// reaches all of its current neighbours. A node sends one packet at a time;
// with a bandwidth of zero sending takes no time.
type Medium struct {
	conns     *ConnectionMap
	scheduler Scheduler
	handler   timing.Handler
	bandwidth float64
	busyUntil map[packet.NodeID]timing.VTimeInSec
	sent      uint64
}

// NewMedium creates a medium over the given connections. Transmissions are
// scheduled on the scheduler and handled by handler. Bandwidth is in size
// units per second.
func NewMedium(
	conns *ConnectionMap,
	scheduler Scheduler,
	handler timing.Handler,
	bandwidth float64,
) *Medium {
	return &Medium{
		conns:     conns,
		scheduler: scheduler,
		handler:   handler,
		bandwidth: bandwidth,
		busyUntil: make(map[packet.NodeID]timing.VTimeInSec),
	}
}

// Connections returns the connection map the medium broadcasts over.
func (m *Medium) Connections() *ConnectionMap {
	return m.conns
}

// Broadcast schedules one Transmission of pkt to every neighbour of sender
// and returns the number of recipients.
func (m *Medium) Broadcast(
	now timing.VTimeInSec,
	sender packet.NodeID,
	pkt *packet.Packet,
) int {
	neighbors := m.conns.Neighbors(sender)
	if len(neighbors) == 0 {
		return 0
	}

	arrival := m.occupy(now, sender, pkt.Size)
	for _, n := range neighbors {
		m.scheduler.Schedule(
			events.NewTransmission(arrival, m.handler, sender, n, pkt.ID))
	}

	m.sent++

	return len(neighbors)
}

func (m *Medium) occupy(
	now timing.VTimeInSec,
	sender packet.NodeID,
	size int,
) timing.VTimeInSec {
	if m.bandwidth <= 0 {
		return now
	}

	start := math.Max(now, m.busyUntil[sender])
	arrival := start + float64(size)/m.bandwidth
	m.busyUntil[sender] = arrival

	return arrival
}

// NumSent returns the number of broadcasts that reached at least one node.
func (m *Medium) NumSent() uint64 {
	return m.sent
}
