package routing

import (
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// Direct only hands messages to their destination.
type Direct struct {
	support *Support
}

// NewDirect creates a Direct router.
func NewDirect(s *Support) *Direct {
	return &Direct{support: s}
}

// Name returns "direct".
func (r *Direct) Name() string { return "direct" }

// NewContact does nothing.
func (r *Direct) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact delivers the messages destined to peer.
func (r *Direct) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.support.BeginContact(now, peer, nil)
}

// ContactRemoved ends the contact.
func (r *Direct) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	r.support.EndContact(peer)
}

// Recv stores new messages and delivers them if possible.
func (r *Direct) Recv(now timing.VTimeInSec, id packet.ID) {
	pkt := r.support.Receive(now, id)
	if pkt == nil {
		return
	}

	if pkt.Header.Type != packet.TypeData {
		r.support.HandleControl(now, pkt)
		return
	}

	if rec, ok := r.support.AcceptData(now, pkt); ok {
		r.support.DeliverIfConnected(now, rec)
	}
}
