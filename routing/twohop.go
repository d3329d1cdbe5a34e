package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// TwoHop lets the source copy its messages to every node it meets. Relays
// only deliver to the destination, so no message travels more than two
// hops.
type TwoHop struct {
	support *Support
}

// NewTwoHop creates a TwoHop router.
func NewTwoHop(s *Support) *TwoHop {
	return &TwoHop{support: s}
}

// Name returns "twohop".
func (r *TwoHop) Name() string { return "twohop" }

// NewContact does nothing.
func (r *TwoHop) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact advertises the messages generated by this node.
func (r *TwoHop) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.support.BeginContact(now, peer, r.exchange)
}

func isOwn(rec buffer.Record) bool {
	return rec.PrevHop == packet.Application
}

func (r *TwoHop) exchange(
	now timing.VTimeInSec,
	peer packet.NodeID,
	peerFree int,
) {
	recs := r.support.Buffer().Matching(func(rec buffer.Record) bool {
		return rec.Destination != peer && isOwn(rec)
	})

	r.support.Advertise(now, peer, recs, peerFree)
}

// ContactRemoved ends the contact.
func (r *TwoHop) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	r.support.EndContact(peer)
}

// Recv handles data, summary vectors and requests.
func (r *TwoHop) Recv(now timing.VTimeInSec, id packet.ID) {
	pkt := r.support.Receive(now, id)
	if pkt == nil {
		return
	}

	from := pkt.Header.PrevHop

	switch p := pkt.Payload.(type) {
	case packet.Data:
		rec, ok := r.support.AcceptData(now, pkt)
		if !ok {
			return
		}

		if isOwn(rec) {
			r.support.Announce(now, rec, nil)
		} else {
			r.support.DeliverIfConnected(now, rec)
		}
	case packet.SummaryVector:
		r.support.RequestMissing(now, from, p.IDs)
	case packet.Request:
		var recs []buffer.Record
		for _, rec := range r.support.Requested(p.IDs) {
			if isOwn(rec) {
				recs = append(recs, rec)
			}
		}

		r.support.Forward(now, from, recs, p.Free)
	default:
		r.support.HandleControl(now, pkt)
	}
}
