package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// FirstContact keeps a single copy of each message and hands it to the
// first node that asks for it. A message is never handed back to the node
// it came from.
type FirstContact struct {
	support *Support
}

// NewFirstContact creates a FirstContact router.
func NewFirstContact(s *Support) *FirstContact {
	return &FirstContact{support: s}
}

// Name returns "firstcontact".
func (r *FirstContact) Name() string { return "firstcontact" }

// NewContact does nothing.
func (r *FirstContact) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact advertises the buffered messages.
func (r *FirstContact) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.support.BeginContact(now, peer, r.exchange)
}

func (r *FirstContact) exchange(
	now timing.VTimeInSec,
	peer packet.NodeID,
	peerFree int,
) {
	recs := r.support.Buffer().Matching(func(rec buffer.Record) bool {
		return rec.Destination != peer && rec.PrevHop != peer
	})

	r.support.Advertise(now, peer, recs, peerFree)
}

// ContactRemoved ends the contact.
func (r *FirstContact) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	r.support.EndContact(peer)
}

// Recv handles data, summary vectors and requests.
func (r *FirstContact) Recv(now timing.VTimeInSec, id packet.ID) {
	pkt := r.support.Receive(now, id)
	if pkt == nil {
		return
	}

	from := pkt.Header.PrevHop

	switch p := pkt.Payload.(type) {
	case packet.Data:
		if rec, ok := r.support.AcceptData(now, pkt); ok {
			r.support.Announce(now, rec, nil)
		}
	case packet.SummaryVector:
		r.support.RequestMissing(now, from, p.IDs)
	case packet.Request:
		r.handOver(now, from, p)
	default:
		r.support.HandleControl(now, pkt)
	}
}

func (r *FirstContact) handOver(
	now timing.VTimeInSec,
	peer packet.NodeID,
	req packet.Request,
) {
	buf := r.support.Buffer()

	var recs []buffer.Record
	for _, rec := range r.support.Requested(req.IDs) {
		if rec.PrevHop != peer {
			recs = append(recs, rec)
		}
	}

	handed := 0
	for _, rec := range r.support.Offer(recs, req.Free) {
		if r.support.SendData(now, peer, rec, 1) == 0 {
			break
		}

		buf.Remove(rec.ID)
		handed++
	}

	if handed > 0 {
		r.support.env.Stats.Occupancy(r.support.Self(), buf.Size())
	}
}
