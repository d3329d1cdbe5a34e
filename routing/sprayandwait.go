package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// SprayAndWait bounds the number of copies of each message. A node holding
// more than one replica hands some of them to the nodes it meets; a node
// holding a single replica waits to meet the destination.
//
// In binary mode every holder gives half of its replicas away. Otherwise
// only the source sprays, one replica at a time.
type SprayAndWait struct {
	support *Support
	binary  bool
}

// NewSprayAndWait creates a SprayAndWait router.
func NewSprayAndWait(s *Support, binary bool) *SprayAndWait {
	return &SprayAndWait{support: s, binary: binary}
}

// Name returns "sprayandwait".
func (r *SprayAndWait) Name() string { return "sprayandwait" }

// NewContact does nothing.
func (r *SprayAndWait) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact advertises the messages that can still be sprayed.
func (r *SprayAndWait) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.support.BeginContact(now, peer, r.exchange)
}

func (r *SprayAndWait) canSpray(rec buffer.Record) bool {
	if rec.Replicas <= 1 {
		return false
	}

	return r.binary || rec.PrevHop == packet.Application
}

func (r *SprayAndWait) exchange(
	now timing.VTimeInSec,
	peer packet.NodeID,
	peerFree int,
) {
	recs := r.support.Buffer().Matching(func(rec buffer.Record) bool {
		return rec.Destination != peer && r.canSpray(rec)
	})

	r.support.Advertise(now, peer, recs, peerFree)
}

// ContactRemoved ends the contact.
func (r *SprayAndWait) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	r.support.EndContact(peer)
}

// Recv handles data, summary vectors and requests.
func (r *SprayAndWait) Recv(now timing.VTimeInSec, id packet.ID) {
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

		if r.canSpray(rec) {
			r.support.Announce(now, rec, nil)
		} else {
			r.support.DeliverIfConnected(now, rec)
		}
	case packet.SummaryVector:
		r.support.RequestMissing(now, from, p.IDs)
	case packet.Request:
		r.spray(now, from, p)
	default:
		r.support.HandleControl(now, pkt)
	}
}

func (r *SprayAndWait) spray(
	now timing.VTimeInSec,
	peer packet.NodeID,
	req packet.Request,
) {
	buf := r.support.Buffer()

	var recs []buffer.Record
	for _, rec := range r.support.Requested(req.IDs) {
		if r.canSpray(rec) {
			recs = append(recs, rec)
		}
	}

	for _, rec := range r.support.Offer(recs, req.Free) {
		give := 1
		if r.binary {
			give = rec.Replicas / 2
		}

		if r.support.SendData(now, peer, rec, give) == 0 {
			return
		}

		rec.Replicas -= give
		buf.Update(rec)
	}
}
