package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// Epidemic floods messages. On contact both nodes exchange summary vectors
// and request the messages they miss.
type Epidemic struct {
	support *Support
}

// NewEpidemic creates an Epidemic router.
func NewEpidemic(s *Support) *Epidemic {
	return &Epidemic{support: s}
}

// Name returns "epidemic".
func (r *Epidemic) Name() string { return "epidemic" }

// NewContact does nothing.
func (r *Epidemic) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact starts the summary vector exchange.
func (r *Epidemic) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.support.BeginContact(now, peer, r.exchange)
}

func (r *Epidemic) exchange(
	now timing.VTimeInSec,
	peer packet.NodeID,
	peerFree int,
) {
	recs := r.support.Buffer().Matching(func(rec buffer.Record) bool {
		return rec.Destination != peer
	})

	r.support.Advertise(now, peer, recs, peerFree)
}

// ContactRemoved ends the contact.
func (r *Epidemic) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	r.support.EndContact(peer)
}

// Recv handles data, summary vectors and requests.
func (r *Epidemic) Recv(now timing.VTimeInSec, id packet.ID) {
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
		r.support.Forward(now, from, r.support.Requested(p.IDs), p.Free)
	default:
		r.support.HandleControl(now, pkt)
	}
}
