package routing

import (
	"math"
	"sort"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// ProphetParams are the PRoPHET constants.
type ProphetParams struct {
	PInit     float64
	Beta      float64
	Gamma     float64
	AgingUnit float64
}

// DefaultProphetParams returns the constants proposed by the PRoPHET
// authors, aging once every 30 seconds.
func DefaultProphetParams() ProphetParams {
	return ProphetParams{
		PInit:     0.75,
		Beta:      0.25,
		Gamma:     0.98,
		AgingUnit: 30,
	}
}

// Prophet forwards a message to a peer only if the peer is more likely to
// meet the destination. Delivery predictabilities grow on every encounter,
// decay with time and propagate transitively.
type Prophet struct {
	support  *Support
	params   ProphetParams
	preds    map[packet.NodeID]float64
	peers    map[packet.NodeID]map[packet.NodeID]float64
	lastAged timing.VTimeInSec
}

// NewProphet creates a Prophet router.
func NewProphet(s *Support, params ProphetParams) *Prophet {
	return &Prophet{
		support: s,
		params:  params,
		preds:   make(map[packet.NodeID]float64),
		peers:   make(map[packet.NodeID]map[packet.NodeID]float64),
	}
}

// Name returns "prophet".
func (r *Prophet) Name() string { return "prophet" }

// Predictability returns the delivery predictability towards n.
func (r *Prophet) Predictability(n packet.NodeID) float64 {
	return r.preds[n]
}

// NewContact does nothing.
func (r *Prophet) NewContact(timing.VTimeInSec, packet.NodeID) {}

// Contact updates the predictabilities and starts the exchange.
func (r *Prophet) Contact(now timing.VTimeInSec, peer packet.NodeID) {
	r.age(now)

	p := r.preds[peer]
	r.preds[peer] = p + (1-p)*r.params.PInit

	r.refreshUtility()
	r.support.BeginContact(now, peer, r.exchange)
}

func (r *Prophet) age(now timing.VTimeInSec) {
	if r.params.AgingUnit <= 0 || now <= r.lastAged {
		return
	}

	k := (now - r.lastAged) / r.params.AgingUnit
	factor := math.Pow(r.params.Gamma, k)

	for n, p := range r.preds {
		r.preds[n] = p * factor
	}

	r.lastAged = now
}

func (r *Prophet) transitive(peer packet.NodeID, values map[packet.NodeID]float64) {
	pab := r.preds[peer]

	nodes := make([]packet.NodeID, 0, len(values))
	for c := range values {
		nodes = append(nodes, c)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, c := range nodes {
		if c == r.support.Self() || c == peer {
			continue
		}

		pac := r.preds[c]
		r.preds[c] = pac + (1-pac)*pab*values[c]*r.params.Beta
	}
}

func (r *Prophet) refreshUtility() {
	buf := r.support.Buffer()
	for _, rec := range buf.Records() {
		buf.SetUtility(rec.ID, r.preds[rec.Destination])
	}
}

func (r *Prophet) peerIsBetter(peer, dst packet.NodeID) bool {
	values, ok := r.peers[peer]
	if !ok {
		return false
	}

	return values[dst] > r.preds[dst]
}

func (r *Prophet) exchange(
	now timing.VTimeInSec,
	peer packet.NodeID,
	peerFree int,
) {
	values := make(map[packet.NodeID]float64, len(r.preds))
	for n, p := range r.preds {
		values[n] = p
	}

	r.support.SendPacket(now, peer, packet.Header{},
		packet.Predictability{Values: values})

	recs := r.support.Buffer().Matching(func(rec buffer.Record) bool {
		return rec.Destination != peer
	})

	r.support.Advertise(now, peer, recs, peerFree)
}

// ContactRemoved forgets what peer told about its predictabilities.
func (r *Prophet) ContactRemoved(_ timing.VTimeInSec, peer packet.NodeID) {
	delete(r.peers, peer)
	r.support.EndContact(peer)
}

// Recv handles data, predictabilities, summary vectors and requests.
func (r *Prophet) Recv(now timing.VTimeInSec, id packet.ID) {
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

		r.support.Buffer().SetUtility(rec.ID, r.preds[rec.Destination])
		r.support.Announce(now, rec, func(n packet.NodeID) bool {
			return r.peerIsBetter(n, rec.Destination)
		})
	case packet.Predictability:
		r.peers[from] = p.Values
		r.transitive(from, p.Values)
		r.refreshUtility()
	case packet.SummaryVector:
		r.support.RequestMissing(now, from, p.IDs)
	case packet.Request:
		var recs []buffer.Record
		for _, rec := range r.support.Requested(p.IDs) {
			if r.peerIsBetter(from, rec.Destination) {
				recs = append(recs, rec)
			}
		}

		r.support.Forward(now, from, recs, p.Free)
	default:
		r.support.HandleControl(now, pkt)
	}
}
