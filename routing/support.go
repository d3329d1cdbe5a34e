package routing

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
	log "github.com/sirupsen/logrus"
)

// ContactState is the progress of the shared part of a contact.
type ContactState int

// The states of a contact. A contact without buffer handshake goes straight
// from VaccineExchange to AfterDirectTransfers.
const (
	Idle ContactState = iota
	DirectDeliveryCheck
	VaccineExchange
	AwaitingBufferReply
	AfterDirectTransfers
)

func (s ContactState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case DirectDeliveryCheck:
		return "DirectDeliveryCheck"
	case VaccineExchange:
		return "VaccineExchange"
	case AwaitingBufferReply:
		return "AwaitingBufferReply"
	case AfterDirectTransfers:
		return "AfterDirectTransfers"
	default:
		return "Unknown"
	}
}

// AfterDirect continues a contact once the shared steps are done. peerFree
// is the buffer space the peer advertised, -1 if unknown or unlimited.
type AfterDirect func(now timing.VTimeInSec, peer packet.NodeID, peerFree int)

type contact struct {
	state ContactState
	next  AfterDirect
}

// Support implements the behavior shared by all the routing protocols.
type Support struct {
	self     packet.NodeID
	buf      *buffer.Buffer
	env      Env
	policies Policies
	contacts map[packet.NodeID]*contact
}

// NewSupport creates the shared routing behavior of a node.
func NewSupport(
	self packet.NodeID,
	buf *buffer.Buffer,
	env Env,
	policies Policies,
) *Support {
	if policies.Replicas < 1 {
		policies.Replicas = 1
	}

	return &Support{
		self:     self,
		buf:      buf,
		env:      env,
		policies: policies,
		contacts: make(map[packet.NodeID]*contact),
	}
}

// Self returns the node the support belongs to.
func (s *Support) Self() packet.NodeID {
	return s.self
}

// Buffer returns the node buffer.
func (s *Support) Buffer() *buffer.Buffer {
	return s.buf
}

// Policies returns the node policies.
func (s *Support) Policies() Policies {
	return s.policies
}

// State returns the state of the contact with peer.
func (s *Support) State(peer packet.NodeID) ContactState {
	c, ok := s.contacts[peer]
	if !ok {
		return Idle
	}

	return c.state
}

// IsConnected tells if the node is in contact with peer.
func (s *Support) IsConnected(peer packet.NodeID) bool {
	return s.env.Medium.Connections().AreConnected(s.self, peer)
}

// Neighbors returns the nodes in contact.
func (s *Support) Neighbors() []packet.NodeID {
	return s.env.Medium.Connections().Neighbors(s.self)
}

func (s *Support) logger() *log.Entry {
	return log.WithField("node", s.self)
}

// Purge removes expired and delivered messages from the buffer.
func (s *Support) Purge(now timing.VTimeInSec) {
	p := s.policies.Deletion.Purge(now, s.buf)
	if p.Len() == 0 {
		return
	}

	s.env.Stats.Expired(s.self, len(p.Expired))
	s.env.Stats.Purged(s.self, len(p.Delivered))
	s.env.Stats.Occupancy(s.self, s.buf.Size())
}

// BeginContact runs the shared steps of a contact and then next. Direct
// delivery always comes first. If the congestion control needs to know the
// peer's free space, next runs when the peer's reply arrives.
func (s *Support) BeginContact(
	now timing.VTimeInSec,
	peer packet.NodeID,
	next AfterDirect,
) {
	c := &contact{next: next}
	s.contacts[peer] = c

	s.Purge(now)

	c.state = DirectDeliveryCheck
	s.SendDirectPackets(now, peer)

	if s.policies.Deletion.SupportsVaccine() {
		c.state = VaccineExchange
		s.SendVaccine(now, peer)
	}

	if s.policies.Congestion.NeedsPeerBufferInfo() {
		c.state = AwaitingBufferReply
		s.SendPacket(now, peer, packet.Header{}, packet.BufferRequest{})

		return
	}

	s.finishContact(now, peer, c, -1)
}

func (s *Support) finishContact(
	now timing.VTimeInSec,
	peer packet.NodeID,
	c *contact,
	peerFree int,
) {
	c.state = AfterDirectTransfers
	if c.next != nil {
		c.next(now, peer, peerFree)
	}

	c.state = Idle
}

// EndContact forgets the contact with peer.
func (s *Support) EndContact(peer packet.NodeID) {
	delete(s.contacts, peer)
}

// SendDirectPackets hands every message destined to peer to it.
func (s *Support) SendDirectPackets(now timing.VTimeInSec, peer packet.NodeID) int {
	sent := 0

	for _, rec := range s.buf.Matching(func(r buffer.Record) bool {
		return r.Destination == peer
	}) {
		if s.SendData(now, peer, rec, 1) == 0 {
			break
		}

		s.policies.Deletion.MarkDelivered(rec.ID)
		s.buf.Remove(rec.ID)
		sent++
	}

	if sent > 0 {
		s.env.Stats.Occupancy(s.self, s.buf.Size())
	}

	return sent
}

// DeliverIfConnected hands the message to its destination if the node is
// in contact with it. It returns true if the message left the buffer.
func (s *Support) DeliverIfConnected(now timing.VTimeInSec, rec buffer.Record) bool {
	if !s.IsConnected(rec.Destination) {
		return false
	}

	if s.SendData(now, rec.Destination, rec, 1) == 0 {
		return false
	}

	s.policies.Deletion.MarkDelivered(rec.ID)
	s.buf.Remove(rec.ID)
	s.env.Stats.Occupancy(s.self, s.buf.Size())

	return true
}

// SendVaccine tells peer about the messages known to be delivered.
func (s *Support) SendVaccine(now timing.VTimeInSec, peer packet.NodeID) {
	ids := s.policies.Deletion.DeliveredIDs()
	if len(ids) == 0 {
		return
	}

	s.SendPacket(now, peer, packet.Header{}, packet.Vaccine{IDs: ids})
}

// SendData transmits a copy of a buffered message to peer, making it
// responsible for the given number of replicas.
func (s *Support) SendData(
	now timing.VTimeInSec,
	peer packet.NodeID,
	rec buffer.Record,
	replicas int,
) int {
	h := packet.Header{
		Source:      rec.Source,
		Destination: rec.Destination,
		Hops:        rec.Hops + 1,
		Replicas:    replicas,
		Created:     rec.Created,
	}

	return s.SendPacket(now, peer, h, packet.Data{Message: rec.ID})
}

// SendPacket broadcasts a new packet addressed to peer and returns the
// number of nodes that will receive it. Packets nobody receives are erased
// right away.
func (s *Support) SendPacket(
	now timing.VTimeInSec,
	peer packet.NodeID,
	header packet.Header,
	payload packet.Payload,
) int {
	h := header.Clone()
	h.PrevHop = s.self
	h.NextHop = peer

	if payload.Type().IsControl() {
		h.Source = s.self
		h.Destination = peer
		h.Created = now
	}

	pkt := packet.New(h, payload, s.packetSize(payload))
	id := s.env.Pool.Add(pkt)

	n := s.env.Medium.Broadcast(now, s.self, pkt)
	if n == 0 {
		s.env.Pool.Erase(id)
		return 0
	}

	s.env.Pool.SetRecipients(id, n)
	s.env.Stats.Sent(s.self, pkt.Header.Type)

	return n
}

func (s *Support) packetSize(payload packet.Payload) int {
	if !payload.Type().IsControl() {
		return s.env.DataSize
	}

	units := payload.Units()
	if units < 1 {
		units = 1
	}

	return s.env.ControlSize * units
}

// Receive accesses the packet and returns it if the node is its next hop.
// Overheard packets return nil.
func (s *Support) Receive(now timing.VTimeInSec, id packet.ID) *packet.Packet {
	pkt := s.env.Pool.Access(id)

	if pkt.IsOriginal() {
		return pkt
	}

	if pkt.Header.NextHop != s.self {
		return nil
	}

	if pkt.Header.Type.IsControl() {
		s.env.Stats.ControlReceived(s.self)
	} else {
		s.env.Stats.Forwarded(s.self)
	}

	return pkt
}

// AcceptData handles a data packet addressed to the node. It returns the
// stored record and true if the node became a holder of the message.
func (s *Support) AcceptData(
	now timing.VTimeInSec,
	pkt *packet.Packet,
) (buffer.Record, bool) {
	data := pkt.Payload.(packet.Data)
	h := pkt.Header

	if pkt.IsOriginal() {
		return s.admit(buffer.Record{
			ID:          data.Message,
			Source:      h.Source,
			Destination: h.Destination,
			PrevHop:     packet.Application,
			Arrival:     now,
			Created:     h.Created,
			Replicas:    s.policies.Replicas,
		})
	}

	if h.Destination == s.self {
		s.deliver(now, data.Message, h.Hops)
		return buffer.Record{}, false
	}

	if s.policies.Deletion.IsDelivered(data.Message) {
		s.env.Stats.VaccineRejection(s.self)
		return buffer.Record{}, false
	}

	// Two peers may answer the same request in one contact window. The extra
	// copy only counts as a duplicate; Buffer.Add still panics on a double
	// insertion.
	if s.buf.Has(data.Message) {
		s.env.Stats.Duplicate(s.self)
		return buffer.Record{}, false
	}

	if s.policies.TTL > 0 && now-h.Created > s.policies.TTL {
		s.env.Stats.Expired(s.self, 1)
		return buffer.Record{}, false
	}

	replicas := h.Replicas
	if replicas < 1 {
		replicas = 1
	}

	return s.admit(buffer.Record{
		ID:          data.Message,
		Source:      h.Source,
		Destination: h.Destination,
		PrevHop:     h.PrevHop,
		Arrival:     now,
		Created:     h.Created,
		Hops:        h.Hops,
		Replicas:    replicas,
	})
}

func (s *Support) deliver(now timing.VTimeInSec, id packet.ID, hops int) {
	s.policies.Deletion.MarkDelivered(id)

	if !s.env.God.Delivered(id, now, hops) {
		s.env.Stats.Duplicate(s.self)
		return
	}

	s.env.Stats.Delivered(s.self)
	s.logger().WithFields(log.Fields{
		"packet": id,
		"time":   now,
		"hops":   hops,
	}).Debug("message delivered")
}

func (s *Support) admit(rec buffer.Record) (buffer.Record, bool) {
	evicted, stored := s.buf.Admit(rec, s.policies.Drop)

	if len(evicted) > 0 {
		s.env.Stats.Dropped(s.self, len(evicted))
		s.policies.Congestion.ObserveDrop()
	}

	if stored {
		s.policies.Congestion.ObserveSuccess()
	}

	s.env.Stats.Occupancy(s.self, s.buf.Size())

	return rec, stored
}

// Offer orders the records by the scheduling policy and cuts them by the
// congestion control.
func (s *Support) Offer(recs []buffer.Record, peerFree int) []buffer.Record {
	ordered := s.policies.Scheduling.Order(recs)
	return s.policies.Congestion.Filter(ordered, peerFree)
}

// Forward sends the offered records to peer. Under a deletion mechanism
// that forbids duplicates the node gives up each forwarded copy.
func (s *Support) Forward(
	now timing.VTimeInSec,
	peer packet.NodeID,
	recs []buffer.Record,
	peerFree int,
) int {
	sent := 0

	for _, rec := range s.Offer(recs, peerFree) {
		if s.SendData(now, peer, rec, 1) == 0 {
			break
		}

		sent++

		if s.policies.Deletion.NoDuplicates() {
			s.buf.Remove(rec.ID)
		}
	}

	if sent > 0 && s.policies.Deletion.NoDuplicates() {
		s.env.Stats.Occupancy(s.self, s.buf.Size())
	}

	return sent
}

// SendSummary advertises message IDs to peer. Empty summaries are not sent.
func (s *Support) SendSummary(
	now timing.VTimeInSec,
	peer packet.NodeID,
	ids []packet.ID,
) {
	if len(ids) == 0 {
		return
	}

	s.SendPacket(now, peer, packet.Header{}, packet.SummaryVector{IDs: ids})
}

// RequestMissing asks peer for the advertised messages the node neither
// holds nor knows to be delivered.
func (s *Support) RequestMissing(
	now timing.VTimeInSec,
	peer packet.NodeID,
	ids []packet.ID,
) {
	var missing []packet.ID

	for _, id := range ids {
		if s.buf.Has(id) || s.policies.Deletion.IsDelivered(id) {
			continue
		}

		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return
	}

	s.SendPacket(now, peer, packet.Header{}, packet.Request{
		IDs:  missing,
		Free: s.policies.Congestion.Advertise(s.buf),
	})
}

// Requested returns the buffered records among the requested IDs, in the
// order they were requested.
func (s *Support) Requested(ids []packet.ID) []buffer.Record {
	var out []buffer.Record

	for _, id := range ids {
		if rec, ok := s.buf.Get(id); ok {
			out = append(out, rec)
		}
	}

	return out
}

// HandleControl processes the control packets all protocols understand.
// Any other packet type is a protocol error and aborts the simulation.
func (s *Support) HandleControl(now timing.VTimeInSec, pkt *packet.Packet) {
	peer := pkt.Header.PrevHop

	switch p := pkt.Payload.(type) {
	case packet.Vaccine:
		if len(s.policies.Deletion.Learn(p.IDs)) > 0 {
			s.Purge(now)
		}
	case packet.BufferRequest:
		s.SendPacket(now, peer, packet.Header{}, packet.BufferReply{
			Free: s.policies.Congestion.Advertise(s.buf),
		})
	case packet.BufferReply:
		c, ok := s.contacts[peer]
		if !ok || c.state != AwaitingBufferReply {
			return
		}

		s.finishContact(now, peer, c, p.Free)
	default:
		s.logger().WithFields(log.Fields{
			"packet": pkt.ID,
			"type":   pkt.Header.Type,
			"from":   peer,
			"time":   now,
		}).Panic("unexpected packet type")
	}
}

// Announce spreads a newly stored message. The message goes straight to its
// destination when it is in contact; otherwise it is advertised to every
// neighbour accepted by eligible except the one it came from.
func (s *Support) Announce(
	now timing.VTimeInSec,
	rec buffer.Record,
	eligible func(peer packet.NodeID) bool,
) {
	if s.DeliverIfConnected(now, rec) {
		return
	}

	for _, n := range s.Neighbors() {
		if n == rec.PrevHop {
			continue
		}

		if eligible != nil && !eligible(n) {
			continue
		}

		s.SendSummary(now, n, []packet.ID{rec.ID})
	}
}

// Advertise sends peer a summary of the records the protocol is willing to
// hand over, ordered and cut like an offer.
func (s *Support) Advertise(
	now timing.VTimeInSec,
	peer packet.NodeID,
	recs []buffer.Record,
	peerFree int,
) {
	offered := s.Offer(recs, peerFree)

	ids := make([]packet.ID, 0, len(offered))
	for _, r := range offered {
		ids = append(ids, r.ID)
	}

	s.SendSummary(now, peer, ids)
}
