package packet

import (
	"math"

	log "github.com/sirupsen/logrus"
)

// A Pool owns every live packet of a simulation.
//
// Packets transmitted by broadcast carry a recipient countdown. Each receiver
// accesses the packet once; the pool drops the packet when the last receiver
// accessed it. Original packets are never counted down and live until the
// pool is discarded.
type Pool struct {
	packets map[ID]*Packet

	maxOriginal  ID
	nextOriginal ID
	nextOther    ID
}

// NewPool creates a pool that accepts up to maxOriginal original packets.
func NewPool(maxOriginal int) *Pool {
	if maxOriginal < 0 {
		log.WithField("max_original", maxOriginal).
			Panic("negative traffic load")
	}

	return &Pool{
		packets:     make(map[ID]*Packet),
		maxOriginal: ID(maxOriginal),
		nextOther:   ID(maxOriginal),
	}
}

// AddOriginal registers a message generated by the application and returns
// its ID.
func (p *Pool) AddOriginal(pkt *Packet) ID {
	if p.nextOriginal >= p.maxOriginal {
		log.WithFields(log.Fields{
			"max_original": p.maxOriginal,
			"source":       pkt.Header.Source,
			"destination":  pkt.Header.Destination,
		}).Panic("more original packets than the configured traffic load")
	}

	pkt.ID = p.nextOriginal
	pkt.original = true
	p.nextOriginal++
	p.packets[pkt.ID] = pkt

	return pkt.ID
}

// Add registers a replica or control packet and returns its ID.
func (p *Pool) Add(pkt *Packet) ID {
	if p.nextOther == math.MaxInt64 {
		log.Panic("packet ID space exhausted")
	}

	pkt.ID = p.nextOther
	pkt.original = false
	p.nextOther++
	p.packets[pkt.ID] = pkt

	return pkt.ID
}

// Get returns the packet with the given ID.
func (p *Pool) Get(id ID) (*Packet, bool) {
	pkt, ok := p.packets[id]
	return pkt, ok
}

// MustGet returns the packet with the given ID and aborts if the packet does
// not exist.
func (p *Pool) MustGet(id ID) *Packet {
	pkt, ok := p.packets[id]
	if !ok {
		log.WithField("packet", id).Panic("packet not found in pool")
	}

	return pkt
}

// IsOriginalID tells if the ID belongs to the original packet range.
func (p *Pool) IsOriginalID(id ID) bool {
	return id >= 0 && id < p.maxOriginal
}

// SetRecipients sets the number of receivers that have to access the packet
// before it is dropped from the pool.
func (p *Pool) SetRecipients(id ID, n int) {
	pkt := p.MustGet(id)
	if pkt.original {
		log.WithField("packet", id).Panic("original packets are not broadcast")
	}

	pkt.recipients = n
}

// Access returns the packet for one receiver. For non-original packets the
// recipient countdown is decremented and the packet is dropped from the pool
// when it reaches zero. The returned packet stays valid for the caller.
func (p *Pool) Access(id ID) *Packet {
	pkt := p.MustGet(id)
	if pkt.original {
		return pkt
	}

	if pkt.recipients <= 0 {
		log.WithFields(log.Fields{
			"packet": id,
			"type":   pkt.Header.Type,
		}).Panic("packet accessed more often than it was sent")
	}

	pkt.recipients--
	if pkt.recipients == 0 {
		delete(p.packets, id)
	}

	return pkt
}

// Erase removes a packet. It returns false if the packet did not exist.
func (p *Pool) Erase(id ID) bool {
	_, ok := p.packets[id]
	if ok {
		delete(p.packets, id)
	}

	return ok
}

// Len returns the number of packets in the pool.
func (p *Pool) Len() int {
	return len(p.packets)
}

// NumOriginals returns the number of original packets created so far.
func (p *Pool) NumOriginals() int {
	return int(p.nextOriginal)
}
