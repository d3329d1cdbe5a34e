package packet

import "fmt"

// A Packet is the unit transmitted between nodes.
type Packet struct {
	ID      ID
	Header  Header
	Size    int
	Payload Payload

	original   bool
	recipients int
}

// New creates a packet. The header type is taken from the payload so that
// the two can never disagree.
func New(header Header, payload Payload, size int) *Packet {
	header.Type = payload.Type()

	return &Packet{
		Header:  header,
		Payload: payload,
		Size:    size,
	}
}

// IsOriginal tells if the packet is a message generated by the application.
func (p *Packet) IsOriginal() bool {
	return p.original
}

// Recipients returns the number of receivers that still have to access the
// packet.
func (p *Packet) Recipients() int {
	return p.recipients
}

func (p *Packet) String() string {
	return fmt.Sprintf("%s#%d %s->%s via %s->%s hops=%d",
		p.Header.Type, p.ID,
		p.Header.Source, p.Header.Destination,
		p.Header.PrevHop, p.Header.NextHop,
		p.Header.Hops)
}
