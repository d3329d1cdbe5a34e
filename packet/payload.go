package packet

// A Payload is the content of a packet. The set of payloads is closed; each
// payload reports the packet type it belongs to.
type Payload interface {
	Type() Type

	// Units returns the number of entries the payload carries, used to
	// estimate the size of control packets.
	Units() int

	payload()
}

// Data carries a copy of a message. Message is the ID of the original packet
// created by the application.
type Data struct {
	Message ID
}

// Type returns TypeData.
func (Data) Type() Type { return TypeData }

// Units returns 0; data packets have a fixed size.
func (Data) Units() int { return 0 }

func (Data) payload() {}

// SummaryVector lists the messages a node holds.
type SummaryVector struct {
	IDs []ID
}

// Type returns TypeSummaryVector.
func (SummaryVector) Type() Type { return TypeSummaryVector }

// Units returns the number of listed messages.
func (p SummaryVector) Units() int { return len(p.IDs) }

func (SummaryVector) payload() {}

// Request asks the receiver to transmit the listed messages. Free is the
// requester's advertised buffer space, negative if not advertised.
type Request struct {
	IDs  []ID
	Free int
}

// Type returns TypeRequest.
func (Request) Type() Type { return TypeRequest }

// Units returns the number of requested messages.
func (p Request) Units() int { return len(p.IDs) }

func (Request) payload() {}

// Vaccine lists messages known to be delivered.
type Vaccine struct {
	IDs []ID
}

// Type returns TypeVaccine.
func (Vaccine) Type() Type { return TypeVaccine }

// Units returns the number of listed messages.
func (p Vaccine) Units() int { return len(p.IDs) }

func (Vaccine) payload() {}

// BufferRequest asks the receiver to advertise its free buffer space.
type BufferRequest struct{}

// Type returns TypeBufferRequest.
func (BufferRequest) Type() Type { return TypeBufferRequest }

// Units returns 0.
func (BufferRequest) Units() int { return 0 }

func (BufferRequest) payload() {}

// BufferReply answers a BufferRequest.
type BufferReply struct {
	Free int
}

// Type returns TypeBufferReply.
func (BufferReply) Type() Type { return TypeBufferReply }

// Units returns 1.
func (BufferReply) Units() int { return 1 }

func (BufferReply) payload() {}

// Predictability carries a node's delivery predictabilities towards other
// nodes.
type Predictability struct {
	Values map[NodeID]float64
}

// Type returns TypePredictability.
func (Predictability) Type() Type { return TypePredictability }

// Units returns the number of entries.
func (p Predictability) Units() int { return len(p.Values) }

func (Predictability) payload() {}
