package packet

import "fmt"

// Type tags the shape of a packet's payload.
type Type int

// The packet types known to the simulator.
const (
	TypeData Type = iota
	TypeSummaryVector
	TypeRequest
	TypeVaccine
	TypeBufferRequest
	TypeBufferReply
	TypePredictability
)

var typeNames = map[Type]string{
	TypeData:           "Data",
	TypeSummaryVector:  "SummaryVector",
	TypeRequest:        "Request",
	TypeVaccine:        "Vaccine",
	TypeBufferRequest:  "BufferRequest",
	TypeBufferReply:    "BufferReply",
	TypePredictability: "Predictability",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// IsControl returns true for every type except Data.
func (t Type) IsControl() bool {
	return t != TypeData
}

// Header carries the routing metadata of a packet.
type Header struct {
	Type        Type
	Source      NodeID
	Destination NodeID
	PrevHop     NodeID
	NextHop     NodeID

	// Hops counts the transmissions the message went through.
	Hops int

	// Replicas is the number of copies the receiver becomes responsible for.
	Replicas int

	// Created is the time the original message was generated.
	Created float64
}

// Clone returns a copy of the header.
func (h Header) Clone() Header {
	return h
}
