// Package events defines the events that drive a network simulation.
package events

import (
	"fmt"

	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/timing"
)

// ContactUp notifies node A that node B came into contact. Contacts are
// always scheduled as a pair (A,B) and (B,A).
type ContactUp struct {
	*timing.EventBase
	A, B packet.NodeID
}

// NewContactUp creates a ContactUp event.
func NewContactUp(
	t timing.VTimeInSec,
	handler timing.Handler,
	a, b packet.NodeID,
) *ContactUp {
	return &ContactUp{
		EventBase: timing.NewEventBase(t, handler),
		A:         a,
		B:         b,
	}
}

func (e *ContactUp) String() string {
	return fmt.Sprintf("up %s-%s", e.A, e.B)
}

// ContactDown notifies node A that node B left.
type ContactDown struct {
	*timing.EventBase
	A, B packet.NodeID
}

// NewContactDown creates a ContactDown event.
func NewContactDown(
	t timing.VTimeInSec,
	handler timing.Handler,
	a, b packet.NodeID,
) *ContactDown {
	return &ContactDown{
		EventBase: timing.NewEventBase(t, handler),
		A:         a,
		B:         b,
	}
}

func (e *ContactDown) String() string {
	return fmt.Sprintf("down %s-%s", e.A, e.B)
}

// Transmission delivers a packet from Sender to Receiver.
//
// When Sender is packet.Application the event represents the generation of a
// new message at Receiver addressed to Destination, and Packet is unused.
// Generated messages come from the traffic model and are primary events.
// Transmissions between nodes are secondary events so that they are handled
// after the contact events of the same instant.
type Transmission struct {
	*timing.EventBase
	Sender      packet.NodeID
	Receiver    packet.NodeID
	Packet      packet.ID
	Destination packet.NodeID
}

// NewTransmission creates a Transmission between two nodes.
func NewTransmission(
	t timing.VTimeInSec,
	handler timing.Handler,
	sender, receiver packet.NodeID,
	id packet.ID,
) *Transmission {
	return &Transmission{
		EventBase:   timing.NewSecondaryEventBase(t, handler),
		Sender:      sender,
		Receiver:    receiver,
		Packet:      id,
		Destination: packet.None,
	}
}

// NewGeneration creates a Transmission from the application layer.
func NewGeneration(
	t timing.VTimeInSec,
	handler timing.Handler,
	source, destination packet.NodeID,
) *Transmission {
	return &Transmission{
		EventBase:   timing.NewEventBase(t, handler),
		Sender:      packet.Application,
		Receiver:    source,
		Packet:      -1,
		Destination: destination,
	}
}

// FromApplication tells if the transmission creates a new message.
func (e *Transmission) FromApplication() bool {
	return e.Sender == packet.Application
}

func (e *Transmission) String() string {
	if e.FromApplication() {
		return fmt.Sprintf("generate %s->%s", e.Receiver, e.Destination)
	}

	return fmt.Sprintf("tx #%d %s->%s", e.Packet, e.Sender, e.Receiver)
}
