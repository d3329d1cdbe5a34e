// Package congestion limits how many messages a node pushes to a peer
// during one contact.
package congestion

import (
	"fmt"
	"math"

	"github.com/sarchlab/dtnsim/buffer"
)

// A Control decides how much of an offer a peer can take.
type Control interface {
	Name() string

	// NeedsPeerBufferInfo tells if the routing layer must ask the peer for
	// its free buffer space before offering messages.
	NeedsPeerBufferInfo() bool

	// Filter cuts the ordered candidates down to what may be sent. A
	// peerFree of -1 means the peer has no capacity limit or did not say.
	Filter(candidates []buffer.Record, peerFree int) []buffer.Record

	// Advertise returns the free space reported to peers that ask.
	Advertise(buf *buffer.Buffer) int

	// ObserveDrop reports that the owner had to drop a message.
	ObserveDrop()

	// ObserveSuccess reports that the owner stored a message.
	ObserveSuccess()
}

// New creates a congestion control scheme by name.
func New(name string) (Control, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "bufferaware":
		return BufferAware{}, nil
	case "aimd":
		return NewAIMD(), nil
	default:
		return nil, fmt.Errorf("unknown congestion control %q", name)
	}
}

func truncate(candidates []buffer.Record, limit int) []buffer.Record {
	if limit < 0 || limit >= len(candidates) {
		return candidates
	}

	return candidates[:limit]
}

// None sends everything.
type None struct{}

// Name returns "none".
func (None) Name() string { return "none" }

// NeedsPeerBufferInfo returns false.
func (None) NeedsPeerBufferInfo() bool { return false }

// Filter returns the candidates unchanged.
func (None) Filter(candidates []buffer.Record, _ int) []buffer.Record {
	return candidates
}

// Advertise returns the real free space.
func (None) Advertise(buf *buffer.Buffer) int { return buf.Free() }

// ObserveDrop does nothing.
func (None) ObserveDrop() {}

// ObserveSuccess does nothing.
func (None) ObserveSuccess() {}

// BufferAware never sends more than the peer can store.
type BufferAware struct{}

// Name returns "bufferaware".
func (BufferAware) Name() string { return "bufferaware" }

// NeedsPeerBufferInfo returns true.
func (BufferAware) NeedsPeerBufferInfo() bool { return true }

// Filter truncates the candidates to the peer's free space.
func (BufferAware) Filter(candidates []buffer.Record, peerFree int) []buffer.Record {
	return truncate(candidates, peerFree)
}

// Advertise returns the real free space.
func (BufferAware) Advertise(buf *buffer.Buffer) int { return buf.Free() }

// ObserveDrop does nothing.
func (BufferAware) ObserveDrop() {}

// ObserveSuccess does nothing.
func (BufferAware) ObserveSuccess() {}

// AIMD keeps a per-node window that grows by one on every stored message
// and halves on every drop. The window caps both what the node sends and
// what it advertises.
type AIMD struct {
	window    float64
	minWindow float64
	maxWindow float64
}

// NewAIMD creates an AIMD control with a window of one message.
func NewAIMD() *AIMD {
	return &AIMD{
		window:    1,
		minWindow: 1,
		maxWindow: math.MaxInt32,
	}
}

// Name returns "aimd".
func (c *AIMD) Name() string { return "aimd" }

// NeedsPeerBufferInfo returns true.
func (c *AIMD) NeedsPeerBufferInfo() bool { return true }

// Window returns the current window in messages.
func (c *AIMD) Window() int {
	return int(c.window)
}

// Filter truncates the candidates to the smaller of the window and the
// peer's free space.
func (c *AIMD) Filter(candidates []buffer.Record, peerFree int) []buffer.Record {
	limit := c.Window()
	if peerFree >= 0 && peerFree < limit {
		limit = peerFree
	}

	return truncate(candidates, limit)
}

// Advertise returns the free space throttled by the window.
func (c *AIMD) Advertise(buf *buffer.Buffer) int {
	free := buf.Free()
	if free < 0 || free > c.Window() {
		return c.Window()
	}

	return free
}

// ObserveDrop halves the window.
func (c *AIMD) ObserveDrop() {
	c.window = math.Max(c.minWindow, c.window/2)
}

// ObserveSuccess grows the window by one message.
func (c *AIMD) ObserveSuccess() {
	c.window = math.Min(c.maxWindow, c.window+1)
}
