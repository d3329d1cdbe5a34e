// Package trace reads contact traces.
//
// A trace has one contact per line: "a b start end", separated by
// whitespace and sorted by start time. Blank lines and lines starting with
// '#' are skipped.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/dtnsim/packet"
)

// A Contact is a period during which two nodes can communicate.
type Contact struct {
	A, B  packet.NodeID
	Start float64
	End   float64
}

// A Reader produces the contacts of a trace one at a time. It cannot be
// rewound.
type Reader struct {
	scanner   *bufio.Scanner
	closer    io.Closer
	name      string
	nodes     int
	maxLines  int
	line      int
	read      int
	lastStart float64
	done      bool
}

// Open opens a trace file. maxLines limits the number of contacts read, 0
// reads them all.
func Open(path string, nodes, maxLines int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	r := NewReader(f, nodes, maxLines)
	r.name = path
	r.closer = f

	return r, nil
}

// NewReader reads a trace from r.
func NewReader(r io.Reader, nodes, maxLines int) *Reader {
	return &Reader{
		scanner:  bufio.NewScanner(r),
		name:     "trace",
		nodes:    nodes,
		maxLines: maxLines,
	}
}

// Next returns the next contact. It returns false once the trace is
// exhausted. Malformed lines, node IDs outside [0, nodes), non-finite,
// negative or inverted times, unsorted start times and a trace shorter than
// the line limit are errors.
func (r *Reader) Next() (Contact, bool, error) {
	if r.done {
		return Contact{}, false, nil
	}

	if r.maxLines > 0 && r.read >= r.maxLines {
		r.done = true
		return Contact{}, false, nil
	}

	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		c, err := r.parse(text)
		if err != nil {
			return Contact{}, false, fmt.Errorf("%s:%d: %w", r.name, r.line, err)
		}

		r.read++
		r.lastStart = c.Start

		return c, true, nil
	}

	r.done = true

	if err := r.scanner.Err(); err != nil {
		return Contact{}, false, fmt.Errorf("reading %s: %w", r.name, err)
	}

	if r.maxLines > 0 && r.read < r.maxLines {
		return Contact{}, false, fmt.Errorf(
			"trace.lines: %d contacts requested but %s has only %d",
			r.maxLines, r.name, r.read)
	}

	return Contact{}, false, nil
}

func (r *Reader) parse(text string) (Contact, error) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return Contact{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	a, err := r.parseNode(fields[0])
	if err != nil {
		return Contact{}, err
	}

	b, err := r.parseNode(fields[1])
	if err != nil {
		return Contact{}, err
	}

	if a == b {
		return Contact{}, fmt.Errorf("node %d in contact with itself", a)
	}

	start, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Contact{}, fmt.Errorf("start time: %w", err)
	}

	end, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Contact{}, fmt.Errorf("end time: %w", err)
	}

	switch {
	case !finite(start):
		return Contact{}, fmt.Errorf("start time %v is not a finite number", start)
	case !finite(end):
		return Contact{}, fmt.Errorf("end time %v is not a finite number", end)
	case start < 0:
		return Contact{}, fmt.Errorf("negative start time %v", start)
	case start > end:
		return Contact{}, fmt.Errorf("start %v after end %v", start, end)
	case r.read > 0 && start < r.lastStart:
		return Contact{}, fmt.Errorf("start %v before previous start %v",
			start, r.lastStart)
	}

	return Contact{A: a, B: b, Start: start, End: end}, nil
}

func finite(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

func (r *Reader) parseNode(s string) (packet.NodeID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("node id: %w", err)
	}

	if id < 0 || id >= r.nodes {
		return 0, fmt.Errorf("node id %d not in [0, %d)", id, r.nodes)
	}

	return packet.NodeID(id), nil
}

// NumRead returns the number of contacts returned so far.
func (r *Reader) NumRead() int {
	return r.read
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	err := r.closer.Close()
	r.closer = nil

	return err
}

// ReadAll returns all the remaining contacts.
func ReadAll(r *Reader) ([]Contact, error) {
	var out []Contact

	for {
		c, ok, err := r.Next()
		if err != nil {
			return nil, err
		}

		if !ok {
			return out, nil
		}

		out = append(out, c)
	}
}

// Span describes a trace without holding its contacts.
type Span struct {
	Contacts int
	First    float64
	Last     float64
}

// Scan reads a whole trace file to validate it and find its time span.
func Scan(path string, nodes, maxLines int) (Span, error) {
	r, err := Open(path, nodes, maxLines)
	if err != nil {
		return Span{}, err
	}
	defer r.Close()

	var s Span

	for {
		c, ok, err := r.Next()
		if err != nil {
			return Span{}, err
		}

		if !ok {
			return s, nil
		}

		if s.Contacts == 0 {
			s.First = c.Start
		}

		if c.End > s.Last {
			s.Last = c.End
		}

		s.Contacts++
	}
}
