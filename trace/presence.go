package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/dtnsim/packet"
)

// Presence is the period a node takes part in the trace.
type Presence struct {
	Present bool
	First   float64
	Last    float64
}

// IsPresent tells if the node takes part in the trace at time t.
func (p Presence) IsPresent(t float64) bool {
	return p.Present && t >= p.First && t <= p.Last
}

// LoadPresence reads a presence file. Each line is "id<TAB>first<TAB>last",
// or "id<TAB>-" for a node that never appears. Nodes missing from the file
// are absent.
func LoadPresence(path string, nodes int) ([]Presence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening presence file: %w", err)
	}
	defer f.Close()

	out := make([]Presence, nodes)
	scanner := bufio.NewScanner(f)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		id, p, err := parsePresence(text, nodes)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}

		out[id] = p
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return out, nil
}

func parsePresence(text string, nodes int) (packet.NodeID, Presence, error) {
	fields := strings.Split(text, "\t")

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, Presence{}, fmt.Errorf("node id: %w", err)
	}

	if id < 0 || id >= nodes {
		return 0, Presence{}, fmt.Errorf("node id %d not in [0, %d)", id, nodes)
	}

	switch {
	case len(fields) == 2 && strings.TrimSpace(fields[1]) == "-":
		return packet.NodeID(id), Presence{}, nil
	case len(fields) != 3:
		return 0, Presence{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	first, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, Presence{}, fmt.Errorf("first time: %w", err)
	}

	last, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return 0, Presence{}, fmt.Errorf("last time: %w", err)
	}

	if !finite(first) || !finite(last) {
		return 0, Presence{}, fmt.Errorf("times %v and %v must be finite", first, last)
	}

	if first > last {
		return 0, Presence{}, fmt.Errorf("first %v after last %v", first, last)
	}

	return packet.NodeID(id), Presence{Present: true, First: first, Last: last}, nil
}
