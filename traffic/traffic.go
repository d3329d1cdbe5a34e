// Package traffic generates the messages the application layer injects into
// the network.
package traffic

import (
	"fmt"
	"sort"

	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/rng"
	"github.com/sarchlab/dtnsim/trace"
)

// A Message is a message to generate.
type Message struct {
	Time        float64       `yaml:"time"`
	Source      packet.NodeID `yaml:"source"`
	Destination packet.NodeID `yaml:"destination"`
}

// A Generator produces the messages of a simulation sorted by time.
type Generator interface {
	Name() string
	Generate() ([]Message, error)
}

// Config selects a traffic model.
type Config struct {
	Type      string
	Load      int
	File      string
	Warmup    float64
	Cooldown  float64
	BurstTime float64
}

// Window is the period of the trace in which messages may be created.
type Window struct {
	Start float64
	End   float64
}

// nodeSet picks nodes, optionally among those present at a given time.
type nodeSet struct {
	nodes    int
	presence []trace.Presence
	src      rng.Source
}

func (s nodeSet) presentAt(t float64) []packet.NodeID {
	out := make([]packet.NodeID, 0, s.nodes)
	for i := 0; i < s.nodes; i++ {
		if s.presence == nil || s.presence[i].IsPresent(t) {
			out = append(out, packet.NodeID(i))
		}
	}

	return out
}

// pair returns a random source and a different random destination among
// the nodes present at t.
func (s nodeSet) pair(t float64) (packet.NodeID, packet.NodeID, bool) {
	present := s.presentAt(t)
	if len(present) < 2 {
		return 0, 0, false
	}

	i := rng.Intn(s.src, len(present))
	j := rng.Intn(s.src, len(present)-1)
	if j >= i {
		j++
	}

	return present[i], present[j], true
}

// New creates a generator. The window is shrunk by the warmup and cooldown
// periods. Presence may be nil, in which case every node is always present.
func New(
	cfg Config,
	nodes int,
	window Window,
	presence []trace.Presence,
	src rng.Source,
) (Generator, error) {
	if cfg.Load < 0 {
		return nil, fmt.Errorf("negative traffic load %d", cfg.Load)
	}

	w := Window{Start: window.Start + cfg.Warmup, End: window.End - cfg.Cooldown}
	if w.End < w.Start {
		return nil, fmt.Errorf("traffic window [%v, %v] is empty", w.Start, w.End)
	}

	set := nodeSet{nodes: nodes, presence: presence, src: src}

	switch cfg.Type {
	case "", "uniform":
		return &Uniform{set: set, load: cfg.Load, window: w}, nil
	case "burst":
		return &Burst{set: set, load: cfg.Load, at: cfg.BurstTime}, nil
	case "sample":
		return &Sample{set: set, load: cfg.Load, window: w}, nil
	case "predefined":
		if cfg.File == "" {
			return nil, fmt.Errorf("predefined traffic needs traffic.file")
		}

		return &Predefined{path: cfg.File, nodes: nodes, load: cfg.Load}, nil
	default:
		return nil, fmt.Errorf("unknown traffic type %q", cfg.Type)
	}
}

func sortByTime(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Time < msgs[j].Time
	})
}

// Uniform spreads the messages uniformly over the window between random
// pairs of present nodes.
type Uniform struct {
	set    nodeSet
	load   int
	window Window
}

// Name returns "uniform".
func (g *Uniform) Name() string { return "uniform" }

// Generate creates the messages. Times at which fewer than two nodes are
// present produce no message.
func (g *Uniform) Generate() ([]Message, error) {
	times := make([]float64, g.load)
	for i := range times {
		times[i] = rng.Uniform(g.set.src, g.window.Start, g.window.End)
	}

	sort.Float64s(times)

	msgs := make([]Message, 0, g.load)
	for _, t := range times {
		src, dst, ok := g.set.pair(t)
		if !ok {
			continue
		}

		msgs = append(msgs, Message{Time: t, Source: src, Destination: dst})
	}

	return msgs, nil
}

// Burst creates all the messages at the same instant.
type Burst struct {
	set  nodeSet
	load int
	at   float64
}

// Name returns "burst".
func (g *Burst) Name() string { return "burst" }

// Generate creates the messages.
func (g *Burst) Generate() ([]Message, error) {
	msgs := make([]Message, 0, g.load)
	for i := 0; i < g.load; i++ {
		src, dst, ok := g.set.pair(g.at)
		if !ok {
			break
		}

		msgs = append(msgs, Message{Time: g.at, Source: src, Destination: dst})
	}

	return msgs, nil
}

// Sample draws source-destination pairs without replacement, so that no
// pair carries more than one message. Times are uniform over the window.
type Sample struct {
	set    nodeSet
	load   int
	window Window
}

// Name returns "sample".
func (g *Sample) Name() string { return "sample" }

// Generate creates the messages.
func (g *Sample) Generate() ([]Message, error) {
	n := g.set.nodes
	if g.load > n*(n-1) {
		return nil, fmt.Errorf("traffic load %d exceeds the %d node pairs",
			g.load, n*(n-1))
	}

	pairs := make([][2]packet.NodeID, 0, n*(n-1))
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a != b {
				pairs = append(pairs, [2]packet.NodeID{packet.NodeID(a), packet.NodeID(b)})
			}
		}
	}

	rng.Shuffle(g.set.src, len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})

	msgs := make([]Message, 0, g.load)
	for _, p := range pairs[:g.load] {
		msgs = append(msgs, Message{
			Time:        rng.Uniform(g.set.src, g.window.Start, g.window.End),
			Source:      p[0],
			Destination: p[1],
		})
	}

	sortByTime(msgs)

	return msgs, nil
}
