package node

import (
	"fmt"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/congestion"
	"github.com/sarchlab/dtnsim/deletion"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/rng"
	"github.com/sarchlab/dtnsim/routing"
	"github.com/sarchlab/dtnsim/scheduling"
)

// A Builder creates nodes that share the same configuration.
type Builder struct {
	env        routing.Env
	routing    routing.Config
	deletion   string
	scheduling string
	congestion string
	drop       string
	ttl        float64
	replicas   int
	capacity   int
	jitter     int
	seed       uint64
}

// MakeBuilder creates a builder with infinite buffers and epidemic routing.
func MakeBuilder() Builder {
	return Builder{
		routing:  routing.Config{Name: "epidemic"},
		replicas: 1,
		capacity: buffer.Infinite,
	}
}

// WithEnv sets the simulation wide collaborators.
func (b Builder) WithEnv(env routing.Env) Builder {
	b.env = env
	return b
}

// WithRouting sets the routing protocol.
func (b Builder) WithRouting(cfg routing.Config) Builder {
	b.routing = cfg
	return b
}

// WithDeletion sets the deletion mechanism.
func (b Builder) WithDeletion(name string) Builder {
	b.deletion = name
	return b
}

// WithScheduling sets the scheduling policy.
func (b Builder) WithScheduling(name string) Builder {
	b.scheduling = name
	return b
}

// WithCongestion sets the congestion control.
func (b Builder) WithCongestion(name string) Builder {
	b.congestion = name
	return b
}

// WithDropPolicy sets the policy applied when a buffer overflows.
func (b Builder) WithDropPolicy(name string) Builder {
	b.drop = name
	return b
}

// WithTTL sets the message lifetime. Zero means forever.
func (b Builder) WithTTL(ttl float64) Builder {
	b.ttl = ttl
	return b
}

// WithReplicas sets the number of copies a source starts with.
func (b Builder) WithReplicas(n int) Builder {
	b.replicas = n
	return b
}

// WithCapacity sets the buffer capacity in messages, buffer.Infinite for no
// limit.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithCapacityJitter varies each node's capacity by a uniform integer in
// [-jitter, +jitter].
func (b Builder) WithCapacityJitter(jitter int) Builder {
	b.jitter = jitter
	return b
}

// WithSeed sets the seed of the node random streams.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

func (b Builder) capacityFor(src rng.Source) int {
	if b.capacity == buffer.Infinite || b.jitter <= 0 {
		return b.capacity
	}

	c := b.capacity + rng.Intn(src, 2*b.jitter+1) - b.jitter
	if c < 1 {
		c = 1
	}

	return c
}

// Build creates the node with the given ID.
func (b Builder) Build(id packet.NodeID) (*Node, error) {
	src := rng.New(fmt.Sprintf("node%d", id), b.seed)

	buf := buffer.New(id, b.capacityFor(src))
	if b.env.God != nil {
		buf.AcceptHook(b.env.God)
	}

	del, err := deletion.New(b.deletion, b.ttl, b.env.God)
	if err != nil {
		return nil, err
	}

	sched, err := scheduling.New(b.scheduling, src)
	if err != nil {
		return nil, err
	}

	cc, err := congestion.New(b.congestion)
	if err != nil {
		return nil, err
	}

	drop, err := buffer.NewDropPolicy(b.drop)
	if err != nil {
		return nil, err
	}

	support := routing.NewSupport(id, buf, b.env, routing.Policies{
		Deletion:   del,
		Scheduling: sched,
		Congestion: cc,
		Drop:       drop,
		TTL:        b.ttl,
		Replicas:   b.replicas,
	})

	r, err := routing.New(b.routing, support)
	if err != nil {
		return nil, err
	}

	return &Node{
		id:       id,
		buf:      buf,
		support:  support,
		routing:  r,
		env:      b.env,
		dataSize: b.env.DataSize,
	}, nil
}
