// Package simulation runs a contact trace through a network of nodes.
package simulation

import (
	"fmt"
	"math"
	"reflect"
	"sync/atomic"

	"github.com/sarchlab/dtnsim/config"
	"github.com/sarchlab/dtnsim/connectivity"
	"github.com/sarchlab/dtnsim/datarecording"
	"github.com/sarchlab/dtnsim/events"
	"github.com/sarchlab/dtnsim/node"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/rng"
	"github.com/sarchlab/dtnsim/routing"
	"github.com/sarchlab/dtnsim/stats"
	"github.com/sarchlab/dtnsim/timing"
	"github.com/sarchlab/dtnsim/trace"
	"github.com/sarchlab/dtnsim/traffic"
	log "github.com/sirupsen/logrus"
)

// Progress is a snapshot of a running simulation. It is safe to take from
// another goroutine.
type Progress struct {
	Phase          Phase
	Now            timing.VTimeInSec
	End            timing.VTimeInSec
	Contacts       int
	ContactsLoaded int
	Messages       int
	EventsHandled  uint64
}

// A Simulator owns every object of one simulation run.
type Simulator struct {
	id       string
	settings config.Settings
	phase    atomic.Int32

	engine   *timing.SerialEngine
	conns    *connectivity.ConnectionMap
	medium   *connectivity.Medium
	god      *stats.God
	stats    *stats.Statistics
	pool     *packet.Pool
	nodes    []*node.Node
	recorder datarecording.DataRecorder

	span     trace.Span
	messages []traffic.Message
	feeder   *contactFeeder
	summary  stats.Summary
}

// ID returns the unique ID of the run.
func (s *Simulator) ID() string {
	return s.id
}

// Settings returns the settings of the run.
func (s *Simulator) Settings() config.Settings {
	return s.settings
}

// Phase returns the current phase.
func (s *Simulator) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Simulator) setPhase(p Phase) {
	log.WithFields(log.Fields{
		"sim":   s.id,
		"phase": p.String(),
	}).Debug("phase")

	s.phase.Store(int32(p))
}

// Engine returns the event engine.
func (s *Simulator) Engine() *timing.SerialEngine {
	return s.engine
}

// Connections returns the connection map.
func (s *Simulator) Connections() *connectivity.ConnectionMap {
	return s.conns
}

// God returns the message ledger.
func (s *Simulator) God() *stats.God {
	return s.god
}

// Statistics returns the node counters.
func (s *Simulator) Statistics() *stats.Statistics {
	return s.stats
}

// Nodes returns the nodes. It is empty before Run.
func (s *Simulator) Nodes() []*node.Node {
	return s.nodes
}

// Summary returns the results. It is only meaningful once Run returned.
func (s *Simulator) Summary() stats.Summary {
	return s.summary
}

// Progress returns how far the run is.
func (s *Simulator) Progress() Progress {
	p := Progress{
		Phase:         s.Phase(),
		Now:           s.engine.Now(),
		EventsHandled: s.stats.EventsHandled(),
	}

	if p.Phase > Initializing {
		p.End = s.span.Last
		p.Contacts = s.span.Contacts
		p.Messages = len(s.messages)
	}

	if p.Phase > LoadingContacts && s.feeder != nil {
		p.ContactsLoaded = s.feeder.Loaded()
	}

	return p
}

// Run loads the traffic and the trace, dispatches every event and computes
// the summary.
func (s *Simulator) Run() error {
	if s.Phase() != Initializing {
		return fmt.Errorf("simulation %s already ran", s.id)
	}

	if err := s.initialize(); err != nil {
		return err
	}

	s.setPhase(LoadingTraffic)
	s.loadTraffic()

	s.setPhase(LoadingContacts)

	reader, err := s.loadContacts()
	if err != nil {
		return err
	}
	defer reader.Close()

	s.setPhase(Dispatching)

	if err := s.engine.Run(); err != nil {
		return err
	}

	s.setPhase(Finalizing)
	s.finalize()

	s.setPhase(Finished)

	return nil
}

func (s *Simulator) initialize() error {
	n := s.settings.Nodes

	span, err := trace.Scan(s.settings.Trace.File, n, s.settings.Trace.Lines)
	if err != nil {
		return err
	}

	s.span = span

	var presence []trace.Presence
	if s.settings.Presence.File != "" {
		presence, err = trace.LoadPresence(s.settings.Presence.File, n)
		if err != nil {
			return err
		}
	}

	gen, err := traffic.New(
		traffic.Config{
			Type:      s.settings.Traffic.Type,
			Load:      s.settings.Traffic.Load,
			File:      s.settings.Traffic.File,
			Warmup:    s.settings.Traffic.Warmup,
			Cooldown:  s.settings.Traffic.Cooldown,
			BurstTime: s.settings.Traffic.BurstTime,
		},
		n,
		traffic.Window{Start: span.First, End: span.Last},
		presence,
		rng.New("traffic", s.settings.Seed),
	)
	if err != nil {
		return err
	}

	s.messages, err = gen.Generate()
	if err != nil {
		return err
	}

	s.pool = packet.NewPool(len(s.messages))

	return s.buildNodes()
}

func (s *Simulator) buildNodes() error {
	env := routing.Env{
		Pool:        s.pool,
		Medium:      s.medium,
		God:         s.god,
		Stats:       s.stats,
		DataSize:    s.settings.Packet.Size,
		ControlSize: s.settings.Packet.ControlSize,
	}

	b := node.MakeBuilder().
		WithEnv(env).
		WithRouting(s.settings.RoutingConfig()).
		WithDeletion(s.settings.Deletion).
		WithScheduling(s.settings.Scheduling).
		WithCongestion(s.settings.Congestion).
		WithDropPolicy(s.settings.DropPolicy).
		WithTTL(s.settings.TTL).
		WithReplicas(s.settings.Replicas).
		WithCapacity(s.settings.Buffer.Capacity).
		WithCapacityJitter(s.settings.Buffer.Jitter).
		WithSeed(s.settings.Seed)

	s.nodes = make([]*node.Node, s.settings.Nodes)
	for i := range s.nodes {
		n, err := b.Build(packet.NodeID(i))
		if err != nil {
			return fmt.Errorf("building node %d: %w", i, err)
		}

		s.nodes[i] = n
	}

	return nil
}

func (s *Simulator) loadTraffic() {
	for _, m := range s.messages {
		s.engine.Schedule(
			events.NewGeneration(m.Time, s, m.Source, m.Destination))
	}

	log.WithFields(log.Fields{
		"sim":      s.id,
		"messages": len(s.messages),
	}).Info("traffic loaded")
}

func (s *Simulator) loadContacts() (*trace.Reader, error) {
	reader, err := trace.Open(
		s.settings.Trace.File, s.settings.Nodes, s.settings.Trace.Lines)
	if err != nil {
		return nil, err
	}

	s.feeder, err = newContactFeeder(
		reader, s.settings.Trace.Window, s.engine, s)
	if err != nil {
		reader.Close()
		return nil, err
	}

	if s.settings.Trace.Window > 0 {
		s.engine.RegisterFeeder(s.feeder)
		return reader, nil
	}

	if err := s.feeder.FeedAll(); err != nil {
		reader.Close()
		return nil, err
	}

	log.WithFields(log.Fields{
		"sim":      s.id,
		"contacts": s.feeder.Loaded(),
	}).Info("contacts loaded")

	return reader, nil
}

// Handle dispatches an event to the nodes.
func (s *Simulator) Handle(e timing.Event) error {
	now := e.Time()
	s.god.SetSimTime(now)
	s.stats.EventHandled()

	switch e := e.(type) {
	case *events.ContactUp:
		had := s.conns.HaveMet(e.A, e.B)
		s.conns.Connect(e.A, e.B)
		s.nodes[e.A].ConUpdate(now, e.B, true, had)
	case *events.ContactDown:
		s.conns.Disconnect(e.A, e.B)
		s.nodes[e.A].ConUpdate(now, e.B, false, false)
	case *events.Transmission:
		s.handleTransmission(now, e)
	default:
		log.WithFields(log.Fields{
			"sim":   s.id,
			"time":  now,
			"event": reflect.TypeOf(e).String(),
		}).Panic("unknown event")
	}

	return nil
}

func (s *Simulator) handleTransmission(
	now timing.VTimeInSec,
	e *events.Transmission,
) {
	if e.FromApplication() {
		s.nodes[e.Receiver].RecvFromApp(now, e.Destination)
		return
	}

	if s.conns.AreConnected(e.Sender, e.Receiver) {
		s.nodes[e.Receiver].Recv(now, e.Packet)
		return
	}

	s.pool.Access(e.Packet)
	s.stats.TransmissionLost()

	log.WithFields(log.Fields{
		"sim":      s.id,
		"time":     now,
		"packet":   e.Packet,
		"sender":   e.Sender,
		"receiver": e.Receiver,
	}).Debug("transmission lost")
}

func (s *Simulator) finalize() {
	end := math.Max(s.engine.Now(), s.span.Last)

	for _, n := range s.nodes {
		n.Finalize(end)
	}

	s.summary = stats.Summarize(s.god, s.stats, end)

	if s.recorder != nil {
		stats.WriteReport(s.recorder, s.summary, s.god, s.stats)
	}

	log.WithFields(log.Fields{
		"sim":       s.id,
		"generated": s.summary.Generated,
		"delivered": s.summary.Delivered,
		"events":    s.stats.EventsHandled(),
	}).Info("simulation done")
}
