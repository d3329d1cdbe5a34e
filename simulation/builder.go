package simulation

import (
	"github.com/rs/xid"
	"github.com/sarchlab/dtnsim/config"
	"github.com/sarchlab/dtnsim/connectivity"
	"github.com/sarchlab/dtnsim/datarecording"
	"github.com/sarchlab/dtnsim/stats"
	"github.com/sarchlab/dtnsim/timing"
)

// Builder can be used to build a simulation.
type Builder struct {
	settings config.Settings
	recorder datarecording.DataRecorder
	hooks    []timing.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithSettings sets the parameters of the simulation.
func (b Builder) WithSettings(s config.Settings) Builder {
	b.settings = s
	return b
}

// WithDataRecorder sets where the results are written. Without a recorder
// only the summary is computed.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithEngineHook adds a hook to the event engine.
func (b Builder) WithEngineHook(h timing.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// Build builds the simulation. The trace and traffic are only read by Run.
func (b Builder) Build() (*Simulator, error) {
	if err := b.settings.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		id:       xid.New().String(),
		settings: b.settings,
		engine:   timing.NewSerialEngine(),
		conns:    connectivity.NewConnectionMap(b.settings.Nodes),
		god:      stats.NewGod(),
		stats:    stats.NewStatistics(b.settings.Nodes),
		recorder: b.recorder,
	}

	s.medium = connectivity.NewMedium(
		s.conns, s.engine, s, b.settings.Link.Bandwidth)

	for _, h := range b.hooks {
		s.engine.AcceptHook(h)
	}

	return s, nil
}
