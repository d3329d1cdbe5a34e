// Package config loads and validates the simulation settings.
//
// Settings come from, in increasing priority, the defaults, a YAML, JSON or
// TOML file, DTNSIM_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/congestion"
	"github.com/sarchlab/dtnsim/deletion"
	"github.com/sarchlab/dtnsim/packet"
	"github.com/sarchlab/dtnsim/rng"
	"github.com/sarchlab/dtnsim/routing"
	"github.com/sarchlab/dtnsim/scheduling"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read.
const EnvPrefix = "DTNSIM"

// TraceSettings locate the contact trace.
type TraceSettings struct {
	File   string `mapstructure:"file"`
	Lines  int    `mapstructure:"lines"`
	Window int    `mapstructure:"window"`
}

// PresenceSettings locate the optional presence file.
type PresenceSettings struct {
	File string `mapstructure:"file"`
}

// BufferSettings size the node buffers.
type BufferSettings struct {
	Capacity int `mapstructure:"capacity"`
	Jitter   int `mapstructure:"jitter"`
}

// TrafficSettings describe the generated messages.
type TrafficSettings struct {
	Load      int     `mapstructure:"load"`
	Type      string  `mapstructure:"type"`
	File      string  `mapstructure:"file"`
	Warmup    float64 `mapstructure:"warmup"`
	Cooldown  float64 `mapstructure:"cooldown"`
	BurstTime float64 `mapstructure:"burst_time"`
}

// PacketSettings size the packets.
type PacketSettings struct {
	Size        int `mapstructure:"size"`
	ControlSize int `mapstructure:"control_size"`
}

// LinkSettings describe the radio links.
type LinkSettings struct {
	Bandwidth float64 `mapstructure:"bandwidth"`
}

// OutputSettings locate the results database.
type OutputSettings struct {
	DB string `mapstructure:"db"`
}

// LogSettings configure logrus.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MonitorSettings configure the HTTP monitor. Port 0 disables it.
type MonitorSettings struct {
	Port int `mapstructure:"port"`
}

// Settings are all the parameters of a simulation.
type Settings struct {
	Nodes      int               `mapstructure:"nodes"`
	Trace      TraceSettings     `mapstructure:"trace"`
	Presence   PresenceSettings  `mapstructure:"presence"`
	Routing    string            `mapstructure:"routing"`
	Congestion string            `mapstructure:"congestion"`
	Scheduling string            `mapstructure:"scheduling"`
	Deletion   string            `mapstructure:"deletion"`
	DropPolicy string            `mapstructure:"drop_policy"`
	Buffer     BufferSettings    `mapstructure:"buffer"`
	TTL        float64           `mapstructure:"ttl"`
	Replicas   int               `mapstructure:"replicas"`
	Traffic    TrafficSettings   `mapstructure:"traffic"`
	Packet     PacketSettings    `mapstructure:"packet"`
	Link       LinkSettings      `mapstructure:"link"`
	Seed       uint64            `mapstructure:"seed"`
	Profile    map[string]string `mapstructure:"profile"`
	Output     OutputSettings    `mapstructure:"output"`
	Log        LogSettings       `mapstructure:"log"`
	Monitor    MonitorSettings   `mapstructure:"monitor"`
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("nodes", 0)
	v.SetDefault("trace.file", "")
	v.SetDefault("trace.lines", 0)
	v.SetDefault("trace.window", 0)
	v.SetDefault("presence.file", "")
	v.SetDefault("routing", "epidemic")
	v.SetDefault("congestion", "none")
	v.SetDefault("scheduling", "fifo")
	v.SetDefault("deletion", "justttl")
	v.SetDefault("drop_policy", "droptail")
	v.SetDefault("buffer.capacity", buffer.Infinite)
	v.SetDefault("buffer.jitter", 0)
	v.SetDefault("ttl", 0.0)
	v.SetDefault("replicas", 1)
	v.SetDefault("traffic.load", 0)
	v.SetDefault("traffic.type", "uniform")
	v.SetDefault("traffic.file", "")
	v.SetDefault("traffic.warmup", 0.0)
	v.SetDefault("traffic.cooldown", 0.0)
	v.SetDefault("traffic.burst_time", 0.0)
	v.SetDefault("packet.size", 1000)
	v.SetDefault("packet.control_size", 10)
	v.SetDefault("link.bandwidth", 0.0)
	v.SetDefault("seed", 0)
	v.SetDefault("profile", map[string]string{})
	v.SetDefault("output.db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("monitor.port", 0)
}

// NewViper creates a viper instance with the defaults and the environment
// bound. If file is not empty it is read as well.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		return v, nil
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", file, err)
	}

	return v, nil
}

// Load decodes and validates the settings.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decoding settings: %w", err)
	}

	if s.Profile == nil {
		s.Profile = map[string]string{}
	}

	if err := s.Validate(); err != nil {
		return s, err
	}

	return s, nil
}

type noOracle struct{}

func (noOracle) IsDelivered(packet.ID) bool { return false }

func invalid(key string, format string, args ...any) error {
	return fmt.Errorf("%s: %s", key, fmt.Sprintf(format, args...))
}

func wrap(key string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", key, err)
}

// Validate checks every key and returns all the problems found.
func (s Settings) Validate() error {
	var errs []error

	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if s.Nodes < 2 {
		check(invalid("nodes", "need at least 2 nodes, got %d", s.Nodes))
	}

	if s.Trace.File == "" {
		check(invalid("trace.file", "required"))
	}

	if s.Trace.Lines < 0 {
		check(invalid("trace.lines", "negative value %d", s.Trace.Lines))
	}

	if s.Trace.Window < 0 {
		check(invalid("trace.window", "negative value %d", s.Trace.Window))
	}

	check(wrap("routing", routing.ValidateConfig(s.RoutingConfig())))

	_, err := congestion.New(s.Congestion)
	check(wrap("congestion", err))

	_, err = scheduling.New(s.Scheduling, rng.New("validate", 1))
	check(wrap("scheduling", err))

	_, err = deletion.New(s.Deletion, s.TTL, noOracle{})
	check(wrap("deletion", err))

	_, err = buffer.NewDropPolicy(s.DropPolicy)
	check(wrap("drop_policy", err))

	if s.Buffer.Capacity < 0 {
		check(invalid("buffer.capacity", "negative value %d", s.Buffer.Capacity))
	}

	if s.Buffer.Jitter < 0 {
		check(invalid("buffer.jitter", "negative value %d", s.Buffer.Jitter))
	}

	if s.TTL < 0 {
		check(invalid("ttl", "negative value %v", s.TTL))
	}

	if s.Replicas < 1 {
		check(invalid("replicas", "need at least 1, got %d", s.Replicas))
	}

	check(s.validateTraffic())

	if s.Packet.Size <= 0 {
		check(invalid("packet.size", "must be positive, got %d", s.Packet.Size))
	}

	if s.Packet.ControlSize <= 0 {
		check(invalid("packet.control_size", "must be positive, got %d",
			s.Packet.ControlSize))
	}

	if s.Link.Bandwidth < 0 {
		check(invalid("link.bandwidth", "negative value %v", s.Link.Bandwidth))
	}

	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		check(wrap("log.level", err))
	}

	if s.Log.Format != "text" && s.Log.Format != "json" {
		check(invalid("log.format", "unknown format %q", s.Log.Format))
	}

	if s.Monitor.Port < 0 || s.Monitor.Port > 65535 {
		check(invalid("monitor.port", "out of range %d", s.Monitor.Port))
	}

	return errors.Join(errs...)
}

func (s Settings) validateTraffic() error {
	t := s.Traffic

	switch {
	case t.Load < 0:
		return invalid("traffic.load", "negative value %d", t.Load)
	case t.Warmup < 0:
		return invalid("traffic.warmup", "negative value %v", t.Warmup)
	case t.Cooldown < 0:
		return invalid("traffic.cooldown", "negative value %v", t.Cooldown)
	case t.BurstTime < 0:
		return invalid("traffic.burst_time", "negative value %v", t.BurstTime)
	}

	switch t.Type {
	case "uniform", "burst", "sample":
		return nil
	case "predefined":
		if t.File == "" {
			return invalid("traffic.file", "required by predefined traffic")
		}

		return nil
	default:
		return invalid("traffic.type", "unknown type %q", t.Type)
	}
}

// RoutingConfig returns the routing selection.
func (s Settings) RoutingConfig() routing.Config {
	return routing.Config{Name: s.Routing, Profile: s.Profile}
}

// ConfigureLogging applies the log settings to the standard logrus logger.
func (s Settings) ConfigureLogging() error {
	level, err := log.ParseLevel(s.Log.Level)
	if err != nil {
		return wrap("log.level", err)
	}

	log.SetLevel(level)

	if s.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}
