package monitoring

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarchlab/dtnsim/timing"
)

// Metrics exports the progress of the simulations to Prometheus.
type Metrics struct {
	gatherer prometheus.Gatherer

	Events  *prometheus.CounterVec
	SimTime *prometheus.GaugeVec
	Feeds   *prometheus.CounterVec
}

// NewMetrics registers the simulation metrics. A nil registerer uses the
// default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtnsim_events_total",
			Help: "Number of handled events, by simulation and event kind.",
		}, []string{"sim", "kind"}))
	if err != nil {
		return nil, err
	}

	feeds, err := registerCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtnsim_trace_feeds_total",
			Help: "Number of trace windows loaded, by simulation.",
		}, []string{"sim"}))
	if err != nil {
		return nil, err
	}

	simTime := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dtnsim_sim_time_seconds",
		Help: "Current simulated time, by simulation.",
	}, []string{"sim"})
	if err := reg.Register(simTime); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}

		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return nil, fmt.Errorf(
				"collector dtnsim_sim_time_seconds already registered with incompatible type")
		}

		simTime = existing
	}

	return &Metrics{
		gatherer: gatherer,
		Events:   events,
		SimTime:  simTime,
		Feeds:    feeds,
	}, nil
}

func registerCounterVec(
	reg prometheus.Registerer,
	vec *prometheus.CounterVec,
) (*prometheus.CounterVec, error) {
	err := reg.Register(vec)
	if err == nil {
		return vec, nil
	}

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return nil, err
	}

	existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
	if !ok {
		return nil, fmt.Errorf("counter already registered with incompatible type")
	}

	return existing, nil
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Hook returns an engine hook that counts the events of one simulation.
func (m *Metrics) Hook(simID string) timing.Hook {
	return &metricsHook{metrics: m, sim: simID}
}

type metricsHook struct {
	metrics *Metrics
	sim     string
}

// Func updates the counters.
func (h *metricsHook) Func(ctx timing.HookCtx) {
	switch ctx.Pos {
	case timing.HookPosAfterEvent:
		evt, ok := ctx.Item.(timing.Event)
		if !ok {
			return
		}

		h.metrics.Events.WithLabelValues(h.sim, eventKind(evt)).Inc()
		h.metrics.SimTime.WithLabelValues(h.sim).Set(evt.Time())
	case timing.HookPosFeed:
		h.metrics.Feeds.WithLabelValues(h.sim).Inc()
	}
}

func eventKind(evt timing.Event) string {
	t := reflect.TypeOf(evt)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return strings.ToLower(t.Name())
}
