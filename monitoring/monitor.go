// Package monitoring serves the state of running simulations over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/monitoring/web"
	"github.com/sarchlab/dtnsim/node"
	"github.com/sarchlab/dtnsim/simulation"
	"github.com/sarchlab/dtnsim/stats"
	"github.com/sarchlab/dtnsim/timing"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

// Engine is the part of an event engine the monitor controls.
type Engine interface {
	Pause()
	Continue()
	Now() timing.VTimeInSec
}

// Simulation is a run the monitor observes.
type Simulation interface {
	ID() string
	Progress() simulation.Progress
	Nodes() []*node.Node
	Statistics() *stats.Statistics
}

type entry struct {
	sim    Simulation
	engine Engine

	lock   sync.Mutex
	paused bool
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	portNumber int
	metrics    *Metrics

	entriesLock sync.Mutex
	entries     []*entry

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		log.WithField("port", portNumber).
			Warn("monitoring port not allowed, using a random port instead")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithMetrics exposes metrics on /metrics.
func (m *Monitor) WithMetrics(metrics *Metrics) *Monitor {
	m.metrics = metrics
	return m
}

// RegisterSimulation registers a simulation and the engine that runs it.
func (m *Monitor) RegisterSimulation(s Simulation, e Engine) {
	m.entriesLock.Lock()
	defer m.entriesLock.Unlock()

	m.entries = append(m.entries, &entry{sim: s, engine: e})
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngines)
	r.HandleFunc("/api/continue", m.continueEngines)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/simulations", m.listSimulations)
	r.HandleFunc("/api/progress", m.listProgress)
	r.HandleFunc("/api/node/{sim}/{node:[0-9]+}", m.nodeDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	if m.metrics != nil {
		r.Handle("/metrics", m.metrics.Handler())
	}

	r.HandleFunc("/debug/pprof/", httppprof.Index)
	r.HandleFunc("/debug/pprof/profile", httppprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", httppprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(httppprof.Index)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("monitor stopped")
		}
	}()

	return url, nil
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() error {
	if m.server == nil {
		return nil
	}

	return m.server.Close()
}

func (m *Monitor) snapshotEntries() []*entry {
	m.entriesLock.Lock()
	defer m.entriesLock.Unlock()

	return append([]*entry(nil), m.entries...)
}

func (m *Monitor) findEntry(id string) *entry {
	for _, e := range m.snapshotEntries() {
		if e.sim.ID() == id {
			return e
		}
	}

	return nil
}

func (m *Monitor) pauseEngines(w http.ResponseWriter, _ *http.Request) {
	for _, e := range m.snapshotEntries() {
		e.lock.Lock()
		if !e.paused {
			e.engine.Pause()
			e.paused = true
		}
		e.lock.Unlock()
	}

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngines(w http.ResponseWriter, _ *http.Request) {
	for _, e := range m.snapshotEntries() {
		e.lock.Lock()
		if e.paused {
			e.engine.Continue()
			e.paused = false
		}
		e.lock.Unlock()
	}

	w.WriteHeader(http.StatusOK)
}

type nowRsp struct {
	Sim string  `json:"sim"`
	Now float64 `json:"now"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rsp := []nowRsp{}
	for _, e := range m.snapshotEntries() {
		rsp = append(rsp, nowRsp{Sim: e.sim.ID(), Now: e.engine.Now()})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listSimulations(w http.ResponseWriter, _ *http.Request) {
	ids := []string{}
	for _, e := range m.snapshotEntries() {
		ids = append(ids, e.sim.ID())
	}

	writeJSON(w, ids)
}

type simProgressRsp struct {
	Sim            string  `json:"sim"`
	Phase          string  `json:"phase"`
	Now            float64 `json:"now"`
	End            float64 `json:"end"`
	Percent        float64 `json:"percent"`
	Contacts       int     `json:"contacts"`
	ContactsLoaded int     `json:"contacts_loaded"`
	Messages       int     `json:"messages"`
	EventsHandled  uint64  `json:"events_handled"`
	Paused         bool    `json:"paused"`
}

type progressRsp struct {
	Bars        []progressBarRsp `json:"bars"`
	Simulations []simProgressRsp `json:"simulations"`
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	rsp := progressRsp{
		Bars:        []progressBarRsp{},
		Simulations: []simProgressRsp{},
	}

	m.progressBarsLock.Lock()
	for _, b := range m.progressBars {
		rsp.Bars = append(rsp.Bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	for _, e := range m.snapshotEntries() {
		p := e.sim.Progress()

		e.lock.Lock()
		paused := e.paused
		e.lock.Unlock()

		rsp.Simulations = append(rsp.Simulations, simProgressRsp{
			Sim:            e.sim.ID(),
			Phase:          p.Phase.String(),
			Now:            p.Now,
			End:            p.End,
			Percent:        percent(p),
			Contacts:       p.Contacts,
			ContactsLoaded: p.ContactsLoaded,
			Messages:       p.Messages,
			EventsHandled:  p.EventsHandled,
			Paused:         paused,
		})
	}

	writeJSON(w, rsp)
}

func percent(p simulation.Progress) float64 {
	switch {
	case p.Phase == simulation.Finished:
		return 100
	case p.End <= 0:
		return 0
	default:
		return 100 * p.Now / p.End
	}
}

type nodeStatus struct {
	ID        int
	Routing   string
	Capacity  int
	Occupancy int
	Records   []buffer.Record
	Counters  stats.NodeCounters
}

// nodeDetails serializes a node. The engine is held between two events
// while the node is read. The field query parameter selects a dotted path
// inside the node.
func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	e := m.findEntry(vars["sim"])
	if e == nil {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	id, _ := strconv.Atoi(vars["node"])

	status, ok := e.nodeStatus(id)
	if !ok {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(status)
	serializer.SetMaxDepth(3)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := serializer.Serialize(w); err != nil {
		log.WithError(err).Warn("serializing node")
	}
}

func (e *entry) nodeStatus(id int) (*nodeStatus, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if !e.paused {
		e.engine.Pause()
		defer e.engine.Continue()
	}

	nodes := e.sim.Nodes()
	if id < 0 || id >= len(nodes) {
		return nil, false
	}

	n := nodes[id]

	return &nodeStatus{
		ID:        id,
		Routing:   n.Routing().Name(),
		Capacity:  n.Buffer().Capacity(),
		Occupancy: n.Buffer().Size(),
		Records:   n.Buffer().Records(),
		Counters:  e.sim.Statistics().Node(n.ID()),
	}, true
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: memory.RSS})
}

// collectProfile samples the CPU for the number of milliseconds given by
// the ms query parameter, one second by default.
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if ms := r.URL.Query().Get("ms"); ms != "" {
		v, err := strconv.Atoi(ms)
		if err != nil || v <= 0 {
			http.Error(w, "invalid ms", http.StatusBadRequest)
			return
		}

		duration = time.Duration(v) * time.Millisecond
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(data); err != nil {
		log.WithError(err).Warn("writing response")
	}
}
