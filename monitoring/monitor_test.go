package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sarchlab/dtnsim/config"
	"github.com/sarchlab/dtnsim/simulation"
	"go.uber.org/mock/gomock"
)

func finishedSimulation(metrics *Metrics) *simulation.Simulator {
	dir := GinkgoT().TempDir()
	tracePath := filepath.Join(dir, "trace.txt")
	Expect(os.WriteFile(tracePath, []byte("0 1 0 10\n1 2 5 20\n"), 0o600)).
		To(Succeed())

	v, err := config.NewViper("")
	Expect(err).NotTo(HaveOccurred())
	v.Set("nodes", 3)
	v.Set("trace.file", tracePath)
	v.Set("traffic.load", 4)
	v.Set("seed", 3)

	s, err := config.Load(v)
	Expect(err).NotTo(HaveOccurred())

	b := simulation.MakeBuilder().WithSettings(s)
	if metrics != nil {
		b = b.WithEngineHook(metrics.Hook("test"))
	}

	sim, err := b.Build()
	Expect(err).NotTo(HaveOccurred())
	Expect(sim.Run()).To(Succeed())

	return sim
}

func get(router http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		sim      *simulation.Simulator
		m        *Monitor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		sim = finishedSimulation(nil)

		m = NewMonitor()
		m.RegisterSimulation(sim, engine)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should list the simulations", func() {
		rsp := get(m.Router(), "/api/simulations")

		var ids []string
		Expect(json.Unmarshal(rsp.Body.Bytes(), &ids)).To(Succeed())
		Expect(ids).To(Equal([]string{sim.ID()}))
	})

	It("should tell the time", func() {
		engine.EXPECT().Now().Return(12.5)

		rsp := get(m.Router(), "/api/now")

		var now []nowRsp
		Expect(json.Unmarshal(rsp.Body.Bytes(), &now)).To(Succeed())
		Expect(now).To(Equal([]nowRsp{{Sim: sim.ID(), Now: 12.5}}))
	})

	It("should pause and continue once", func() {
		engine.EXPECT().Pause().Times(1)
		engine.EXPECT().Continue().Times(1)

		Expect(get(m.Router(), "/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get(m.Router(), "/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get(m.Router(), "/api/continue").Code).To(Equal(http.StatusOK))
		Expect(get(m.Router(), "/api/continue").Code).To(Equal(http.StatusOK))
	})

	It("should report progress", func() {
		bar := m.CreateProgressBar("runs", 2)
		bar.Start()
		bar.Finish(nil)
		bar.Start()
		bar.Finish(errors.New("failed"))

		rsp := get(m.Router(), "/api/progress")

		var p progressRsp
		Expect(json.Unmarshal(rsp.Body.Bytes(), &p)).To(Succeed())
		Expect(p.Bars).To(HaveLen(1))
		Expect(p.Bars[0].Finished).To(Equal(uint64(1)))
		Expect(p.Bars[0].Failed).To(Equal(uint64(1)))
		Expect(p.Bars[0].InProgress).To(BeZero())

		Expect(p.Simulations).To(HaveLen(1))
		Expect(p.Simulations[0].Phase).To(Equal("done"))
		Expect(p.Simulations[0].Percent).To(BeNumerically("~", 100, 1e-9))
		Expect(p.Simulations[0].Contacts).To(Equal(2))
		Expect(p.Simulations[0].Messages).To(Equal(4))

		m.CompleteProgressBar(bar)
		rsp = get(m.Router(), "/api/progress")
		Expect(json.Unmarshal(rsp.Body.Bytes(), &p)).To(Succeed())
		Expect(p.Bars).To(BeEmpty())
	})

	It("should serialize a node between two events", func() {
		engine.EXPECT().Pause()
		engine.EXPECT().Continue()

		rsp := get(m.Router(), "/api/node/"+sim.ID()+"/1")

		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(ContainSubstring("epidemic"))
	})

	It("should not resume a paused engine after reading a node", func() {
		engine.EXPECT().Pause().Times(1)

		get(m.Router(), "/api/pause")
		rsp := get(m.Router(), "/api/node/"+sim.ID()+"/0")

		Expect(rsp.Code).To(Equal(http.StatusOK))
	})

	It("should reject unknown nodes", func() {
		engine.EXPECT().Pause()
		engine.EXPECT().Continue()

		Expect(get(m.Router(), "/api/node/"+sim.ID()+"/7").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(m.Router(), "/api/node/nosuchsim/0").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should serve the page", func() {
		rsp := get(m.Router(), "/")

		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should reject an invalid profile duration", func() {
		Expect(get(m.Router(), "/api/profile?ms=abc").Code).
			To(Equal(http.StatusBadRequest))
	})
})

var _ = Describe("Metrics", func() {
	It("should count the events of a simulation", func() {
		reg := prometheus.NewRegistry()
		metrics, err := NewMetrics(reg)
		Expect(err).NotTo(HaveOccurred())

		sim := finishedSimulation(metrics)

		Expect(testutil.ToFloat64(
			metrics.Events.WithLabelValues("test", "contactup"))).
			To(BeNumerically("==", 4))
		Expect(testutil.ToFloat64(
			metrics.Events.WithLabelValues("test", "contactdown"))).
			To(BeNumerically("==", 4))
		Expect(testutil.ToFloat64(metrics.SimTime.WithLabelValues("test"))).
			To(BeNumerically("==", sim.Engine().Now()))

		m := NewMonitor().WithMetrics(metrics)
		rsp := get(m.Router(), "/metrics")
		Expect(rsp.Body.String()).To(ContainSubstring("dtnsim_events_total"))
	})

	It("should reuse collectors already registered", func() {
		reg := prometheus.NewRegistry()

		first, err := NewMetrics(reg)
		Expect(err).NotTo(HaveOccurred())

		second, err := NewMetrics(reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Events).To(BeIdenticalTo(first.Events))
		Expect(second.SimTime).To(BeIdenticalTo(first.SimTime))
	})
})
