package timing

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type recordingHandler struct {
	handled []labeledEvent
	onEvent func(e labeledEvent)
}

func (h *recordingHandler) Handle(e Event) error {
	evt := e.(labeledEvent)
	h.handled = append(h.handled, evt)

	if h.onEvent != nil {
		h.onEvent(evt)
	}

	return nil
}

func (h *recordingHandler) labels() []int {
	labels := make([]int, 0, len(h.handled))
	for _, e := range h.handled {
		labels = append(labels, e.label)
	}

	return labels
}

type sliceFeeder struct {
	engine  Engine
	pending []labeledEvent
	batch   int
	feeds   int
}

func (f *sliceFeeder) NextTime() (VTimeInSec, bool) {
	if len(f.pending) == 0 {
		return 0, false
	}

	return f.pending[0].Time(), true
}

func (f *sliceFeeder) Feed() error {
	n := f.batch
	if n > len(f.pending) {
		n = len(f.pending)
	}

	for _, e := range f.pending[:n] {
		f.engine.Schedule(e)
	}

	f.pending = f.pending[n:]
	f.feeds++

	return nil
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)
		evt4 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(4.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler1).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt2.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler2).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt3.EXPECT().Time().Return(VTimeInSec(3.0)).AnyTimes()
		evt3.EXPECT().Handler().Return(handler1).AnyTimes()
		evt3.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt4.EXPECT().Time().Return(VTimeInSec(5.0)).AnyTimes()
		evt4.EXPECT().Handler().Return(handler1).AnyTimes()
		evt4.EXPECT().IsSecondary().Return(false).AnyTimes()
		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().
			Handle(evt3).Do(func(e Event) {}).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().
			Handle(evt1).Do(func(e Event) {}).After(handleEvt3)
		handler1.EXPECT().
			Handle(evt4).Do(func(e Event) {}).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Now()).To(Equal(VTimeInSec(5.0)))
		Expect(engine.NumHandled()).To(Equal(uint64(4)))
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler1).AnyTimes()
		evt1.EXPECT().IsSecondary().Return(true).AnyTimes()
		evt2.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler2).AnyTimes()
		evt2.EXPECT().IsSecondary().Return(false).AnyTimes()
		evt3.EXPECT().Time().Return(VTimeInSec(2.0)).AnyTimes()
		evt3.EXPECT().Handler().Return(handler3).AnyTimes()
		evt3.EXPECT().IsSecondary().Return(false).AnyTimes()

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3)
		handler1.EXPECT().
			Handle(evt1).Do(func(e Event) {}).
			After(handleEvt2).
			After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling into the past", func() {
		handler := &recordingHandler{}
		handler.onEvent = func(e labeledEvent) {
			engine.Schedule(newLabeledEvent(1, 99))
		}
		engine.Schedule(labeledEvent{
			EventBase: NewEventBase(5, handler),
			label:     1,
		})

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should stop at handler errors", func() {
		handler := NewMockHandler(mockCtrl)
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(VTimeInSec(1.0)).AnyTimes()
		evt.EXPECT().Handler().Return(handler).AnyTimes()
		evt.EXPECT().IsSecondary().Return(false).AnyTimes()
		handler.EXPECT().Handle(evt).Return(errors.New("broken"))

		engine.Schedule(evt)

		err := engine.Run()
		Expect(err).To(MatchError(ContainSubstring("broken")))
	})

	Context("with a feeder", func() {
		var handler *recordingHandler

		BeforeEach(func() {
			handler = &recordingHandler{}
		})

		mk := func(t VTimeInSec, label int) labeledEvent {
			return labeledEvent{
				EventBase: NewEventBase(t, handler),
				label:     label,
			}
		}

		It("should feed before events at or after the feeder's next time", func() {
			feeder := &sliceFeeder{
				engine: engine,
				batch:  1,
				pending: []labeledEvent{
					mk(1, 10), mk(3, 11), mk(3, 12), mk(8, 13),
				},
			}
			engine.RegisterFeeder(feeder)
			engine.Schedule(mk(3, 1))
			engine.Schedule(mk(5, 2))

			Expect(engine.Run()).To(Succeed())
			Expect(handler.labels()).To(Equal([]int{10, 1, 11, 12, 2, 13}))
			Expect(feeder.feeds).To(Equal(4))
		})

		It("should order lazily fed events like eagerly scheduled ones", func() {
			events := func() []labeledEvent {
				return []labeledEvent{
					mk(0, 1), mk(2, 2), mk(2, 3), mk(4, 4), mk(7, 5), mk(7, 6),
				}
			}

			secondary := func(t VTimeInSec, label int) labeledEvent {
				return labeledEvent{
					EventBase: NewSecondaryEventBase(t, handler),
					label:     label,
				}
			}
			handler.onEvent = func(e labeledEvent) {
				if e.label < 10 {
					engine.Schedule(secondary(e.Time()+2, e.label+100))
				}
			}

			for _, e := range events() {
				engine.Schedule(e)
			}
			Expect(engine.Run()).To(Succeed())
			eager := handler.labels()

			engine = NewSerialEngine()
			handler.handled = nil
			engine.RegisterFeeder(&sliceFeeder{
				engine:  engine,
				batch:   2,
				pending: events(),
			})
			Expect(engine.Run()).To(Succeed())

			Expect(handler.labels()).To(Equal(eager))
		})

		It("should return feeder errors", func() {
			feeder := NewMockFeeder(mockCtrl)
			feeder.EXPECT().NextTime().Return(VTimeInSec(0), true)
			feeder.EXPECT().Feed().Return(errors.New("disk gone"))
			engine.RegisterFeeder(feeder)

			Expect(engine.Run()).To(MatchError("disk gone"))
		})
	})
})
