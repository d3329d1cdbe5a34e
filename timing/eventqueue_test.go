package timing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type labeledEvent struct {
	*EventBase
	label int
}

func newLabeledEvent(t VTimeInSec, label int) labeledEvent {
	return labeledEvent{EventBase: NewEventBase(t, nil), label: label}
}

var _ = Describe("EventQueueImpl", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().
				Time().
				Return(VTimeInSec(rand.Float64() / 1e8)).
				AnyTimes()
			queue.Push(event)
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() >= now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should return nil when empty", func() {
		Expect(queue.Pop()).To(BeNil())
		Expect(queue.Peek()).To(BeNil())
		Expect(queue.Len()).To(Equal(0))
	})

	It("should keep insertion order among same-time events", func() {
		r := rand.New(rand.NewSource(7))
		numEvents := 1000
		for i := 0; i < numEvents; i++ {
			t := VTimeInSec(r.Intn(10))
			queue.Push(newLabeledEvent(t, i))
		}

		lastTime := VTimeInSec(-1)
		lastLabel := -1
		for i := 0; i < numEvents; i++ {
			evt := queue.Pop().(labeledEvent)

			Expect(evt.Time()).To(BeNumerically(">=", lastTime))
			if evt.Time() == lastTime {
				Expect(evt.label).To(BeNumerically(">", lastLabel))
			}

			lastTime = evt.Time()
			lastLabel = evt.label
		}

		Expect(queue.Len()).To(Equal(0))
	})

	It("should peek without removing", func() {
		queue.Push(newLabeledEvent(2, 1))
		queue.Push(newLabeledEvent(1, 2))

		Expect(queue.Peek().(labeledEvent).label).To(Equal(2))
		Expect(queue.Len()).To(Equal(2))
	})
})
