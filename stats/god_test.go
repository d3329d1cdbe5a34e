package stats

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
)

var _ = Describe("God", func() {
	var god *God

	BeforeEach(func() {
		god = NewGod()
		god.RegisterMessage(0, 0, 2, 5)
		god.RegisterMessage(1, 1, 0, 7)
	})

	It("should only count the first delivery", func() {
		Expect(god.IsDelivered(0)).To(BeFalse())

		Expect(god.Delivered(0, 50, 2)).To(BeTrue())
		Expect(god.Delivered(0, 60, 3)).To(BeFalse())

		m, ok := god.Message(0)
		Expect(ok).To(BeTrue())
		Expect(m.Hops).To(Equal(2))
		Expect(m.Delay()).To(Equal(45.0))
		Expect(god.NumDelivered()).To(Equal(1))
	})

	It("should refuse unknown and repeated messages", func() {
		Expect(func() { god.Delivered(9, 1, 1) }).To(Panic())
		Expect(func() { god.RegisterMessage(1, 0, 1, 0) }).To(Panic())
		Expect(god.IsDelivered(9)).To(BeFalse())
	})

	It("should count buffered copies through buffer hooks", func() {
		b0 := buffer.New(0, buffer.Infinite)
		b1 := buffer.New(1, buffer.Infinite)
		b0.AcceptHook(god)
		b1.AcceptHook(god)

		b0.Add(buffer.Record{ID: 0, Destination: 2})
		b1.Add(buffer.Record{ID: 0, Destination: 2})
		b1.Add(buffer.Record{ID: 1, Destination: 0})
		b0.Remove(0)

		m, _ := god.Message(0)
		Expect(m.Copies).To(Equal(1))
		Expect(m.MaxCopies).To(Equal(2))
		Expect(god.Holders()).To(Equal([]packet.ID{0, 1}))
	})

	It("should list messages in generation order", func() {
		god.RegisterMessage(5, 2, 1, 8)

		ids := []packet.ID{}
		for _, m := range god.Messages() {
			ids = append(ids, m.ID)
		}

		Expect(ids).To(Equal([]packet.ID{0, 1, 5}))
	})
})
