package congestion

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"
)

func records(n int) []buffer.Record {
	out := make([]buffer.Record, n)
	for i := range out {
		out[i] = buffer.Record{ID: packet.ID(i)}
	}

	return out
}

var _ = Describe("Factory", func() {
	It("should create the known schemes", func() {
		for _, name := range []string{"none", "bufferaware", "aimd"} {
			c, err := New(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name()).To(Equal(name))
		}
	})

	It("should default to none", func() {
		c, err := New("")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.NeedsPeerBufferInfo()).To(BeFalse())
	})

	It("should reject unknown names", func() {
		_, err := New("tcp-reno")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("BufferAware", func() {
	c := BufferAware{}

	It("should truncate to the peer free space", func() {
		Expect(c.Filter(records(5), 2)).To(HaveLen(2))
		Expect(c.Filter(records(5), 0)).To(BeEmpty())
	})

	It("should not limit peers without capacity", func() {
		Expect(c.Filter(records(5), -1)).To(HaveLen(5))
	})
})

var _ = Describe("AIMD", func() {
	var c *AIMD

	BeforeEach(func() {
		c = NewAIMD()
	})

	It("should grow additively", func() {
		c.ObserveSuccess()
		c.ObserveSuccess()

		Expect(c.Window()).To(Equal(3))
		Expect(c.Filter(records(10), -1)).To(HaveLen(3))
	})

	It("should shrink multiplicatively", func() {
		for i := 0; i < 7; i++ {
			c.ObserveSuccess()
		}

		c.ObserveDrop()
		Expect(c.Window()).To(Equal(4))

		c.ObserveDrop()
		c.ObserveDrop()
		c.ObserveDrop()
		Expect(c.Window()).To(Equal(1))
	})

	It("should respect the peer free space", func() {
		for i := 0; i < 7; i++ {
			c.ObserveSuccess()
		}

		Expect(c.Filter(records(10), 2)).To(HaveLen(2))
	})

	It("should throttle the advertised space", func() {
		buf := buffer.New(0, 10)
		Expect(c.Advertise(buf)).To(Equal(1))

		c.ObserveSuccess()
		Expect(c.Advertise(buf)).To(Equal(2))

		Expect(c.Advertise(buffer.New(0, buffer.Infinite))).To(Equal(2))
	})
})
