package deletion

import (
	"github.com/sarchlab/dtnsim/buffer"
	"github.com/sarchlab/dtnsim/packet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fixedOracle map[packet.ID]bool

func (o fixedOracle) IsDelivered(id packet.ID) bool { return o[id] }

func fill(buf *buffer.Buffer, ids ...packet.ID) {
	for _, id := range ids {
		buf.Add(buffer.Record{ID: id, Destination: 9, Created: float64(id)})
	}
}

var _ = Describe("Mechanisms", func() {
	var buf *buffer.Buffer

	BeforeEach(func() {
		buf = buffer.New(0, buffer.Infinite)
	})

	It("should create mechanisms by name", func() {
		for _, name := range []string{"", "justttl", "vaccine", "noduplicates"} {
			m, err := New(name, 0, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).NotTo(BeNil())
		}

		_, err := New("cataclysm", 0, nil)
		Expect(err).To(HaveOccurred())

		_, err = New("cataclysm", 0, fixedOracle{})
		Expect(err).NotTo(HaveOccurred())

		_, err = New("bogus", 0, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should gossip deliveries through every mechanism", func() {
		gossips := map[string]bool{
			"justttl":      false,
			"vaccine":      true,
			"cataclysm":    true,
			"noduplicates": true,
		}

		for name, gossip := range gossips {
			m, err := New(name, 0, fixedOracle{})
			Expect(err).NotTo(HaveOccurred())

			m.MarkDelivered(4)

			Expect(m.Name()).To(Equal(name))
			Expect(m.IsDelivered(4)).To(BeTrue())
			Expect(m.SupportsVaccine()).To(Equal(gossip))
			if gossip {
				Expect(m.DeliveredIDs()).To(Equal([]packet.ID{4}), name)
				Expect(m.Learn([]packet.ID{4, 6})).To(Equal([]packet.ID{6}), name)
			} else {
				Expect(m.DeliveredIDs()).To(BeEmpty())
			}
		}
	})

	Describe("JustTTL", func() {
		It("should only purge expired records", func() {
			m, _ := New("justttl", 10, nil)
			fill(buf, 1, 5, 20)
			m.MarkDelivered(20)

			p := m.Purge(21, buf)

			Expect(p.Expired).To(HaveLen(2))
			Expect(p.Delivered).To(BeEmpty())
			Expect(buf.IDs()).To(Equal([]packet.ID{20}))
			Expect(m.SupportsVaccine()).To(BeFalse())
			Expect(m.DeliveredIDs()).To(BeEmpty())
			Expect(m.IsDelivered(20)).To(BeTrue())
		})

		It("should never expire with ttl 0", func() {
			m, _ := New("justttl", 0, nil)
			fill(buf, 1)

			Expect(m.Purge(1e9, buf).Len()).To(Equal(0))
		})
	})

	Describe("Vaccine", func() {
		It("should gossip and purge delivered records", func() {
			m, _ := New("vaccine", 0, nil)
			fill(buf, 1, 2, 3)
			m.MarkDelivered(3)

			learned := m.Learn([]packet.ID{1, 3})

			Expect(learned).To(Equal([]packet.ID{1}))
			Expect(m.DeliveredIDs()).To(Equal([]packet.ID{1, 3}))

			p := m.Purge(0, buf)
			Expect(p.Delivered).To(HaveLen(2))
			Expect(buf.IDs()).To(Equal([]packet.ID{2}))
			Expect(m.NoDuplicates()).To(BeFalse())
		})
	})

	Describe("Cataclysm", func() {
		It("should purge records delivered anywhere", func() {
			m, _ := New("cataclysm", 0, fixedOracle{2: true})
			fill(buf, 1, 2)

			p := m.Purge(0, buf)

			Expect(p.Delivered).To(HaveLen(1))
			Expect(p.Delivered[0].ID).To(Equal(packet.ID(2)))
			Expect(m.DeliveredIDs()).To(Equal([]packet.ID{2}))
			Expect(m.SupportsVaccine()).To(BeTrue())
		})
	})

	Describe("NoDuplicates", func() {
		It("should forbid duplicates and gossip", func() {
			m, _ := New("noduplicates", 0, nil)

			Expect(m.NoDuplicates()).To(BeTrue())
			Expect(m.SupportsVaccine()).To(BeTrue())
			Expect(m.Name()).To(Equal("noduplicates"))
		})
	})
})
