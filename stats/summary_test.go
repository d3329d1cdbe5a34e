package stats

import (
	"bytes"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dtnsim/datarecording"
	"github.com/sarchlab/dtnsim/packet"
)

var _ = Describe("Summary", func() {
	var (
		god *God
		s   *Statistics
	)

	BeforeEach(func() {
		god = NewGod()
		s = NewStatistics(3)

		god.RegisterMessage(0, 0, 2, 0)
		god.RegisterMessage(1, 0, 1, 10)
		god.RegisterMessage(2, 1, 2, 10)
		god.RegisterMessage(3, 2, 0, 10)

		god.Delivered(0, 10, 2)
		god.Delivered(1, 30, 1)
		god.Delivered(2, 40, 3)

		for i := 0; i < 4; i++ {
			s.Sent(0, packet.TypeData)
			s.Sent(1, packet.TypeData)
		}
		s.Sent(2, packet.TypeSummaryVector)

		for i := 0; i < 6; i++ {
			s.Forwarded(packet.NodeID(i % 3))
		}

		s.TransmissionLost()
	})

	It("should aggregate the ledger", func() {
		sum := Summarize(god, s, 100)

		Expect(sum.Nodes).To(Equal(3))
		Expect(sum.Generated).To(Equal(4))
		Expect(sum.Delivered).To(Equal(3))
		Expect(sum.DeliveryRatio).To(Equal(0.75))
		Expect(sum.AvgDelay).To(BeNumerically("~", 20, 1e-9))
		Expect(sum.MedianDelay).To(Equal(20.0))
		Expect(sum.AvgHops).To(BeNumerically("~", 2, 1e-9))
		Expect(sum.DataTransmissions).To(Equal(uint64(8)))
		Expect(sum.ControlTransmissions).To(Equal(uint64(1)))
		Expect(sum.Overhead).To(BeNumerically("~", 1, 1e-9))
		Expect(sum.TransmissionsLost).To(Equal(uint64(1)))
	})

	It("should compute Jain's fairness over data transmissions", func() {
		sum := Summarize(god, s, 100)

		// (4+4+0)^2 / (3 * 32)
		Expect(sum.Fairness).To(BeNumerically("~", 64.0/96.0, 1e-9))
	})

	It("should handle runs without traffic", func() {
		sum := Summarize(NewGod(), NewStatistics(2), 0)

		Expect(sum.DeliveryRatio).To(Equal(0.0))
		Expect(sum.AvgDelay).To(Equal(0.0))
		Expect(sum.Fairness).To(Equal(1.0))
	})

	It("should print a table", func() {
		var buf bytes.Buffer

		Expect(Summarize(god, s, 100).Print(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("delivery ratio"))
		Expect(buf.String()).To(ContainSubstring("0.7500"))
	})

	It("should write the report tables", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)
		defer db.Close()

		rec := datarecording.NewWithDB(db)
		WriteReport(rec, Summarize(god, s, 100), god, s)

		Expect(rec.ListTables()).To(Equal(
			[]string{"summary", "deliveries", "nodes"}))

		var n int
		Expect(db.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&n)).
			To(Succeed())
		Expect(n).To(Equal(4))

		var ratio float64
		Expect(db.QueryRow("SELECT DeliveryRatio FROM summary").Scan(&ratio)).
			To(Succeed())
		Expect(ratio).To(Equal(0.75))

		Expect(db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&n)).
			To(Succeed())
		Expect(n).To(Equal(3))
	})
})
