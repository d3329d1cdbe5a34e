package stats

import (
	"github.com/sarchlab/dtnsim/datarecording"
)

type deliveryEntry struct {
	Message     int64
	Source      int
	Destination int
	Created     float64
	Delivered   bool
	DeliveredAt float64
	Delay       float64
	Hops        int
	MaxCopies   int
}

type nodeEntry struct {
	Node              int
	Generated         uint64
	DataSent          uint64
	ControlSent       uint64
	Forwards          uint64
	ControlReceived   uint64
	Duplicates        uint64
	Drops             uint64
	Expired           uint64
	Purged            uint64
	Delivered         uint64
	VaccineRejections uint64
	MaxOccupancy      int
	FinalOccupancy    int
}

// WriteReport writes the summary, the message ledger and the node counters into
// the summary, deliveries and nodes tables.
func WriteReport(
	rec datarecording.DataRecorder,
	sum Summary,
	god *God,
	s *Statistics,
) {
	rec.CreateTable("summary", Summary{})
	rec.CreateTable("deliveries", deliveryEntry{})
	rec.CreateTable("nodes", nodeEntry{})

	rec.InsertData("summary", sum)

	for _, m := range god.Messages() {
		e := deliveryEntry{
			Message:     int64(m.ID),
			Source:      int(m.Source),
			Destination: int(m.Destination),
			Created:     m.Created,
			Delivered:   m.Delivered,
			MaxCopies:   m.MaxCopies,
		}

		if m.Delivered {
			e.DeliveredAt = m.DeliveredAt
			e.Delay = m.Delay()
			e.Hops = m.Hops
		}

		rec.InsertData("deliveries", e)
	}

	for i, c := range s.nodes {
		rec.InsertData("nodes", nodeEntry{
			Node:              i,
			Generated:         c.Generated,
			DataSent:          c.DataSent,
			ControlSent:       c.ControlSent,
			Forwards:          c.Forwards,
			ControlReceived:   c.ControlReceived,
			Duplicates:        c.Duplicates,
			Drops:             c.Drops,
			Expired:           c.Expired,
			Purged:            c.Purged,
			Delivered:         c.Delivered,
			VaccineRejections: c.VaccineRejections,
			MaxOccupancy:      c.MaxOccupancy,
			FinalOccupancy:    c.FinalOccupancy,
		})
	}

	rec.Flush()
}
