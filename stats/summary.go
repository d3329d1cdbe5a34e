package stats

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the outcome of a simulation.
type Summary struct {
	Nodes                int
	End                  float64
	Generated            int
	Delivered            int
	DeliveryRatio        float64
	AvgDelay             float64
	DelayStdDev          float64
	MedianDelay          float64
	AvgHops              float64
	DataTransmissions    uint64
	ControlTransmissions uint64
	Forwards             uint64
	Overhead             float64
	Duplicates           uint64
	Drops                uint64
	Expired              uint64
	Purged               uint64
	TransmissionsLost    uint64
	AvgMaxCopies         float64
	Fairness             float64
}

// Summarize computes the summary of a finished simulation.
func Summarize(god *God, s *Statistics, end float64) Summary {
	totals := s.Totals()
	sum := Summary{
		Nodes:                s.NumNodes(),
		End:                  end,
		Generated:            god.NumMessages(),
		DataTransmissions:    totals.DataSent,
		ControlTransmissions: totals.ControlSent,
		Forwards:             totals.Forwards,
		Duplicates:           totals.Duplicates,
		Drops:                totals.Drops,
		Expired:              totals.Expired,
		Purged:               totals.Purged,
		TransmissionsLost:    s.TransmissionsLost(),
	}

	var delays, hops, copies []float64

	for _, m := range god.Messages() {
		copies = append(copies, float64(m.MaxCopies))

		if !m.Delivered {
			continue
		}

		delays = append(delays, m.Delay())
		hops = append(hops, float64(m.Hops))
	}

	sum.Delivered = len(delays)

	if sum.Generated > 0 {
		sum.DeliveryRatio = float64(sum.Delivered) / float64(sum.Generated)
		sum.AvgMaxCopies = stat.Mean(copies, nil)
	}

	if sum.Delivered > 0 {
		sum.AvgDelay = stat.Mean(delays, nil)
		sum.AvgHops = stat.Mean(hops, nil)
		sum.Overhead = (float64(sum.Forwards) - float64(sum.Delivered)) /
			float64(sum.Delivered)

		sort.Float64s(delays)
		sum.MedianDelay = stat.Quantile(0.5, stat.Empirical, delays, nil)
	}

	if sum.Delivered > 1 {
		sum.DelayStdDev = stat.StdDev(delays, nil)
	}

	sum.Fairness = jainIndex(s)

	return sum
}

// jainIndex is Jain's fairness index of the data transmissions of the nodes.
func jainIndex(s *Statistics) float64 {
	if s.NumNodes() == 0 {
		return 1
	}

	var sum, sumSq float64

	for i := 0; i < s.NumNodes(); i++ {
		x := float64(s.nodes[i].DataSent)
		sum += x
		sumSq += x * x
	}

	if sumSq == 0 {
		return 1
	}

	return sum * sum / (float64(s.NumNodes()) * sumSq)
}

// Print writes the summary as an aligned table.
func (s Summary) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := []struct {
		name  string
		value any
	}{
		{"nodes", s.Nodes},
		{"simulated time", fmt.Sprintf("%.2f", s.End)},
		{"generated", s.Generated},
		{"delivered", s.Delivered},
		{"delivery ratio", fmt.Sprintf("%.4f", s.DeliveryRatio)},
		{"average delay", fmt.Sprintf("%.4f", s.AvgDelay)},
		{"median delay", fmt.Sprintf("%.4f", s.MedianDelay)},
		{"delay stddev", fmt.Sprintf("%.4f", s.DelayStdDev)},
		{"average hops", fmt.Sprintf("%.4f", s.AvgHops)},
		{"data transmissions", s.DataTransmissions},
		{"control transmissions", s.ControlTransmissions},
		{"forwards", s.Forwards},
		{"overhead", fmt.Sprintf("%.4f", s.Overhead)},
		{"duplicates", s.Duplicates},
		{"drops", s.Drops},
		{"expired", s.Expired},
		{"purged", s.Purged},
		{"transmissions lost", s.TransmissionsLost},
		{"average max copies", fmt.Sprintf("%.4f", s.AvgMaxCopies)},
		{"fairness", fmt.Sprintf("%.4f", s.Fairness)},
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", r.name, r.value); err != nil {
			return err
		}
	}

	return tw.Flush()
}
