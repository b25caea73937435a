package results

import (
	"strconv"

	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
	"gonum.org/v1/gonum/stat"
)

// SummaryRow is the across-subject distribution of one metric at one node.
// SD is the sample standard deviation and is NaN for a single subject.
type SummaryRow struct {
	Node   Node
	Metric Metric
	N      int
	Mean   float64
	SD     float64
}

// Summarize groups regional rows by node, in first-seen order, and computes
// mean and standard deviation of every metric.
func Summarize(rows []RegionalRow) []SummaryRow {
	var order []Node
	samples := make(map[string][][]float64)

	for _, r := range rows {
		per, ok := samples[r.Node.Name]
		if !ok {
			order = append(order, r.Node)
			per = make([][]float64, len(RegionalMetrics))
		}
		for m, v := range r.Values {
			per[m] = append(per[m], v)
		}
		samples[r.Node.Name] = per
	}

	out := make([]SummaryRow, 0, len(order)*len(RegionalMetrics))
	for _, node := range order {
		for m, metric := range RegionalMetrics {
			xs := samples[node.Name][m]
			mean, sd := stat.MeanStdDev(xs, nil)
			out = append(out, SummaryRow{Node: node, Metric: metric, N: len(xs), Mean: mean, SD: sd})
		}
	}

	return out
}

// WriteSummary saves the summary as CSV.
func WriteSummary(path string, rows []SummaryRow) error {
	header := []string{"Node Name", "Group", "Metric", "N", "Mean", "SD"}
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Node.Name,
			r.Node.Group,
			r.Metric.Column,
			strconv.Itoa(r.N),
			gtio.FormatFloat(r.Mean),
			gtio.FormatFloat(r.SD),
		}
	}
	return gtio.WriteTable(path, header, records)
}
