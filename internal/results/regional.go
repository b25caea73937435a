package results

import (
	"log/slog"

	"github.com/KyungWonPark/GraphTheory/internal/config"
	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
)

// Metric is a per-node measure: its document key and its column title.
type Metric struct {
	Key    string
	Column string
}

// RegionalMetrics are extracted for every node, in column order.
var RegionalMetrics = []Metric{
	{Key: "nodal_strength", Column: "Nodal Strength"},
	{Key: "path_length", Column: "Path Length"},
	{Key: "local_efficiency", Column: "Local Efficiency"},
	{Key: "clustering", Column: "Clustering"},
}

// RegionalRow is one (subject, node) pair. Values follow RegionalMetrics.
type RegionalRow struct {
	SubjectID string
	Node      Node
	Values    []float64
}

// Nodal reads every regional metric of one document, checked against the
// schema length.
func (s Schema) Nodal(doc Document) ([][]float64, error) {
	arrays := make([][]float64, len(RegionalMetrics))
	for m, metric := range RegionalMetrics {
		values, err := doc.Nodal(metric.Key)
		if err != nil {
			return nil, err
		}
		if err := s.Check(metric.Key, values); err != nil {
			return nil, err
		}
		arrays[m] = values
	}
	return arrays, nil
}

// ExtractRegional emits one row per subject and schema node. A document whose
// arrays do not match the schema is logged and left out whole.
func ExtractRegional(cfg config.Results, schema Schema, log *slog.Logger) ([]RegionalRow, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	for _, n := range schema.Unmapped() {
		log.Warn("node has no anatomical group", "node", n.Name, "stem", Stem(n.Name), "group", Unknown)
	}

	files, err := Discover(cfg.Dir, cfg.Prefix, cfg.Suffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warn("no result documents found", "dir", cfg.Dir, "pattern", cfg.Prefix+"*"+cfg.Suffix)
	}

	rows := make([]RegionalRow, 0, len(files)*len(schema))
	for _, file := range files {
		doc, err := ReadDocument(file)
		if err != nil {
			log.Error("skipping document", "file", file, "err", err)
			continue
		}

		arrays, err := schema.Nodal(doc)
		if err != nil {
			log.Error("skipping document", "file", file, "err", err)
			continue
		}

		subj := SubjectFromResult(file, cfg.Prefix, cfg.Suffix)
		for i, node := range schema {
			values := make([]float64, len(arrays))
			for m := range arrays {
				values[m] = arrays[m][i]
			}
			rows = append(rows, RegionalRow{SubjectID: subj, Node: node, Values: values})
		}
	}

	return rows, nil
}

// RegionalTable renders rows as a header and string records.
func RegionalTable(rows []RegionalRow) ([]string, [][]string) {
	header := []string{"Subject ID", "Node Name"}
	for _, m := range RegionalMetrics {
		header = append(header, m.Column)
	}
	header = append(header, "Group")

	records := make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, r.SubjectID, r.Node.Name)
		for _, v := range r.Values {
			rec = append(rec, gtio.FormatFloat(v))
		}
		records[i] = append(rec, r.Node.Group)
	}
	return header, records
}

// WriteRegional saves rows as CSV.
func WriteRegional(path string, rows []RegionalRow) error {
	header, records := RegionalTable(rows)
	return gtio.WriteTable(path, header, records)
}
