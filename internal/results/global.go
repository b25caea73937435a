package results

import (
	"errors"
	"log/slog"

	"github.com/KyungWonPark/GraphTheory/internal/config"
	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
)

// GlobalRow is one subject's network-wide scalar.
type GlobalRow struct {
	SubjectID string
	Value     float64
}

// ExtractGlobal reads cfg.GlobalMetric from every result document in
// cfg.Dir. Documents that cannot be read are logged and left out.
func ExtractGlobal(cfg config.Results, log *slog.Logger) ([]GlobalRow, error) {
	files, err := Discover(cfg.Dir, cfg.Prefix, cfg.Suffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warn("no result documents found", "dir", cfg.Dir, "pattern", cfg.Prefix+"*"+cfg.Suffix)
	}

	rows := make([]GlobalRow, 0, len(files))
	for _, file := range files {
		doc, err := ReadDocument(file)
		if err != nil {
			log.Error("skipping document", "file", file, "err", err)
			continue
		}

		v, err := doc.Scalar(cfg.GlobalMetric)
		if err != nil {
			log.Error("skipping document", "file", file, "err", err)
			continue
		}

		rows = append(rows, GlobalRow{
			SubjectID: SubjectFromResult(file, cfg.Prefix, cfg.Suffix),
			Value:     v,
		})
	}

	return rows, nil
}

// GlobalTable renders rows as a header and string records.
func GlobalTable(column string, rows []GlobalRow) ([]string, [][]string) {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.SubjectID, gtio.FormatFloat(r.Value)}
	}
	return []string{"Subject ID", column}, records
}

// WriteGlobal saves rows as CSV with columns "Subject ID" and column.
func WriteGlobal(path, column string, rows []GlobalRow) error {
	if column == "" {
		return errors.New("global column title is empty")
	}
	header, records := GlobalTable(column, rows)
	return gtio.WriteTable(path, header, records)
}
