// Package atlas aligns nodes of two brain parcellations and reduces
// connectivity matrices from one to the other.
package atlas

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMissingColumn is returned when a label table lacks a configured column.
var ErrMissingColumn = errors.New("missing column")

// LabelSource describes where a NodeLabelSet comes from.
//
// With HemisphereColumn set, the node name is built SENSAAS style:
// the name column, an underscore, and the first character of the
// hemisphere column ("Left" -> "_L").
type LabelSource struct {
	Path             string `yaml:"path"`
	Delimiter        string `yaml:"delimiter"`
	NameColumn       string `yaml:"name_column"`
	HemisphereColumn string `yaml:"hemisphere_column,omitempty"`
	IndexColumn      string `yaml:"index_column,omitempty"`
}

// Names is an ordered NodeLabelSet. Duplicates are allowed. An empty entry
// holds the place of a row without a usable name and never matches.
type Names []string

// table is a label file split into header and records.
type table struct {
	header  map[string]int
	records [][]string
}

func (t *table) column(name string) (int, error) {
	idx, ok := t.header[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return idx, nil
}

func readTable(src LabelSource) (*table, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("label file not found: %s: %w", src.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter(src.Delimiter)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parsing %s: empty label file", src.Path)
	}

	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimPrefix(h, "\ufeff")
		header[strings.TrimSpace(h)] = i
	}

	return &table{header: header, records: records[1:]}, nil
}

func delimiter(s string) rune {
	switch s {
	case "", ",":
		return ','
	case "\\t", "tab", "\t":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// nodeName returns "" when the row has no usable name.
func nodeName(rec []string, nameIdx, hemiIdx int) string {
	name := field(rec, nameIdx)
	if name == "" {
		return ""
	}
	if hemiIdx < 0 {
		return name
	}

	hemi := field(rec, hemiIdx)
	if hemi == "" {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(hemi)
	return name + "_" + string(first)
}

// LoadNames reads the node names of one atlas in file order, one entry per
// row, so that position i is row/column i of the atlas matrices.
func LoadNames(src LabelSource) (Names, error) {
	t, err := readTable(src)
	if err != nil {
		return nil, err
	}

	nameIdx, err := t.column(src.NameColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	hemiIdx := -1
	if src.HemisphereColumn != "" {
		if hemiIdx, err = t.column(src.HemisphereColumn); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
	}

	names := make(Names, len(t.records))
	for i, rec := range t.records {
		names[i] = nodeName(rec, nameIdx, hemiIdx)
	}

	return names, nil
}

// IndexedName is a node name with the label value it carries in the atlas volume.
type IndexedName struct {
	Index int
	Name  string
}

// LoadIndexedNames reads node names together with their volume label values
// from src.IndexColumn.
func LoadIndexedNames(src LabelSource) ([]IndexedName, error) {
	t, err := readTable(src)
	if err != nil {
		return nil, err
	}

	nameIdx, err := t.column(src.NameColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	valIdx, err := t.column(src.IndexColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	hemiIdx := -1
	if src.HemisphereColumn != "" {
		if hemiIdx, err = t.column(src.HemisphereColumn); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
	}

	var out []IndexedName
	for line, rec := range t.records {
		n := nodeName(rec, nameIdx, hemiIdx)
		if n == "" {
			continue
		}
		raw := strings.TrimSpace(field(rec, valIdx))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad label value %q: %w", src.Path, line+2, raw, err)
		}
		out = append(out, IndexedName{Index: int(v), Name: n})
	}

	return out, nil
}
