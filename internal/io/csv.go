// Package io moves matrices and tables between disk and memory.
package io

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gonum/matrix/mat64"
)

// FormatFloat renders a value the way the result tables expect: shortest
// representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Mat64toCSV saves Mat64 as a csv file, one matrix row per line.
func Mat64toCSV(path string, matrix mat64.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rows, cols := matrix.Dims()
	line := make([]string, cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			line[j] = FormatFloat(matrix.At(i, j))
		}
		if _, err := fmt.Fprintf(w, "%s\n", strings.Join(line, ", ")); err != nil {
			return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteTable writes a CSV file with a header row.
func WriteTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WriteTable] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("[WriteTable] %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("[WriteTable] %s: %w", path, err)
	}

	return f.Close()
}

// ReadTable reads a CSV file whose first row is a header.
func ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadTable] failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadTable] failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("[ReadTable] %s: no header row", path)
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	return header, records[1:], nil
}
