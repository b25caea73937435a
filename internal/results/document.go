// Package results flattens per-subject network analysis documents into
// group-level tables.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
)

var (
	// ErrMissingMetric is returned when a document lacks a metric key.
	ErrMissingMetric = errors.New("missing metric")

	// ErrMetricShape is returned when a metric is not wrapped the expected way.
	ErrMetricShape = errors.New("unexpected metric shape")
)

// Document is one subject's result file, keyed by metric name. Every metric
// is a one-element list wrapping either a scalar or an array over nodes.
type Document map[string]json.RawMessage

// value decodes a JSON number, null, or one of the strings NaN, +Inf, -Inf.
type value float64

func (v *value) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*v = value(math.NaN())
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	*v = value(f)
	return nil
}

// ParseDocument decodes a result document. Python writes NaN and Infinity
// as bare tokens, which are accepted.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(quoteNonFinite(data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadDocument reads and decodes the document at path.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func (d Document) wrapped(name string) ([]json.RawMessage, error) {
	raw, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingMetric, name)
	}

	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) == 0 {
		return nil, fmt.Errorf("%w: %q is not a non-empty list", ErrMetricShape, name)
	}
	return outer, nil
}

// Scalar returns the first element of the named metric.
func (d Document) Scalar(name string) (float64, error) {
	outer, err := d.wrapped(name)
	if err != nil {
		return 0, err
	}

	var v value
	if err := json.Unmarshal(outer[0], &v); err != nil {
		return 0, fmt.Errorf("%w: %q[0]: %v", ErrMetricShape, name, err)
	}
	return float64(v), nil
}

// Nodal returns the per-node array wrapped in the named metric.
func (d Document) Nodal(name string) ([]float64, error) {
	outer, err := d.wrapped(name)
	if err != nil {
		return nil, err
	}

	var vs []value
	if err := json.Unmarshal(outer[0], &vs); err != nil {
		return nil, fmt.Errorf("%w: %q[0] is not an array of numbers: %v", ErrMetricShape, name, err)
	}

	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out, nil
}

// Discover lists files in dir named <prefix>*<suffix>, sorted by name.
func Discover(dir, prefix, suffix string) ([]string, error) {
	return gtio.ListFiles(dir, func(name string) bool {
		return len(name) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	})
}

// SubjectFromResult strips prefix and suffix from the file's base name:
// "result_S01.json" -> "S01".
func SubjectFromResult(path, prefix, suffix string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.TrimPrefix(base, prefix), suffix)
}

// quoteNonFinite rewrites bare NaN, Infinity and -Infinity tokens outside
// strings as quoted values so encoding/json accepts them.
func quoteNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	var out bytes.Buffer
	out.Grow(len(data) + 16)
	inString, escaped := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
		case bytes.HasPrefix(data[i:], []byte("NaN")):
			out.WriteString(`"NaN"`)
			i += len("NaN") - 1
		case bytes.HasPrefix(data[i:], []byte("-Infinity")):
			out.WriteString(`"-Inf"`)
			i += len("-Infinity") - 1
		case bytes.HasPrefix(data[i:], []byte("Infinity")):
			out.WriteString(`"+Inf"`)
			i += len("Infinity") - 1
		default:
			out.WriteByte(c)
		}
	}

	return out.Bytes()
}
