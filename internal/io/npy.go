package io

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file.
// An empty matrix is written with shape (0, 0).
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to open %s: %w", path, err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2

	if err := w.WriteFloat64(data); err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to write %s: %w", path, err)
	}

	return nil
}

// NpytoMat64 reads a 2D Python numpy npy binary file as mat64 matrix.
// Integer and float32 arrays are widened to float64. A malformed header is
// reported as an error, never a panic.
func NpytoMat64(path string) (m *mat64.Dense, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("[NpytoMat64] %s: malformed npy file: %v", path, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to stat %s: %w", path, err)
	}

	r, err := gonpy.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to open %s: %w", path, err)
	}

	if len(r.Shape) != 2 {
		return nil, fmt.Errorf("[NpytoMat64] %s: expected 2D array, got shape %v", path, r.Shape)
	}
	if err := checkSize(r.Shape, itemSize(r.Dtype), info.Size()); err != nil {
		return nil, fmt.Errorf("[NpytoMat64] %s: %w", path, err)
	}
	rows, cols := r.Shape[0], r.Shape[1]

	data, err := readFloat64(r)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to read %s: %w", path, err)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("[NpytoMat64] %s: shape %v but %d values", path, r.Shape, len(data))
	}

	if rows == 0 || cols == 0 {
		return &mat64.Dense{}, nil
	}

	if r.ColumnMajor {
		var t mat64.Dense
		t.Clone(mat64.NewDense(cols, rows, data).T())
		return &t, nil
	}

	return mat64.NewDense(rows, cols, data), nil
}

// itemSize is the byte width of a dtype such as "f8" or "u1", or 0.
func itemSize(dtype string) int64 {
	if dtype == "" {
		return 0
	}
	n, err := strconv.Atoi(dtype[1:])
	if err != nil || n < 1 {
		return 0
	}
	return int64(n)
}

// checkSize rejects negative dimensions and shapes whose data cannot fit in
// a file of fileSize bytes.
func checkSize(shape []int, item, fileSize int64) error {
	if item == 0 {
		return errors.New("unknown item size")
	}
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in shape %v", shape)
		}
	}

	need := item
	for _, d := range shape {
		if d == 0 {
			return nil
		}
		if need > fileSize/int64(d) {
			return fmt.Errorf("shape %v does not fit in %d bytes", shape, fileSize)
		}
		need *= int64(d)
	}
	return nil
}

func readFloat64(r *gonpy.NpyReader) ([]float64, error) {
	switch r.Dtype {
	case "f8":
		return r.GetFloat64()
	case "f4":
		v, err := r.GetFloat32()
		return widen(v, err)
	case "i8":
		v, err := r.GetInt64()
		return widen(v, err)
	case "i4":
		v, err := r.GetInt32()
		return widen(v, err)
	case "i2":
		v, err := r.GetInt16()
		return widen(v, err)
	case "i1":
		v, err := r.GetInt8()
		return widen(v, err)
	case "u8":
		v, err := r.GetUint64()
		return widen(v, err)
	case "u4":
		v, err := r.GetUint32()
		return widen(v, err)
	case "u2":
		v, err := r.GetUint16()
		return widen(v, err)
	case "u1":
		v, err := r.GetUint8()
		return widen(v, err)
	}

	return nil, fmt.Errorf("unsupported dtype %q", r.Dtype)
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32
}

func widen[T number](v []T, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}
