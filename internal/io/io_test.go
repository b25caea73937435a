package io

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
	"github.com/stretchr/testify/require"
)

func TestNpyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c2.npy")
	m := mat64.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6.5})

	require.NoError(t, Mat64toNpy(path, m))

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	require.True(t, mat64.Equal(m, got))
}

func TestNpyEmptyMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.npy")
	require.NoError(t, Mat64toNpy(path, &mat64.Dense{}))

	r, err := gonpy.NewFileReader(path)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0}, r.Shape)

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	rows, cols := got.Dims()
	require.Zero(t, rows)
	require.Zero(t, cols)
}

func TestNpyIntegerCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "S01_connectivity_streamline_count.npy")
	w, err := gonpy.NewFileWriter(path)
	require.NoError(t, err)
	w.Shape = []int{2, 2}
	require.NoError(t, w.WriteInt64([]int64{0, 12, 12, 0}))

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	require.Equal(t, 12.0, got.At(0, 1))
	require.Equal(t, 12.0, got.At(1, 0))
}

func TestNpyColumnMajor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortran.npy")
	w, err := gonpy.NewFileWriter(path)
	require.NoError(t, err)
	w.Shape = []int{2, 2}
	w.ColumnMajor = true
	// [[1, 2], [3, 4]] in column-major order
	require.NoError(t, w.WriteFloat64([]float64{1, 3, 2, 4}))

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	require.True(t, mat64.Equal(mat64.NewDense(2, 2, []float64{1, 2, 3, 4}), got))
}

func TestNpyRejectsNon2D(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec.npy")
	w, err := gonpy.NewFileWriter(path)
	require.NoError(t, err)
	w.Shape = []int{3}
	require.NoError(t, w.WriteFloat64([]float64{1, 2, 3}))

	_, err = NpytoMat64(path)
	require.Error(t, err)
}

// writeRawNpy writes a version 1.0 float64 npy file with a literal shape
// string, for headers gonpy's writer will not produce.
func writeRawNpy(t *testing.T, path, shape string, data []float64) {
	t.Helper()
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': " + shape + ", }"
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY\x01\x00")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, data))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestNpyRawHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.npy")
	writeRawNpy(t, path, "(2, 2)", []float64{1, 2, 3, 4})

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	require.True(t, mat64.Equal(mat64.NewDense(2, 2, []float64{1, 2, 3, 4}), got))
}

func TestNpyMalformedShapes(t *testing.T) {
	cases := map[string]string{
		"long suffix":  "(3L, 3L)",
		"negative":     "(-3, -3)",
		"one negative": "(0, -1)",
		"huge":         "(4611686018427387904, 4611686018427387904)",
		"too large":    "(1000, 1000)",
	}
	for name, shape := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.npy")
			writeRawNpy(t, path, shape, make([]float64, 9))

			var err error
			require.NotPanics(t, func() { _, err = NpytoMat64(path) })
			require.Error(t, err)
			require.Contains(t, err.Error(), "bad.npy")
		})
	}
}

func TestNpyMissingFile(t *testing.T) {
	_, err := NpytoMat64(filepath.Join(t.TempDir(), "missing.npy"))
	require.Error(t, err)
}

func TestListFiles(t *testing.T) {
	dir, store := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.npy"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.npy"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store, "a.npy"), nil, 0644))
	require.NoError(t, os.Symlink(filepath.Join(store, "a.npy"), filepath.Join(dir, "a.npy")))
	require.NoError(t, os.Symlink(store, filepath.Join(dir, "e.npy")))
	require.NoError(t, os.Symlink(filepath.Join(store, "gone"), filepath.Join(dir, "f.npy")))

	files, err := ListFiles(dir, func(name string) bool { return filepath.Ext(name) == ".npy" })
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.npy"), filepath.Join(dir, "b.npy")}, files)

	_, err = ListFiles(filepath.Join(dir, "missing"), func(string) bool { return true })
	require.Error(t, err)
}

func TestMat64toCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	m := mat64.NewDense(2, 2, []float64{1, 0.5, 1e-05, 4})

	require.NoError(t, Mat64toCSV(path, m))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "1, 0.5\n1e-05, 4\n", string(b))
}

func TestTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_efficiency_measures.csv")
	header := []string{"Subject ID", "Global Efficiency"}
	rows := [][]string{{"S01", "0.42"}, {"S02", "0.5"}}

	require.NoError(t, WriteTable(path, header, rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Subject ID,Global Efficiency\nS01,0.42\nS02,0.5\n", string(b))

	gotHeader, gotRows, err := ReadTable(path)
	require.NoError(t, err)
	require.Equal(t, header, gotHeader)
	require.Equal(t, rows, gotRows)
}

func TestFormatFloat(t *testing.T) {
	require.Equal(t, "0.42", FormatFloat(0.42))
	require.Equal(t, "3", FormatFloat(3))
}
