package atlas

import (
	"errors"
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// ErrShape is returned when a matrix does not fit the mask it is filtered with.
var ErrShape = errors.New("matrix shape does not match mask")

// Mask marks the source nodes that also exist in the target atlas.
// It has the length and order of the source Names.
type Mask []bool

// Match builds the membership mask of source in target. Membership is by
// exact name, independent of where the name sits in target. Empty names
// never match.
func Match(source, target Names) Mask {
	set := make(map[string]struct{}, len(target))
	for _, n := range target {
		if n != "" {
			set[n] = struct{}{}
		}
	}

	mask := make(Mask, len(source))
	for i, n := range source {
		if n != "" {
			_, mask[i] = set[n]
		}
	}

	return mask
}

// Count returns the number of kept nodes.
func (m Mask) Count() int {
	cnt := 0
	for _, keep := range m {
		if keep {
			cnt++
		}
	}
	return cnt
}

// Indices returns the kept positions in ascending order.
func (m Mask) Indices() []int {
	idx := make([]int, 0, m.Count())
	for i, keep := range m {
		if keep {
			idx = append(idx, i)
		}
	}
	return idx
}

// Select returns the names at kept positions, in order.
func (m Mask) Select(names Names) Names {
	out := make(Names, 0, m.Count())
	for _, i := range m.Indices() {
		if i < len(names) {
			out = append(out, names[i])
		}
	}
	return out
}

// Dropped returns the names at positions the mask does not keep.
func (m Mask) Dropped(names Names) Names {
	var out Names
	for i, keep := range m {
		if !keep && i < len(names) {
			out = append(out, names[i])
		}
	}
	return out
}

// Filter keeps the rows and columns of a square matrix whose mask entry is
// true. Row and column i of the result are the i-th kept node. No match gives
// an empty 0x0 matrix.
func Filter(matrix mat64.Matrix, mask Mask) (*mat64.Dense, error) {
	rows, cols := matrix.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %d by %d is not square", ErrShape, rows, cols)
	}
	if rows != len(mask) {
		return nil, fmt.Errorf("%w: matrix is %d by %d, mask has %d nodes", ErrShape, rows, cols, len(mask))
	}

	idx := mask.Indices()
	n := len(idx)
	if n == 0 {
		return &mat64.Dense{}, nil
	}

	data := make([]float64, n*n)
	for i, r := range idx {
		for j, c := range idx {
			data[i*n+j] = matrix.At(r, c)
		}
	}

	return mat64.NewDense(n, n, data), nil
}
