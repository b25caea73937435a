package atlas

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/require"
)

func denseRows(m *mat64.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func TestMatchExample(t *testing.T) {
	source := Names{"A_L", "B_L", "C_R"}
	target := Names{"B_L", "C_R", "D_L"}

	mask := Match(source, target)
	require.Equal(t, Mask{false, true, true}, mask)
	require.Equal(t, 2, mask.Count())
	require.Equal(t, []int{1, 2}, mask.Indices())
	require.Equal(t, Names{"B_L", "C_R"}, mask.Select(source))
	require.Equal(t, Names{"A_L"}, mask.Dropped(source))
}

func TestMatchIgnoresTargetOrderAndEmptyNames(t *testing.T) {
	source := Names{"X_R", "", "Y_L", "X_R"}
	target := Names{"Y_L", "", "X_R"}

	require.Equal(t, Mask{true, false, true, true}, Match(source, target))
}

func TestMatchCountEqualsIntersection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := make(Names, 40)
	for i := range pool {
		pool[i] = fmt.Sprintf("N%d_%c", i/2, "LR"[i%2])
	}

	for trial := 0; trial < 50; trial++ {
		var source, target Names
		for _, n := range pool {
			if rng.Intn(2) == 0 {
				source = append(source, n)
			}
			if rng.Intn(3) == 0 {
				target = append(target, n)
			}
		}
		rng.Shuffle(len(target), func(i, j int) { target[i], target[j] = target[j], target[i] })

		inTarget := make(map[string]bool)
		for _, n := range target {
			inTarget[n] = true
		}
		want := 0
		for _, n := range source {
			if inTarget[n] {
				want++
			}
		}

		mask := Match(source, target)
		require.Len(t, mask, len(source))
		require.Equal(t, want, mask.Count())
	}
}

func TestFilterExample(t *testing.T) {
	m := mat64.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	got, err := Filter(m, Mask{false, true, true})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{5, 6}, {8, 9}}, denseRows(got))
}

func TestFilterKeepsRelativeOrder(t *testing.T) {
	n := 5
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = float64(10*i + j)
		}
	}
	mask := Mask{true, false, true, false, true}

	got, err := Filter(mat64.NewDense(n, n, data), mask)
	require.NoError(t, err)
	require.Equal(t, [][]float64{
		{0, 2, 4},
		{20, 22, 24},
		{40, 42, 44},
	}, denseRows(got))
}

func TestFilterSameMaskSameShape(t *testing.T) {
	mask := Mask{true, true, false, true}
	a := mat64.NewDense(4, 4, nil)
	b := mat64.NewDense(4, 4, []float64{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
		4, 4, 4, 4,
	})

	fa, err := Filter(a, mask)
	require.NoError(t, err)
	fb, err := Filter(b, mask)
	require.NoError(t, err)

	ra, ca := fa.Dims()
	rb, cb := fb.Dims()
	require.Equal(t, []int{3, 3}, []int{ra, ca})
	require.Equal(t, []int{ra, ca}, []int{rb, cb})
	require.Equal(t, Mask{true, true, false, true}, mask)
}

func TestFilterIdempotentWithAllTrueMask(t *testing.T) {
	m := mat64.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	once, err := Filter(m, Mask{true, false, true})
	require.NoError(t, err)

	twice, err := Filter(once, Mask{true, true})
	require.NoError(t, err)
	require.True(t, mat64.Equal(once, twice))
}

func TestFilterNoMatchIsEmpty(t *testing.T) {
	m := mat64.NewDense(2, 2, []float64{1, 2, 3, 4})

	got, err := Filter(m, Match(Names{"A_L", "B_R"}, Names{"C_L"}))
	require.NoError(t, err)
	rows, cols := got.Dims()
	require.Zero(t, rows)
	require.Zero(t, cols)
}

func TestFilterShapeErrors(t *testing.T) {
	_, err := Filter(mat64.NewDense(2, 3, nil), Mask{true, true})
	require.ErrorIs(t, err, ErrShape)

	_, err = Filter(mat64.NewDense(3, 3, nil), Mask{true, true})
	require.ErrorIs(t, err, ErrShape)
}

func TestSubjectID(t *testing.T) {
	cases := map[string]string{
		"100610_connectivity_length.npy":                 "100610",
		"/data/in/S01_connectivity_streamline_count.npy": "S01",
		"sub-01_ses-1_connectivity_length.npy":           "sub-01",
		"nounderscore.npy":                               "nounderscore.npy",
	}
	for in, want := range cases {
		require.Equal(t, want, SubjectID(in), in)
	}
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "sensaas_LENGTH_S01.npy", OutputName("sensaas_LENGTH_", "S01", "npy"))
	require.Equal(t, "sensaas_streamline_S01.npy", OutputName("sensaas_streamline_", "S01", ".npy"))
}
