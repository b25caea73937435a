package atlas

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/KyungWonPark/nifti"
)

// ErrDims is returned when a volume does not have the expected grid size.
var ErrDims = errors.New("volume dimensions do not match")

// VoxelSource is a 3D label volume.
type VoxelSource interface {
	Dims() [3]int
	Voxel(x, y, z int) float64
}

type niftiVolume struct {
	img  *nifti.Nifti1Image
	dims [3]int
}

func (v niftiVolume) Dims() [3]int { return v.dims }

func (v niftiVolume) Voxel(x, y, z int) float64 {
	return float64(v.img.GetAt(uint32(x), uint32(y), uint32(z), 0))
}

// LoadVolume opens an atlas label image (.nii or .nii.gz). The header must
// describe a non-empty grid and the data must cover its first volume.
func LoadVolume(path string) (vol VoxelSource, err error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("[LoadVolume] atlas volume not found: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			vol, err = nil, fmt.Errorf("[LoadVolume] %s: unreadable NIfTI image: %v", path, r)
		}
	}()

	var img nifti.Nifti1Image
	img.LoadImage(path, true)

	header := img.GetHeader()
	if header.Bitpix == 0 {
		return nil, fmt.Errorf("[LoadVolume] %s: not a NIfTI image (empty header)", path)
	}

	d := img.GetDims()
	dims := [3]int{d[0], d[1], d[2]}
	if dims[0] < 1 || dims[1] < 1 || dims[2] < 1 {
		return nil, fmt.Errorf("[LoadVolume] %s: invalid dimensions %v", path, dims)
	}

	// the last voxel of volume 0 panics if the data is short
	img.GetAt(uint32(dims[0]-1), uint32(dims[1]-1), uint32(dims[2]-1), 0)

	return niftiVolume{img: &img, dims: dims}, nil
}

// CheckDims compares the volume grid with want. A zero want accepts any grid.
func CheckDims(vol VoxelSource, want [3]int) error {
	if want == [3]int{} {
		return nil
	}
	if got := vol.Dims(); got != want {
		return fmt.Errorf("%w: image is %dx%dx%d, expected %dx%dx%d",
			ErrDims, got[0], got[1], got[2], want[0], want[1], want[2])
	}
	return nil
}

// Census counts voxels per label value over the whole grid of the volume.
// Label 0 is background and not counted.
func Census(vol VoxelSource) map[int]int {
	counts := make(map[int]int)
	dims := vol.Dims()

	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				label := int(math.Round(vol.Voxel(x, y, z)))
				if label > 0 {
					counts[label]++
				}
			}
		}
	}

	return counts
}

// CensusRow is one node of the source atlas with its size and whether it
// survives the remap.
type CensusRow struct {
	Index    int
	Name     string
	Voxels   int
	InTarget bool
}

// BuildCensus joins voxel counts with the indexed source names and the target
// atlas, keeping the source order.
func BuildCensus(nodes []IndexedName, counts map[int]int, target Names) []CensusRow {
	names := make(Names, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	mask := Match(names, target)

	rows := make([]CensusRow, len(nodes))
	for i, n := range nodes {
		rows[i] = CensusRow{
			Index:    n.Index,
			Name:     n.Name,
			Voxels:   counts[n.Index],
			InTarget: mask[i],
		}
	}

	return rows
}
