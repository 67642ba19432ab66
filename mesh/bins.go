package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const maxBinsPerAxis = 128

// binGrid is a uniform grid over the mesh bounding box. Each bin lists, in ascending order,
// the elements whose padded box overlaps it, so scanning a bin visits candidates in the
// same order as a scan over all elements.
type binGrid struct {
	box  r3.Box
	n    [3]int
	cell [3]float64
	bins [][]int32
}

func newBinGrid(geom []tetGeometry, resolution int) (bg *binGrid) {
	var (
		first = true
		box   r3.Box
	)
	for k := range geom {
		if geom[k].degenerate {
			continue
		}
		b := geom[k].box
		if first {
			box, first = b, false
			continue
		}
		box.Min = r3.Vec{X: math.Min(box.Min.X, b.Min.X), Y: math.Min(box.Min.Y, b.Min.Y), Z: math.Min(box.Min.Z, b.Min.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, b.Max.X), Y: math.Max(box.Max.Y, b.Max.Y), Z: math.Max(box.Max.Z, b.Max.Z)}
	}
	if first {
		return nil
	}
	if resolution == 0 {
		resolution = int(math.Round(math.Cbrt(float64(len(geom)))))
	}
	resolution = max(1, min(resolution, maxBinsPerAxis))

	bg = &binGrid{box: box}
	width := [3]float64{box.Max.X - box.Min.X, box.Max.Y - box.Min.Y, box.Max.Z - box.Min.Z}
	for d := 0; d < 3; d++ {
		if width[d] > 0 {
			bg.n[d] = resolution
			bg.cell[d] = width[d] / float64(resolution)
		} else {
			bg.n[d] = 1
			bg.cell[d] = 1
		}
	}
	bg.bins = make([][]int32, bg.n[0]*bg.n[1]*bg.n[2])

	for k := range geom {
		if geom[k].degenerate {
			continue
		}
		lo := bg.cellOf(geom[k].box.Min)
		hi := bg.cellOf(geom[k].box.Max)
		for i := lo[0]; i <= hi[0]; i++ {
			for j := lo[1]; j <= hi[1]; j++ {
				for l := lo[2]; l <= hi[2]; l++ {
					b := bg.flatten(i, j, l)
					bg.bins[b] = append(bg.bins[b], int32(k))
				}
			}
		}
	}
	return
}

// cellOf clamps p into the grid and returns its cell coordinates
func (bg *binGrid) cellOf(p r3.Vec) (c [3]int) {
	coords := [3]float64{p.X - bg.box.Min.X, p.Y - bg.box.Min.Y, p.Z - bg.box.Min.Z}
	for d := 0; d < 3; d++ {
		c[d] = int(math.Floor(coords[d] / bg.cell[d]))
		c[d] = max(0, min(c[d], bg.n[d]-1))
	}
	return
}

func (bg *binGrid) flatten(i, j, l int) int {
	return (i*bg.n[1]+j)*bg.n[2] + l
}

func (bg *binGrid) inside(p r3.Vec) bool {
	return p.X >= bg.box.Min.X && p.X <= bg.box.Max.X &&
		p.Y >= bg.box.Min.Y && p.Y <= bg.box.Max.Y &&
		p.Z >= bg.box.Min.Z && p.Z <= bg.box.Max.Z
}

// candidates returns the elements that may contain p, nil when p is outside the grid
func (bg *binGrid) candidates(p r3.Vec) []int32 {
	if !bg.inside(p) {
		return nil
	}
	c := bg.cellOf(p)
	return bg.bins[bg.flatten(c[0], c[1], c[2])]
}

func (bg *binGrid) numBins() int {
	return len(bg.bins)
}
