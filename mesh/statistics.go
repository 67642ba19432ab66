package mesh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ElementVolume returns the volume of element elt, |det(J)|/6 with J the edge Jacobian
func (m *Mesh) ElementVolume(elt int) float64 {
	v := m.elementVertices(elt)
	J := mat.NewDense(3, 3, nil)
	for j := 1; j < 4; j++ {
		e := r3.Sub(v[j], v[0])
		J.Set(0, j-1, e.X)
		J.Set(1, j-1, e.Y)
		J.Set(2, j-1, e.Z)
	}
	return math.Abs(mat.Det(J)) / 6.
}

// TotalVolume sums the element volumes
func (m *Mesh) TotalVolume() (vol float64) {
	for k := 0; k < m.numElements; k++ {
		vol += m.ElementVolume(k)
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Nodes: %d\n", m.numNodes)
	fmt.Printf("  Elements: %d\n", m.numElements)
	fmt.Printf("  Materials: %d\n", len(m.materials))

	// Count elements per medium
	mediumCounts := make(map[int]int)
	for _, e := range m.elements {
		mediumCounts[e.MediumTag]++
	}
	media := make([]int, 0, len(mediumCounts))
	for tag := range mediumCounts {
		media = append(media, tag)
	}
	sort.Ints(media)
	fmt.Printf("  Elements per medium:\n")
	for _, tag := range media {
		name, _ := m.MaterialName(tag)
		fmt.Printf("    %d (%s): %d\n", tag, name, mediumCounts[tag])
	}

	boundaryElements, degenerate := 0, 0
	for k := 0; k < m.numElements; k++ {
		if m.isBoundary[k] {
			boundaryElements++
		}
		if m.geom[k].degenerate {
			degenerate++
		}
	}
	fmt.Printf("  Boundary faces: %d\n", m.NumBoundaryFaces())
	fmt.Printf("  Boundary elements: %d\n", boundaryElements)
	fmt.Printf("  Degenerate elements: %d\n", degenerate)
	fmt.Printf("  Total volume: %g\n", m.TotalVolume())
	if m.grid != nil {
		fmt.Printf("  Search bins: %d x %d x %d\n", m.grid.n[0], m.grid.n[1], m.grid.n[2])
	}
}
