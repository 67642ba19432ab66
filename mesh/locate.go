package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/tetmesh/types"
)

// tetGeometry caches the affine barycentric functions of one element.
// lambda_i(p) = Dot(normals[i], p) + offsets[i] is 1 at vertex i and 0 on the opposite face,
// so the positive side of each face plane is the side holding the fourth vertex.
type tetGeometry struct {
	normals    [4]r3.Vec
	offsets    [4]float64
	box        r3.Box
	degenerate bool
}

func newTetGeometry(v [4]r3.Vec, tol float64) (g tetGeometry) {
	for f := 0; f < 4; f++ {
		fv := types.TetFaceVertices([4]int{0, 1, 2, 3}, f)
		p0, p1, p2 := v[fv[0]], v[fv[1]], v[fv[2]]
		n := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
		d := r3.Dot(n, r3.Sub(v[f], p0))
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			g.degenerate = true
			return
		}
		g.normals[f] = r3.Scale(1/d, n)
		g.offsets[f] = -r3.Dot(g.normals[f], p0)
	}
	g.box = r3.Box{Min: v[0], Max: v[0]}
	for _, p := range v[1:] {
		g.box.Min = r3.Vec{X: math.Min(g.box.Min.X, p.X), Y: math.Min(g.box.Min.Y, p.Y), Z: math.Min(g.box.Min.Z, p.Z)}
		g.box.Max = r3.Vec{X: math.Max(g.box.Max.X, p.X), Y: math.Max(g.box.Max.Y, p.Y), Z: math.Max(g.box.Max.Z, p.Z)}
	}
	// Points accepted within tolerance lie at most 3*tol box widths outside the box,
	// the second term covers rounding in the barycentric functions
	var (
		diag  = r3.Norm(r3.Sub(g.box.Max, g.box.Min))
		scale = math.Max(r3.Norm(g.box.Min), r3.Norm(g.box.Max))
		pad   = 4*tol*diag + 1.e-12*(diag+scale)
	)
	padV := r3.Vec{X: pad, Y: pad, Z: pad}
	g.box.Min = r3.Sub(g.box.Min, padV)
	g.box.Max = r3.Add(g.box.Max, padV)
	return
}

func (g *tetGeometry) barycentric(p r3.Vec) (lambda [4]float64) {
	for i := 0; i < 4; i++ {
		lambda[i] = r3.Dot(g.normals[i], p) + g.offsets[i]
	}
	return
}

// contains is true when p is on the non-negative side of all four face planes, up to tol.
// NaN coordinates are never contained.
func (g *tetGeometry) contains(p r3.Vec, tol float64) bool {
	if g.degenerate {
		return false
	}
	for i := 0; i < 4; i++ {
		if !(r3.Dot(g.normals[i], p)+g.offsets[i] >= -tol) {
			return false
		}
	}
	return true
}

func (m *Mesh) elementVertices(elt int) (v [4]r3.Vec) {
	for i, idx := range m.eToV[elt] {
		v[i] = m.vertex(idx)
	}
	return
}

func (m *Mesh) buildLocator() {
	m.geom = make([]tetGeometry, m.numElements)
	for k := range m.geom {
		m.geom[k] = newTetGeometry(m.elementVertices(k), m.config.Tolerance)
	}
	m.grid = newBinGrid(m.geom, m.config.GridResolution)
}

// Locate returns the index of the element containing p, or NoElement.
// Candidates are tested in ascending element index and the first match wins, so a point on a
// face shared by two elements belongs to the one with the lower index. Points within
// Tolerance (in barycentric units) of an element are treated as inside it.
func (m *Mesh) Locate(p r3.Vec) int {
	if m.grid == nil {
		return NoElement
	}
	for _, k := range m.grid.candidates(p) {
		if m.geom[k].contains(p, m.config.Tolerance) {
			return int(k)
		}
	}
	return NoElement
}

// Contains reports whether any element contains p
func (m *Mesh) Contains(p r3.Vec) bool {
	return m.Locate(p) != NoElement
}

// Barycentric returns the barycentric coordinates of p with respect to element elt,
// coordinate i weighting vertex i. ok is false for degenerate elements.
func (m *Mesh) Barycentric(elt int, p r3.Vec) (lambda [4]float64, ok bool) {
	g := &m.geom[elt]
	if g.degenerate {
		return
	}
	return g.barycentric(p), true
}

// IsDegenerate reports whether element elt has zero volume and can not contain points
func (m *Mesh) IsDegenerate(elt int) bool {
	return m.geom[elt].degenerate
}
