package readers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/notargets/tetmesh/mesh"
)

// Gmsh4TestBuilder helps build Gmsh 4.1 format test files
type Gmsh4TestBuilder struct {
	tm *mesh.TestMeshes
}

// NewGmsh4TestBuilder creates a new builder with standard test meshes
func NewGmsh4TestBuilder() *Gmsh4TestBuilder {
	return &Gmsh4TestBuilder{
		tm: mesh.GetStandardTestMeshes(),
	}
}

// BuildSingleTetTest creates a Gmsh 4.1 file with one tetrahedron
func (b *Gmsh4TestBuilder) BuildSingleTetTest() string {
	cm := b.tm.SingleTet
	return b.BuildFromCompleteMesh(&cm)
}

// BuildTwoTetTest creates a Gmsh 4.1 file with two tetrahedra
func (b *Gmsh4TestBuilder) BuildTwoTetTest() string {
	cm := b.tm.TwoTet
	return b.BuildFromCompleteMesh(&cm)
}

// BuildFiveTetTest creates a Gmsh 4.1 file with a tetrahedron enclosed by four others, in two media
func (b *Gmsh4TestBuilder) BuildFiveTetTest() string {
	cm := b.tm.FiveTet
	return b.BuildFromCompleteMesh(&cm)
}

// BuildFromCompleteMesh creates a complete Gmsh 4.1 format file from a CompleteMesh.
// Every material becomes a physical group and a volume entity sharing its tag. Materials
// without a name are written as "Medium <tag>" since gmsh names are never empty.
func (b *Gmsh4TestBuilder) BuildFromCompleteMesh(cm *mesh.CompleteMesh) string {
	var sections []string

	sections = append(sections, b.buildHeader())
	sections = append(sections, b.buildPhysicalNames(cm))
	sections = append(sections, b.buildEntities(cm))
	sections = append(sections, b.buildNodes(cm))
	sections = append(sections, b.buildElements(cm))

	return strings.Join(sections, "\n") + "\n"
}

func (b *Gmsh4TestBuilder) buildHeader() string {
	return `$MeshFormat
4.1 0 8
$EndMeshFormat`
}

func (b *Gmsh4TestBuilder) buildPhysicalNames(cm *mesh.CompleteMesh) string {
	var lines []string
	lines = append(lines, "$PhysicalNames")
	lines = append(lines, strconv.Itoa(len(cm.Materials)))
	for _, mat := range cm.Materials {
		name := mat.MediumName
		if name == "" {
			name = fmt.Sprintf("Medium %d", mat.Tag)
		}
		lines = append(lines, fmt.Sprintf("3 %d %q", mat.Tag, name))
	}
	lines = append(lines, "$EndPhysicalNames")
	return strings.Join(lines, "\n")
}

func (b *Gmsh4TestBuilder) buildEntities(cm *mesh.CompleteMesh) string {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, n := range cm.Nodes {
		for i, x := range [3]float64{n.X, n.Y, n.Z} {
			lo[i] = math.Min(lo[i], x)
			hi[i] = math.Max(hi[i], x)
		}
	}

	var lines []string
	lines = append(lines, "$Entities")
	lines = append(lines, fmt.Sprintf("0 0 0 %d", len(cm.Materials)))
	for _, mat := range cm.Materials {
		// tag, bounding box, one physical group, no bounding surfaces
		lines = append(lines, fmt.Sprintf("%d %s %s %s %s %s %s 1 %d 0", mat.Tag,
			formatFloat(lo[0]), formatFloat(lo[1]), formatFloat(lo[2]),
			formatFloat(hi[0]), formatFloat(hi[1]), formatFloat(hi[2]), mat.Tag))
	}
	lines = append(lines, "$EndEntities")
	return strings.Join(lines, "\n")
}

func (b *Gmsh4TestBuilder) buildNodes(cm *mesh.CompleteMesh) string {
	numNodes := len(cm.Nodes)
	loTag, hiTag := tagRange(len(cm.Nodes), func(i int) int { return cm.Nodes[i].Tag })

	var lines []string
	lines = append(lines, "$Nodes")
	lines = append(lines, fmt.Sprintf("1 %d %d %d", numNodes, loTag, hiTag))
	lines = append(lines, fmt.Sprintf("3 1 0 %d", numNodes))

	for _, n := range cm.Nodes {
		lines = append(lines, strconv.Itoa(n.Tag))
	}
	for _, n := range cm.Nodes {
		lines = append(lines, fmt.Sprintf("%s %s %s", formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z)))
	}

	lines = append(lines, "$EndNodes")
	return strings.Join(lines, "\n")
}

// buildElements writes one tetrahedron block per run of elements sharing a medium, so
// the element order is preserved
func (b *Gmsh4TestBuilder) buildElements(cm *mesh.CompleteMesh) string {
	type run struct {
		medium int
		elems  []mesh.Tetrahedron
	}
	var runs []run
	for _, e := range cm.Elements {
		if len(runs) == 0 || runs[len(runs)-1].medium != e.MediumTag {
			runs = append(runs, run{medium: e.MediumTag})
		}
		runs[len(runs)-1].elems = append(runs[len(runs)-1].elems, e)
	}
	loTag, hiTag := tagRange(len(cm.Elements), func(i int) int { return cm.Elements[i].Tag })

	var lines []string
	lines = append(lines, "$Elements")
	lines = append(lines, fmt.Sprintf("%d %d %d %d", len(runs), len(cm.Elements), loTag, hiTag))
	for _, r := range runs {
		// Block header: entityDim entityTag elementType numElements
		lines = append(lines, fmt.Sprintf("3 %d %d %d", r.medium, gmshTet4, len(r.elems)))
		for _, e := range r.elems {
			lines = append(lines, fmt.Sprintf("%d %d %d %d %d", e.Tag, e.A, e.B, e.C, e.D))
		}
	}

	lines = append(lines, "$EndElements")
	return strings.Join(lines, "\n")
}

func tagRange(n int, tag func(i int) int) (lo, hi int) {
	if n == 0 {
		return 0, 0
	}
	lo, hi = tag(0), tag(0)
	for i := 1; i < n; i++ {
		lo = min(lo, tag(i))
		hi = max(hi, tag(i))
	}
	return
}

// formatFloat writes the shortest representation that parses back to x
func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
