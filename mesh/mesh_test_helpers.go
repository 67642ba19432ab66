package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// TestMeshes provides a collection of standard test meshes that can be used
// by the mesh tests and by the file format reader tests
type TestMeshes struct {
	SingleTet CompleteMesh
	TwoTet    CompleteMesh
	FiveTet   CompleteMesh
}

// CompleteMesh holds the explicit lists a mesh is built from
type CompleteMesh struct {
	Nodes     []Node
	Elements  []Tetrahedron
	Materials []Material
}

// Build constructs a Mesh from the lists
func (cm *CompleteMesh) Build() (*Mesh, error) {
	return NewMesh(cm.Elements, cm.Nodes, cm.Materials)
}

// Centroid returns the mean of the vertices of element elt
func (cm *CompleteMesh) Centroid(elt int) r3.Vec {
	coords := make(map[int]r3.Vec, len(cm.Nodes))
	for _, n := range cm.Nodes {
		coords[n.Tag] = n.Vec()
	}
	var c r3.Vec
	for _, tag := range cm.Elements[elt].NodeTags() {
		c = r3.Add(c, coords[tag])
	}
	return r3.Scale(0.25, c)
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	return &TestMeshes{
		SingleTet: createSingleTet(),
		TwoTet:    createTwoTet(),
		FiveTet:   createFiveTet(),
	}
}

func createSingleTet() CompleteMesh {
	return CompleteMesh{
		Nodes: []Node{
			{Tag: 0, X: 1, Y: 1, Z: -1},
			{Tag: 1, X: -1, Y: 1, Z: -1},
			{Tag: 2, X: 0, Y: -1, Z: -1},
			{Tag: 3, X: 0, Y: 0, Z: 1},
		},
		Elements: []Tetrahedron{
			{Tag: 0, A: 0, B: 1, C: 2, D: 3, MediumTag: 1},
		},
		Materials: []Material{{Tag: 1, MediumName: ""}},
	}
}

// createTwoTet adds a second tet sharing the face {1,2,3} of the single tet
func createTwoTet() CompleteMesh {
	cm := createSingleTet()
	cm.Nodes = append(cm.Nodes, Node{Tag: 4, X: -1, Y: -1, Z: 1})
	cm.Elements = append(cm.Elements, Tetrahedron{Tag: 1, A: 1, B: 2, C: 3, D: 4, MediumTag: 1})
	return cm
}

// createFiveTet builds a central tet surrounded by four tets, one on each of its faces.
// Element 0 is the unit corner tet, elements 1-4 hang off its faces 0-3.
func createFiveTet() CompleteMesh {
	return CompleteMesh{
		Nodes: []Node{
			{Tag: 1, X: 0, Y: 0, Z: 0},
			{Tag: 2, X: 1, Y: 0, Z: 0},
			{Tag: 3, X: 0, Y: 1, Z: 0},
			{Tag: 4, X: 0, Y: 0, Z: 1},
			{Tag: 5, X: 1, Y: 1, Z: 1},
			{Tag: 6, X: -1, Y: 0, Z: 0},
			{Tag: 7, X: 0, Y: -1, Z: 0},
			{Tag: 8, X: 0, Y: 0, Z: -1},
		},
		Elements: []Tetrahedron{
			{Tag: 1, A: 1, B: 2, C: 3, D: 4, MediumTag: 1},
			{Tag: 2, A: 2, B: 3, C: 4, D: 5, MediumTag: 2},
			{Tag: 3, A: 1, B: 3, C: 4, D: 6, MediumTag: 2},
			{Tag: 4, A: 1, B: 2, C: 4, D: 7, MediumTag: 2},
			{Tag: 5, A: 1, B: 2, C: 3, D: 8, MediumTag: 2},
		},
		Materials: []Material{
			{Tag: 1, MediumName: "Steel"},
			{Tag: 2, MediumName: "Water"},
		},
	}
}

// CreateCubeMesh tiles [0,n]^3 with unit cubes, each split into the six tetrahedra around its
// main diagonal. The split is conforming so interior faces are shared by exactly two elements.
// Node tags are sparse (10*index+7) to exercise tag lookups.
func CreateCubeMesh(n int) CompleteMesh {
	var (
		cm  CompleteMesh
		np  = n + 1
		tag = func(i, j, k int) int { return 10*((i*np+j)*np+k) + 7 }
	)
	for i := 0; i < np; i++ {
		for j := 0; j < np; j++ {
			for k := 0; k < np; k++ {
				cm.Nodes = append(cm.Nodes, Node{Tag: tag(i, j, k),
					X: float64(i), Y: float64(j), Z: float64(k)})
			}
		}
	}
	perms := [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	elemTag := 100
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for _, perm := range perms {
					var (
						c     = [3]int{i, j, k}
						verts [4]int
					)
					verts[0] = tag(c[0], c[1], c[2])
					for s, axis := range perm {
						c[axis]++
						verts[s+1] = tag(c[0], c[1], c[2])
					}
					cm.Elements = append(cm.Elements, Tetrahedron{Tag: elemTag,
						A: verts[0], B: verts[1], C: verts[2], D: verts[3], MediumTag: 1})
					elemTag++
				}
			}
		}
	}
	cm.Materials = []Material{{Tag: 1, MediumName: "Air"}}
	return cm
}
