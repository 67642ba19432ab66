package mesh

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NoNeighbour marks a face slot on the domain boundary
	NoNeighbour = -1
	// NoElement is returned by Locate for points outside the mesh
	NoElement = -1
	// DefaultTolerance is the barycentric tolerance used to treat points on a face as inside
	DefaultTolerance = 1.e-10
)

// Node is a mesh vertex with its user assigned tag
type Node struct {
	Tag     int
	X, Y, Z float64
}

func (n Node) Vec() r3.Vec {
	return r3.Vec{X: n.X, Y: n.Y, Z: n.Z}
}

// Tetrahedron is a 4-node element. A, B, C, D are node tags in file order,
// MediumTag is the physical group of the volume the element belongs to.
type Tetrahedron struct {
	Tag        int
	A, B, C, D int
	MediumTag  int
}

func (t Tetrahedron) NodeTags() [4]int {
	return [4]int{t.A, t.B, t.C, t.D}
}

// Material associates a medium tag with its name
type Material struct {
	Tag        int
	MediumName string
}

// MeshConfig holds the point location settings of a mesh
type MeshConfig struct {
	Tolerance      float64 // Barycentric tolerance, dimensionless
	GridResolution int     // Search bins per axis, 0 sizes the grid from the element count
	Verbose        bool
}

// DefaultMeshConfig returns the default mesh configuration
func DefaultMeshConfig() *MeshConfig {
	return &MeshConfig{
		Tolerance:      DefaultTolerance,
		GridResolution: 0,
	}
}

// Validate checks the settings are usable for building a mesh
func (c *MeshConfig) Validate() error {
	if !(c.Tolerance >= 0) {
		return fmt.Errorf("mesh tolerance must be non-negative, got %g", c.Tolerance)
	}
	if c.GridResolution < 0 {
		return fmt.Errorf("mesh grid resolution must be non-negative, got %d", c.GridResolution)
	}
	return nil
}

// Mesh is an immutable tetrahedral mesh with face connectivity and a point locator.
// All methods are read only, a Mesh can be shared between goroutines.
type Mesh struct {
	nodes     []Node
	elements  []Tetrahedron
	materials []Material

	nodeIDMap    map[int]int // Node tag -> node index
	elementIDMap map[int]int // Element tag -> element index

	// eToV holds node indices, eToE neighbour element indices per face, face i is opposite vertex i.
	// eToF holds the neighbour's local index of the shared face.
	eToV       [][4]int
	eToE       [][4]int
	eToF       [][4]int
	isBoundary []bool

	numNodes    int
	numElements int

	config *MeshConfig
	geom   []tetGeometry
	grid   *binGrid
}

// NewMesh builds a mesh from explicit node, element and material lists using the default configuration
func NewMesh(elements []Tetrahedron, nodes []Node, materials []Material) (*Mesh, error) {
	return NewMeshWithConfig(elements, nodes, materials, nil)
}

// NewMeshWithConfig builds a mesh, validating all node references before computing connectivity.
// Either a complete mesh or an error is returned.
func NewMeshWithConfig(elements []Tetrahedron, nodes []Node, materials []Material,
	config *MeshConfig) (m *Mesh, err error) {
	if config == nil {
		config = DefaultMeshConfig()
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	m = &Mesh{
		nodes:        append([]Node(nil), nodes...),
		elements:     append([]Tetrahedron(nil), elements...),
		materials:    append([]Material(nil), materials...),
		nodeIDMap:    make(map[int]int, len(nodes)),
		elementIDMap: make(map[int]int, len(elements)),
		numNodes:     len(nodes),
		numElements:  len(elements),
	}
	cfg := *config
	m.config = &cfg
	for i, n := range m.nodes {
		if _, exists := m.nodeIDMap[n.Tag]; exists {
			return nil, fmt.Errorf("duplicate mesh node tag: %d", n.Tag)
		}
		m.nodeIDMap[n.Tag] = i
	}
	m.eToV = make([][4]int, m.numElements)
	for k, e := range m.elements {
		if _, exists := m.elementIDMap[e.Tag]; exists {
			return nil, fmt.Errorf("duplicate mesh element tag: %d", e.Tag)
		}
		m.elementIDMap[e.Tag] = k
		for i, tag := range e.NodeTags() {
			idx, ok := m.nodeIDMap[tag]
			if !ok {
				return nil, fmt.Errorf("no mesh node with tag: %d", tag)
			}
			m.eToV[k][i] = idx
		}
	}

	m.buildConnectivity()
	m.buildLocator()

	if config.Verbose {
		log.Printf("Built mesh with %d nodes, %d elements, %d boundary faces",
			m.numNodes, m.numElements, m.NumBoundaryFaces())
	}
	return m, nil
}

// Nodes returns a copy of the node list
func (m *Mesh) Nodes() []Node {
	return append([]Node(nil), m.nodes...)
}

// Elements returns a copy of the element list
func (m *Mesh) Elements() []Tetrahedron {
	return append([]Tetrahedron(nil), m.elements...)
}

// Materials returns a copy of the material list
func (m *Mesh) Materials() []Material {
	return append([]Material(nil), m.materials...)
}

// IsBoundary returns, per element, whether any of its faces lies on the domain boundary
func (m *Mesh) IsBoundary() []bool {
	return append([]bool(nil), m.isBoundary...)
}

// Neighbours returns, per element, the neighbour across each face or NoNeighbour
func (m *Mesh) Neighbours() [][4]int {
	return append([][4]int(nil), m.eToE...)
}

func (m *Mesh) NumNodes() int { return m.numNodes }

func (m *Mesh) NumElements() int { return m.numElements }

func (m *Mesh) Config() MeshConfig {
	return *m.config
}

func (m *Mesh) NodeIndex(tag int) (idx int, ok bool) {
	idx, ok = m.nodeIDMap[tag]
	return
}

func (m *Mesh) ElementIndex(tag int) (idx int, ok bool) {
	idx, ok = m.elementIDMap[tag]
	return
}

// Medium returns the medium tag of element elt
func (m *Mesh) Medium(elt int) int {
	return m.elements[elt].MediumTag
}

// MaterialName looks up the medium name bound to a medium tag
func (m *Mesh) MaterialName(mediumTag int) (name string, ok bool) {
	for _, mat := range m.materials {
		if mat.Tag == mediumTag {
			return mat.MediumName, true
		}
	}
	return "", false
}

func (m *Mesh) vertex(idx int) r3.Vec {
	return m.nodes[idx].Vec()
}
