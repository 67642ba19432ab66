package mesh

import (
	"github.com/notargets/tetmesh/types"
)

// faceOwner records the first element claiming a face
type faceOwner struct {
	Element int
	LocalID int
	Matched bool
}

// buildConnectivity builds element-to-element connectivity through shared faces.
// Face i of an element is the face opposite its vertex i. Faces are matched through a
// map keyed on the sorted node indices, so the cost is linear in the number of elements.
// A face is shared by at most two distinct elements, later claimants of a matched face stay on the boundary.
func (m *Mesh) buildConnectivity() {
	m.eToE = make([][4]int, m.numElements)
	m.eToF = make([][4]int, m.numElements)
	m.isBoundary = make([]bool, m.numElements)
	faceMap := make(map[types.FaceKey]*faceOwner, 2*m.numElements)

	for elemID := 0; elemID < m.numElements; elemID++ {
		// Initialize to -1 (boundary)
		m.eToE[elemID] = [4]int{NoNeighbour, NoNeighbour, NoNeighbour, NoNeighbour}
		m.eToF[elemID] = [4]int{NoNeighbour, NoNeighbour, NoNeighbour, NoNeighbour}

		for localFaceID := 0; localFaceID < 4; localFaceID++ {
			key := types.NewTetFaceKey(m.eToV[elemID], localFaceID)
			owner, exists := faceMap[key]
			if !exists {
				faceMap[key] = &faceOwner{Element: elemID, LocalID: localFaceID}
				continue
			}
			// A repeated node gives an element two faces with the same key
			if owner.Matched || owner.Element == elemID {
				continue
			}
			owner.Matched = true
			m.eToE[elemID][localFaceID] = owner.Element
			m.eToF[elemID][localFaceID] = owner.LocalID
			m.eToE[owner.Element][owner.LocalID] = elemID
			m.eToF[owner.Element][owner.LocalID] = localFaceID
		}
	}

	for elemID, neighbours := range m.eToE {
		for _, nbr := range neighbours {
			if nbr == NoNeighbour {
				m.isBoundary[elemID] = true
				break
			}
		}
	}
}

// NeighbourFace returns the local face index, within the neighbour, of face f of element elt.
// It is NoNeighbour when the face is on the boundary.
func (m *Mesh) NeighbourFace(elt, f int) int {
	return m.eToF[elt][f]
}

// NumBoundaryFaces counts the faces without a neighbour
func (m *Mesh) NumBoundaryFaces() (count int) {
	for _, neighbours := range m.eToE {
		for _, nbr := range neighbours {
			if nbr == NoNeighbour {
				count++
			}
		}
	}
	return
}
