package types

/*
FaceKey stores the three vertices of a triangular face in a way that can be compared.
A face between vertices [7], [2] and [5] will always be stored as [2,5,7], in the ascending order of the index values,
so the two elements sharing a face produce the same key regardless of their local vertex ordering.
*/
type FaceKey [3]int

func NewFaceKey(verts [3]int) (key FaceKey) {
	a, b, c := verts[0], verts[1], verts[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	key = FaceKey{a, b, c}
	return
}

func (fk FaceKey) GetVertices() (verts [3]int) {
	return [3]int(fk)
}

// TetFaceVertices returns the vertices of face f of a tetrahedron, the face opposite vertex f.
// The remaining vertices keep their relative order.
func TetFaceVertices(verts [4]int, f int) (face [3]int) {
	var j int
	for i, v := range verts {
		if i == f {
			continue
		}
		face[j] = v
		j++
	}
	return
}

// NewTetFaceKey returns the key of face f of a tetrahedron
func NewTetFaceKey(verts [4]int, f int) FaceKey {
	return NewFaceKey(TetFaceVertices(verts, f))
}
