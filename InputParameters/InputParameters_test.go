package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/tetmesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeshFile = filepath.Join("..", "mesh", "readers", "testdata", "five-tet.msh")

func TestMeshParameters_Parse(t *testing.T) {
	mp := NewMeshParameters()
	err := mp.Parse([]byte(`
Title: "Five tetrahedra"
MeshFile: five-tet.msh
Tolerance: 1.e-8
GridResolution: 4
Verbose: true
`))
	require.NoError(t, err)
	assert.Equal(t, &MeshParameters{
		Title:          "Five tetrahedra",
		MeshFile:       "five-tet.msh",
		Tolerance:      1.e-8,
		GridResolution: 4,
		Verbose:        true,
	}, mp)
	assert.Equal(t, &mesh.MeshConfig{Tolerance: 1.e-8, GridResolution: 4, Verbose: true}, mp.MeshConfig())
	mp.Print()
}

func TestMeshParameters_Defaults(t *testing.T) {
	mp := NewMeshParameters()
	require.NoError(t, mp.Parse([]byte("MeshFile: a.msh\n")))
	assert.Equal(t, mesh.DefaultMeshConfig(), mp.MeshConfig())
}

func TestMeshParameters_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"Missing Mesh File", "Title: none\n", "MeshFile is required"},
		{"Negative Tolerance", "MeshFile: a.msh\nTolerance: -1\n", "mesh tolerance must be non-negative, got -1"},
		{"Negative Resolution", "MeshFile: a.msh\nGridResolution: -3\n",
			"mesh grid resolution must be non-negative, got -3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewMeshParameters().Parse([]byte(tc.input))
			assert.EqualError(t, err, tc.errMsg)
		})
	}

	err := NewMeshParameters().Parse([]byte("MeshFile: [unterminated\n"))
	assert.Error(t, err)
}

func TestReadMeshParameters(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(testMeshFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "five.msh"), data, 0644))

	paramFile := filepath.Join(dir, "mesh.yaml")
	require.NoError(t, os.WriteFile(paramFile, []byte("Title: test\nMeshFile: five.msh\nGridResolution: 2\n"), 0644))

	mp, err := ReadMeshParameters(paramFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "five.msh"), mp.MeshFile)
	assert.Equal(t, mesh.DefaultTolerance, mp.Tolerance)

	m, err := mp.ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumElements())
	assert.Equal(t, 2, m.Config().GridResolution)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("Tolerance: 1\n"), 0644))
	_, err = ReadMeshParameters(bad)
	assert.EqualError(t, err, "reading "+bad+": MeshFile is required")

	_, err = ReadMeshParameters(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMeshParameters_ReadMeshErrors(t *testing.T) {
	mp := NewMeshParameters()
	mp.MeshFile = "mesh.su2"
	_, err := mp.ReadMesh()
	assert.EqualError(t, err, "unsupported mesh format: .su2")

	mp.MeshFile = testMeshFile
	m, err := mp.ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, 8, m.NumNodes())
}
