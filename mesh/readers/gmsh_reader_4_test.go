package readers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/notargets/tetmesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempMshFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.msh")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

const (
	testHeader = `$MeshFormat
4.1 0 8
$EndMeshFormat
`
	testEntities = `$Entities
0 0 0 2
1 0 0 0 1.0 1.0 1.0 1 1 6 1 2 3 4 5 6
2 0 0 0 1.0 1.0 1.0 1 2 6 1 2 3 4 5 6
$EndEntities
`
	testGroups = `$PhysicalNames
2
3 1 "Steel"
3 2 "Water"
$EndPhysicalNames
`
	testNodes = `$Nodes
2 5 1 5
1 1 0 2
1
2
0 0 0
0 1 0
1 2 0 3
3
4
5
1 0 0
1 1 0
1 1 1
$EndNodes
`
	testElements = `$Elements
2 4 1 4
3 1 4 2
1 1 2 3 4
2 1 2 3 5
3 2 4 2
3 1 2 4 5
4 2 3 4 5
$EndElements
`
)

func minimalFile() *File {
	return &File{
		Nodes: []mesh.Node{
			{Tag: 1, X: 0, Y: 0, Z: 0},
			{Tag: 2, X: 0, Y: 1, Z: 0},
			{Tag: 3, X: 1, Y: 0, Z: 0},
			{Tag: 4, X: 1, Y: 1, Z: 0},
			{Tag: 5, X: 1, Y: 1, Z: 1},
		},
		Elements: []mesh.Tetrahedron{
			{Tag: 1, A: 1, B: 2, C: 3, D: 4, MediumTag: 1},
			{Tag: 2, A: 1, B: 2, C: 3, D: 5, MediumTag: 1},
			{Tag: 3, A: 1, B: 2, C: 4, D: 5, MediumTag: 2},
			{Tag: 4, A: 2, B: 3, C: 4, D: 5, MediumTag: 2},
		},
		Materials: []mesh.Material{
			{Tag: 1, MediumName: "Steel"},
			{Tag: 2, MediumName: "Water"},
		},
	}
}

// TestParseGmsh4Minimal tests the smallest complete file
func TestParseGmsh4Minimal(t *testing.T) {
	f, err := Parse(strings.NewReader(testHeader + testEntities + testGroups + testNodes + testElements))
	require.NoError(t, err)
	assert.Equal(t, minimalFile(), f)

	m, err := ParseGmsh4(strings.NewReader(testHeader + testEntities + testGroups + testNodes + testElements))
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumNodes())
	assert.Equal(t, 4, m.NumElements())
	assert.Equal(t, []int{1, 1, 2, 2}, []int{m.Medium(0), m.Medium(1), m.Medium(2), m.Medium(3)})
	// All four nodes of the first element lie in the plane z = 0
	assert.True(t, m.IsDegenerate(0))
}

// TestParseGmsh4SectionOrder tests that sections after $MeshFormat may come in any order
func TestParseGmsh4SectionOrder(t *testing.T) {
	orders := [][]string{
		{testNodes, testElements, testEntities, testGroups},
		{testGroups, testElements, testNodes, testEntities},
		{testElements, testGroups, testEntities, testNodes},
	}
	for i, order := range orders {
		f, err := Parse(strings.NewReader(testHeader + strings.Join(order, "")))
		require.NoError(t, err, "order %d", i)
		assert.Equal(t, minimalFile(), f, "order %d", i)
	}
}

// TestParseGmsh4SkipsUnknownSections tests that blank lines and unsupported sections are ignored
func TestParseGmsh4SkipsUnknownSections(t *testing.T) {
	content := "\n" + testHeader + "\n" + testEntities +
		`$Periodic
1
2 1 3
$EndPeriodic

` + testGroups + testNodes + `$NodeData
1
"density"
1
0
3
0
1
1
1 7.8
$EndNodeData
` + testElements + `$PartitionedEntities
0
$EndPartitionedEntities
`
	f, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, minimalFile(), f)
}

func TestParseGmsh4WindowsLineEndings(t *testing.T) {
	content := strings.ReplaceAll(NewGmsh4TestBuilder().BuildFiveTetTest(), "\n", "\r\n")
	f, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Len(t, f.Elements, 5)
}

// TestParseGmsh4ErrorHandling tests errors raised while assembling the file
func TestParseGmsh4ErrorHandling(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errMsg  string
		kind    error
	}{
		{
			name: "Unknown Physical Group",
			content: testHeader + testNodes + testElements + `$Entities
0 0 0 1
1 0.0 0.0 0.0 1.0 1.0 1.0 1 100
$EndEntities
$PhysicalNames
1
3 1 "Steel"
$EndPhysicalNames
`,
			errMsg: "msh 4.1 parsing failed\nvolume 1 had unknown physical group tag 100",
			kind:   ErrReference,
		},
		{
			name: "Unknown Volume",
			content: testHeader + testNodes + testGroups + `$Entities
0 0 0 1
1 0.0 0.0 0.0 1.0 1.0 1.0 1 1
$EndEntities
$Elements
1 1 1 1
3 100 4 1
1 1 2 3 4
$EndElements
`,
			errMsg: "msh 4.1 parsing failed\ntetrahedron 1 had unknown volume tag 100",
			kind:   ErrReference,
		},
		{
			name: "Section Error Bubbles Up",
			content: testHeader + `$PhysicalNames
$EndPhysicalNames
`,
			errMsg: "msh 4.1 parsing failed\n$PhysicalNames section parsing failed, missing metadata",
			kind:   ErrStructure,
		},
		{
			name:    "Nested Section Error",
			content: testHeader + "$Nodes\n1 1 1 1\n1\n",
			errMsg:  "msh 4.1 parsing failed\n$Nodes section parsing failed\nNode bloc parsing failed",
			kind:    ErrStructure,
		},
		{
			name:    "Group Record Error",
			content: testHeader + "$PhysicalNames\n1\n3 1 Steel\n$EndPhysicalNames\n",
			errMsg:  "msh 4.1 parsing failed\n$PhysicalNames section parsing failed\nphysical group names must be quoted: 3 1 Steel",
			kind:    ErrStructure,
		},
		{
			name:    "Empty File",
			content: "",
			errMsg:  "msh 4.1 parsing failed\nunexpected end of input",
			kind:    ErrStructure,
		},
		{
			name:    "Binary File",
			content: "$MeshFormat\n4.1 1 8\n$EndMeshFormat\n",
			errMsg:  "msh 4.1 parsing failed\nbinary msh files are unsupported, please convert this file to ascii and try again",
			kind:    ErrValue,
		},
		{
			name:    "Missing Elements",
			content: testHeader + testEntities + testGroups + testNodes,
			errMsg:  "msh 4.1 parsing failed\nmissing $Elements section",
			kind:    ErrStructure,
		},
		{
			name:    "Repeated Section",
			content: testHeader + testEntities + testGroups + testNodes + testNodes + testElements,
			errMsg:  "msh 4.1 parsing failed\nfound more than one $Nodes section",
			kind:    ErrStructure,
		},
		{
			name:    "Stray Line",
			content: testHeader + "garbage\n" + testEntities + testGroups + testNodes + testElements,
			errMsg:  "msh 4.1 parsing failed\nunexpected line outside of a section: garbage",
			kind:    ErrStructure,
		},
		{
			name:    "Unterminated Unknown Section",
			content: testHeader + testEntities + testGroups + testNodes + testElements + "$Periodic\n1\n",
			errMsg:  "msh 4.1 parsing failed\nunexpected end of file, expected $EndPeriodic",
			kind:    ErrStructure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tc.content))
			assert.Nil(t, f)
			assert.EqualError(t, err, tc.errMsg)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestParseGmsh4ReadError(t *testing.T) {
	diskErr := errors.New("disk failure")
	r := io.MultiReader(strings.NewReader(testHeader+"$Nodes\n"), iotest.ErrReader(diskErr))
	f, err := Parse(r)
	assert.Nil(t, f)
	assert.EqualError(t, err, "msh 4.1 parsing failed\n$Nodes section parsing failed, missing metadata\ndisk failure")
	assert.ErrorIs(t, err, diskErr)
	assert.ErrorIs(t, err, ErrStructure)
}

// TestParseGmsh4UnknownNode tests that dangling node references are caught when the mesh is built
func TestParseGmsh4UnknownNode(t *testing.T) {
	elements := `$Elements
1 1 1 1
3 1 4 1
1 1 2 3 9
$EndElements
`
	content := testHeader + testEntities + testGroups + testNodes + elements
	_, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	m, err := ParseGmsh4(strings.NewReader(content))
	assert.Nil(t, m)
	assert.EqualError(t, err, "msh 4.1 parsing failed\nno mesh node with tag: 9")
	assert.ErrorIs(t, err, ErrReference)
}

// TestReadGmsh4UsingStandardMeshes tests reading files rendered from the standard test meshes
func TestReadGmsh4UsingStandardMeshes(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()
	testCases := []struct {
		name string
		cm   mesh.CompleteMesh
	}{
		{"TwoTet", tm.TwoTet},
		{"FiveTet", tm.FiveTet},
		{"Cube", mesh.CreateCubeMesh(2)},
	}

	builder := NewGmsh4TestBuilder()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			content := builder.BuildFromCompleteMesh(&tc.cm)
			f, err := Parse(strings.NewReader(content))
			require.NoError(t, err)
			assert.Equal(t, tc.cm.Nodes, f.Nodes)
			assert.Equal(t, tc.cm.Elements, f.Elements)

			tmpFile := createTempMshFile(t, content)
			m, err := ReadGmsh4(tmpFile)
			require.NoError(t, err)
			want, err := tc.cm.Build()
			require.NoError(t, err)
			assert.Equal(t, want.Neighbours(), m.Neighbours())
			assert.Equal(t, want.IsBoundary(), m.IsBoundary())
		})
	}

	t.Run("Unnamed Material", func(t *testing.T) {
		f, err := Parse(strings.NewReader(builder.BuildSingleTetTest()))
		require.NoError(t, err)
		assert.Equal(t, []mesh.Material{{Tag: 1, MediumName: "Medium 1"}}, f.Materials)
	})
}

// TestReadGmsh4TestData reads the five tetrahedron file with surface elements and node data
func TestReadGmsh4TestData(t *testing.T) {
	m, err := ReadGmsh4(filepath.Join("testdata", "five-tet.msh"))
	require.NoError(t, err)

	fiveTet := mesh.GetStandardTestMeshes().FiveTet
	assert.Equal(t, fiveTet.Nodes, m.Nodes())
	assert.Equal(t, fiveTet.Elements, m.Elements())
	assert.Equal(t, fiveTet.Materials, m.Materials())
	assert.Equal(t, [4]int{1, 2, 3, 4}, m.Neighbours()[0])
	assert.Equal(t, []bool{false, true, true, true, true}, m.IsBoundary())
	for k := 0; k < m.NumElements(); k++ {
		assert.Equal(t, k, m.Locate(fiveTet.Centroid(k)))
	}
	name, ok := m.MaterialName(m.Medium(1))
	assert.True(t, ok)
	assert.Equal(t, "Water", name)
}

func TestReadGmsh4WithConfig(t *testing.T) {
	filename := filepath.Join("testdata", "five-tet.msh")

	m, err := ReadGmsh4WithConfig(filename, &mesh.MeshConfig{Tolerance: 1.e-6, GridResolution: 1, Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, mesh.MeshConfig{Tolerance: 1.e-6, GridResolution: 1, Verbose: true}, m.Config())

	_, err = ReadGmsh4WithConfig(filename, &mesh.MeshConfig{Tolerance: -1})
	assert.EqualError(t, err, "mesh tolerance must be non-negative, got -1")

	_, err = ReadGmsh4(filepath.Join(t.TempDir(), "missing.msh"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadMeshFile(t *testing.T) {
	m, err := ReadMeshFile(filepath.Join("testdata", "five-tet.msh"))
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumElements())

	m, err = ReadMeshFileWithConfig(filepath.Join("testdata", "five-tet.msh"), &mesh.MeshConfig{GridResolution: 2})
	require.NoError(t, err)
	assert.Equal(t, 0., m.Config().Tolerance)

	_, err = ReadMeshFile("mesh.neu")
	assert.EqualError(t, err, "unsupported mesh format: .neu")
	_, err = ReadMeshFile("mesh")
	assert.EqualError(t, err, "unsupported mesh format: ")
}

// BenchmarkParseGmsh4 benchmarks parsing and building a structured mesh
func BenchmarkParseGmsh4(b *testing.B) {
	cube := mesh.CreateCubeMesh(10)
	content := NewGmsh4TestBuilder().BuildFromCompleteMesh(&cube)
	b.SetBytes(int64(len(content)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseGmsh4(strings.NewReader(content)); err != nil {
			b.Fatal(fmt.Errorf("parse failed: %w", err))
		}
	}
}
