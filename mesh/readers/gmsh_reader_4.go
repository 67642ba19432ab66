package readers

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/notargets/tetmesh/mesh"
)

// File holds the resolved contents of a msh 4.1 file: elements carry the medium tag of
// their volume and there is one material per 3-D physical group.
type File struct {
	Nodes     []mesh.Node
	Elements  []mesh.Tetrahedron
	Materials []mesh.Material
}

// ReadGmsh4 reads a Gmsh MSH file format version 4.1 and builds its mesh
func ReadGmsh4(filename string) (*mesh.Mesh, error) {
	return ReadGmsh4WithConfig(filename, nil)
}

// ReadGmsh4WithConfig reads a Gmsh 4.1 file using the supplied mesh configuration
func ReadGmsh4WithConfig(filename string, config *mesh.MeshConfig) (*mesh.Mesh, error) {
	if config == nil {
		config = mesh.DefaultMeshConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if config.Verbose {
		log.Printf("Reading msh 4.1 file %s", filename)
	}
	return ParseGmsh4WithConfig(file, config)
}

// ParseGmsh4 parses a msh 4.1 stream and builds its mesh
func ParseGmsh4(r io.Reader) (*mesh.Mesh, error) {
	return ParseGmsh4WithConfig(r, nil)
}

// ParseGmsh4WithConfig parses a msh 4.1 stream, a nil config selects the defaults
func ParseGmsh4WithConfig(r io.Reader, config *mesh.MeshConfig) (*mesh.Mesh, error) {
	if config == nil {
		config = mesh.DefaultMeshConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		log.Printf("Parsed %d nodes, %d tetrahedra and %d materials",
			len(f.Nodes), len(f.Elements), len(f.Materials))
	}
	return f.Mesh(config)
}

// Mesh builds the mesh of a parsed file
func (f *File) Mesh(config *mesh.MeshConfig) (*mesh.Mesh, error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	m, err := mesh.NewMeshWithConfig(f.Elements, f.Nodes, f.Materials, config)
	if err != nil {
		// Tags are unique after parsing, what remains are dangling node references
		return nil, wrapParseError("", "msh 4.1 parsing failed",
			&ParseError{Section: "$Elements", Kind: ErrReference, Msg: err.Error()})
	}
	return m, nil
}

// Parse reads a complete msh 4.1 stream and cross-links its sections. $MeshFormat comes
// first, the four required sections follow in any order and each appears once. Other
// sections are skipped.
func Parse(r io.Reader) (*File, error) {
	f, err := parse(newLineReader(r))
	if err != nil {
		return nil, wrapParseError("", "msh 4.1 parsing failed", err)
	}
	return f, nil
}

func parse(lr *lineReader) (*File, error) {
	var (
		groups  []PhysicalGroup
		volumes []MeshVolume
		nodes   []mesh.Node
		tets    []RawTetrahedron
		seen    = make(map[string]bool)
		err     error
	)
	if err = parseVersion(lr); err != nil {
		return nil, err
	}

	for {
		line, ok := lr.NextNonBlank()
		if !ok {
			break
		}
		switch line {
		case "$PhysicalNames", "$Entities", "$Nodes", "$Elements":
			if seen[line] {
				return nil, newParseError(lr, line, ErrStructure, "found more than one %s section", line)
			}
			seen[line] = true
		}
		switch {
		case line == "$PhysicalNames":
			groups, err = parseGroups(lr)
		case line == "$Entities":
			volumes, err = parseEntities(lr)
		case line == "$Nodes":
			nodes, err = parseNodes(lr)
		case line == "$Elements":
			tets, err = parseElements(lr)
		case strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End"):
			// $Periodic, $NodeData, $PartitionedEntities and the like
			err = skipSection(lr, line)
		default:
			err = newParseError(lr, "", ErrStructure, "unexpected line outside of a section: %s", line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err = lr.Err(); err != nil {
		return nil, &ParseError{Kind: ErrStructure, Line: lr.Line(), Msg: "failed to read msh input", Err: err}
	}
	for _, section := range []string{"$PhysicalNames", "$Entities", "$Nodes", "$Elements"} {
		if !seen[section] {
			return nil, newParseError(lr, section, ErrStructure, "missing %s section", section)
		}
	}
	return link(groups, volumes, nodes, tets)
}

// link resolves each tetrahedron's volume to the medium tag of its physical group
func link(groups []PhysicalGroup, volumes []MeshVolume, nodes []mesh.Node,
	tets []RawTetrahedron) (*File, error) {
	knownGroups := make(map[int]bool, len(groups))
	for _, g := range groups {
		knownGroups[g.Tag] = true
	}
	volumeGroup := make(map[int]int, len(volumes))
	for _, v := range volumes {
		if !knownGroups[v.Group] {
			return nil, &ParseError{Section: "$Entities", Kind: ErrReference,
				Msg: fmt.Sprintf("volume %d had unknown physical group tag %d", v.Tag, v.Group)}
		}
		volumeGroup[v.Tag] = v.Group
	}

	f := &File{
		Nodes:     nodes,
		Elements:  make([]mesh.Tetrahedron, len(tets)),
		Materials: make([]mesh.Material, len(groups)),
	}
	for i, t := range tets {
		group, ok := volumeGroup[t.Volume]
		if !ok {
			return nil, &ParseError{Section: "$Elements", Kind: ErrReference,
				Msg: fmt.Sprintf("tetrahedron %d had unknown volume tag %d", t.Tag, t.Volume)}
		}
		f.Elements[i] = mesh.Tetrahedron{Tag: t.Tag, A: t.A, B: t.B, C: t.C, D: t.D, MediumTag: group}
	}
	for i, g := range groups {
		f.Materials[i] = mesh.Material{Tag: g.Tag, MediumName: g.Name}
	}
	return f, nil
}
