package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/tetmesh/mesh"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	return ReadMeshFileWithConfig(filename, nil)
}

func ReadMeshFileWithConfig(filename string, config *mesh.MeshConfig) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadGmsh4WithConfig(filename, config)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}
