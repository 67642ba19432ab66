package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/notargets/tetmesh/mesh"
	"github.com/notargets/tetmesh/mesh/readers"
)

// Parameters obtained from the YAML input file. Keys are matched through the JSON
// form of the document.
type MeshParameters struct {
	Title          string  `json:"Title"`
	MeshFile       string  `json:"MeshFile"`
	Tolerance      float64 `json:"Tolerance"`      // Barycentric tolerance of point location
	GridResolution int     `json:"GridResolution"` // Search bins per axis, 0 is automatic
	Verbose        bool    `json:"Verbose"`
}

// NewMeshParameters returns parameters holding the default mesh configuration
func NewMeshParameters() *MeshParameters {
	def := mesh.DefaultMeshConfig()
	return &MeshParameters{
		Tolerance:      def.Tolerance,
		GridResolution: def.GridResolution,
		Verbose:        def.Verbose,
	}
}

// Parse overrides the parameters present in data, absent keys keep their value
func (mp *MeshParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, mp); err != nil {
		return err
	}
	return mp.Validate()
}

func (mp *MeshParameters) Validate() error {
	if mp.MeshFile == "" {
		return fmt.Errorf("MeshFile is required")
	}
	return mp.MeshConfig().Validate()
}

func (mp *MeshParameters) MeshConfig() *mesh.MeshConfig {
	return &mesh.MeshConfig{
		Tolerance:      mp.Tolerance,
		GridResolution: mp.GridResolution,
		Verbose:        mp.Verbose,
	}
}

func (mp *MeshParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%s]\t= MeshFile\n", mp.MeshFile)
	fmt.Printf("%8.3g\t\t= Tolerance\n", mp.Tolerance)
	fmt.Printf("[%d]\t\t\t\t= Grid Resolution\n", mp.GridResolution)
	fmt.Printf("[%v]\t\t\t= Verbose\n", mp.Verbose)
}

// ReadMesh reads and builds the mesh named by the parameters
func (mp *MeshParameters) ReadMesh() (*mesh.Mesh, error) {
	if err := mp.Validate(); err != nil {
		return nil, err
	}
	return readers.ReadMeshFileWithConfig(mp.MeshFile, mp.MeshConfig())
}

// ReadMeshParameters reads a YAML parameter file. A relative MeshFile is taken relative
// to the directory of the parameter file.
func ReadMeshParameters(filename string) (*MeshParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	mp := NewMeshParameters()
	if err = mp.Parse(data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if !filepath.IsAbs(mp.MeshFile) {
		mp.MeshFile = filepath.Join(filepath.Dir(filename), mp.MeshFile)
	}
	return mp, nil
}
