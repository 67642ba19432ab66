package readers

import (
	"math"
	"strconv"
	"strings"

	"github.com/notargets/tetmesh/mesh"
)

const (
	// Gmsh element type code of a 4-node tetrahedron
	gmshTet4 = 4
	// Node and element tags must fit a signed 32 bit integer
	maxTag = math.MaxInt32
	// Declared counts are not trusted beyond this for pre-allocation
	maxPrealloc = 1 << 16
)

// PhysicalGroup is a named volume classification from $PhysicalNames
type PhysicalGroup struct {
	Tag  int
	Name string
}

// MeshVolume is a 3-D entity from $Entities with its single physical group
type MeshVolume struct {
	Tag   int
	Group int
}

// RawTetrahedron is an element record before its volume is resolved to a medium
type RawTetrahedron struct {
	Tag        int
	A, B, C, D int
	Volume     int
}

func parseInts(fields []string) ([]int, bool) {
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func parseFloats(fields []string) ([]float64, bool) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// parseVersion reads the $MeshFormat section and accepts ascii version 4.1 only
func parseVersion(lr *lineReader) error {
	const section = "$MeshFormat"
	line, ok := lr.NextNonBlank()
	if !ok {
		return newParseError(lr, section, ErrStructure, "unexpected end of input")
	}
	if line != "$MeshFormat" {
		return newParseError(lr, section, ErrStructure, "expected $MeshFormat, got %s", line)
	}

	line, _ = lr.Next()
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return newParseError(lr, section, ErrStructure, "failed to parse msh version")
	}
	flags, ok := parseInts(fields[1:])
	if !ok {
		return newParseError(lr, section, ErrStructure, "failed to parse msh version")
	}
	if version, err := strconv.ParseFloat(fields[0], 64); err != nil || version != 4.1 {
		return newParseError(lr, section, ErrValue,
			"unsupported msh version `%s`, the only supported version is 4.1", fields[0])
	}
	switch fileType, dataSize := flags[0], flags[1]; {
	case fileType == 1:
		return newParseError(lr, section, ErrValue,
			"binary msh files are unsupported, please convert this file to ascii and try again")
	case fileType != 0:
		return newParseError(lr, section, ErrValue, "unknown msh file type %d", fileType)
	case dataSize != 8:
		return newParseError(lr, section, ErrValue, "msh file size_t must be 8")
	}

	line, _ = lr.Next()
	if line != "$EndMeshFormat" {
		return newParseError(lr, section, ErrStructure, "expected $EndMeshFormat, got `%s`", line)
	}
	return nil
}

// parseGroups reads the body of $PhysicalNames, the opening tag has been consumed.
// Only 3-D groups are returned, in file order.
func parseGroups(lr *lineReader) (groups []PhysicalGroup, err error) {
	const section = "$PhysicalNames"
	line, ok := lr.Next()
	if !ok {
		return nil, newParseError(lr, section, ErrStructure,
			"unexpected end of file, expected $EndPhysicalNames")
	}
	numGroups, convErr := strconv.Atoi(line)
	if convErr != nil || numGroups < 0 {
		return nil, newParseError(lr, section, ErrStructure,
			"$PhysicalNames section parsing failed, missing metadata")
	}

	seen := make(map[int]bool)
	for i := 0; i < numGroups; i++ {
		if line, ok = lr.Next(); !ok {
			return nil, newParseError(lr, section, ErrStructure,
				"unexpected end of file, expected $EndPhysicalNames")
		}
		dim, tag, name, recErr := parseGroupRecord(lr, line)
		if recErr != nil {
			return nil, wrapParseError(section, "$PhysicalNames section parsing failed", recErr)
		}
		if dim != 3 {
			continue
		}
		if seen[tag] {
			return nil, newParseError(lr, section, ErrDuplicate,
				"$PhysicalNames section parsing failed, found duplicate tag %d", tag)
		}
		seen[tag] = true
		groups = append(groups, PhysicalGroup{Tag: tag, Name: name})
	}

	if line, ok = lr.Next(); !ok {
		return nil, newParseError(lr, section, ErrStructure,
			"unexpected end of file, expected $EndPhysicalNames")
	}
	if line != "$EndPhysicalNames" {
		return nil, newParseError(lr, section, ErrStructure,
			"$PhysicalNames section parsing failed, expected $EndPhysicalNames, got `%s`", line)
	}
	return groups, nil
}

// parseGroupRecord decodes `dim tag "name"`, the name may hold spaces
func parseGroupRecord(lr *lineReader, line string) (dim, tag int, name string, err error) {
	const section = "$PhysicalNames"
	dimField, rest := cutField(line)
	tagField, rest := cutField(rest)
	dim, dimErr := strconv.Atoi(dimField)
	tag, tagErr := strconv.Atoi(tagField)
	if dimErr != nil || tagErr != nil || rest == "" {
		return 0, 0, "", newParseError(lr, section, ErrStructure, "physical group parsing failed: %s", line)
	}
	if rest[0] != '"' {
		return 0, 0, "", newParseError(lr, section, ErrStructure,
			"physical group names must be quoted: %s", line)
	}
	closing := strings.IndexByte(rest[1:], '"')
	if closing < 0 {
		return 0, 0, "", newParseError(lr, section, ErrStructure,
			"couldn't find closing quote for physical group: %s", line)
	}
	if name = rest[1 : 1+closing]; name == "" {
		return 0, 0, "", newParseError(lr, section, ErrValue, "empty physical group name: %s", line)
	}
	return dim, tag, name, nil
}

// parseEntities reads the body of $Entities, the opening tag has been consumed.
// Point, curve and surface records are skipped, volumes are returned in file order.
func parseEntities(lr *lineReader) (volumes []MeshVolume, err error) {
	const (
		section = "$Entities"
		prefix  = "$Entities section parsing failed, "
	)
	line, ok := lr.Next()
	if !ok {
		return nil, newParseError(lr, section, ErrStructure, prefix+"missing metadata")
	}
	counts, ok := parseInts(strings.Fields(line))
	if !ok || len(counts) != 4 {
		return nil, newParseError(lr, section, ErrStructure, prefix+"missing metadata")
	}
	numLower := counts[0] + counts[1] + counts[2]
	numVolumes := counts[3]
	if numVolumes <= 0 {
		return nil, newParseError(lr, section, ErrStructure, prefix+"no volumes found")
	}

	for i := 0; i < numLower; i++ {
		if line, ok = lr.Next(); !ok {
			return nil, newParseError(lr, section, ErrStructure, prefix+"unexpected end of input")
		}
		if line == "$EndEntities" {
			return nil, newParseError(lr, section, ErrStructure,
				prefix+"expected %d points, curves and surfaces but got %d", numLower, i)
		}
	}

	seen := make(map[int]bool)
	for i := 0; i < numVolumes; i++ {
		if line, ok = lr.Next(); !ok {
			return nil, newParseError(lr, section, ErrStructure, prefix+"unexpected end of input")
		}
		if line == "$EndEntities" {
			return nil, newParseError(lr, section, ErrStructure,
				prefix+"expected %d volumes but got %d", numVolumes, i)
		}
		vol, err := parseVolume(lr, line)
		if err != nil {
			return nil, err
		}
		if seen[vol.Tag] {
			return nil, newParseError(lr, section, ErrDuplicate,
				prefix+"found duplicate volume tag %d", vol.Tag)
		}
		seen[vol.Tag] = true
		volumes = append(volumes, vol)
	}

	if line, ok = lr.Next(); !ok || line != "$EndEntities" {
		return nil, newParseError(lr, section, ErrStructure, prefix+"expected $EndEntities")
	}
	return volumes, nil
}

// parseVolume decodes "tag minX minY minZ maxX maxY maxZ numGroups groups... [numSurfaces surfaces...]"
func parseVolume(lr *lineReader, line string) (vol MeshVolume, err error) {
	const (
		section = "$Entities"
		prefix  = "$Entities section parsing failed, "
	)
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return vol, newParseError(lr, section, ErrStructure, prefix+"bad volume record: %s", line)
	}
	ints, okInts := parseInts([]string{fields[0], fields[7]})
	_, okBox := parseFloats(fields[1:7])
	if !okInts || !okBox {
		return vol, newParseError(lr, section, ErrStructure, prefix+"bad volume record: %s", line)
	}
	vol.Tag = ints[0]
	switch numGroups := ints[1]; {
	case numGroups < 1:
		return vol, newParseError(lr, section, ErrValue,
			prefix+"volume %d was not assigned a physical group", vol.Tag)
	case numGroups > 1:
		return vol, newParseError(lr, section, ErrValue,
			prefix+"volume %d has more than one physical group", vol.Tag)
	}
	if len(fields) < 9 {
		return vol, newParseError(lr, section, ErrStructure, prefix+"bad volume record: %s", line)
	}
	if vol.Group, err = strconv.Atoi(fields[8]); err != nil {
		return vol, newParseError(lr, section, ErrStructure, prefix+"bad volume record: %s", line)
	}
	// Bounding surfaces are not used
	return vol, nil
}

// parseNodeBloc reads one entity block of $Nodes
func parseNodeBloc(lr *lineReader) (nodes []mesh.Node, err error) {
	const section = "$Nodes"
	line, ok := lr.Next()
	if !ok {
		return nil, newParseError(lr, section, ErrStructure, "Node bloc parsing failed")
	}
	meta, ok := parseInts(strings.Fields(line))
	if !ok || len(meta) != 4 || meta[3] < 0 {
		return nil, newParseError(lr, section, ErrStructure, "Node bloc parsing failed")
	}
	entityDim, entityTag, numNodes := meta[0], meta[1], meta[3]
	if entityDim < 0 || entityDim > 3 {
		return nil, newParseError(lr, section, ErrValue,
			"Node bloc parsing failed for entity %d, got dimension %d, expected 0, 1, 2, or 3",
			entityTag, entityDim)
	}

	// Tags first, then one coordinate line per tag. Parametric coordinates trail x y z.
	tags := make([]int, 0, min(numNodes, maxPrealloc))
	for i := 0; i < numNodes; i++ {
		line, ok = lr.Next()
		tagField, _ := cutField(line)
		tag, convErr := strconv.Atoi(tagField)
		if !ok || convErr != nil {
			return nil, newParseError(lr, section, ErrStructure,
				"Node bloc parsing failed during node tag section of entity %d", entityTag)
		}
		tags = append(tags, tag)
	}
	nodes = make([]mesh.Node, len(tags))
	for i, tag := range tags {
		line, ok = lr.Next()
		fields := strings.Fields(line)
		if !ok || len(fields) < 3 {
			return nil, newParseError(lr, section, ErrStructure,
				"Node bloc parsing failed during node coordinate section of entity %d", entityTag)
		}
		xyz, okXYZ := parseFloats(fields[:3])
		if !okXYZ {
			return nil, newParseError(lr, section, ErrStructure,
				"Node bloc parsing failed during node coordinate section of entity %d", entityTag)
		}
		nodes[i] = mesh.Node{Tag: tag, X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}
	return nodes, nil
}

// parseNodes reads the body of $Nodes, the opening tag has been consumed
func parseNodes(lr *lineReader) (nodes []mesh.Node, err error) {
	const (
		section = "$Nodes"
		prefix  = "$Nodes section parsing failed"
	)
	line, ok := lr.Next()
	if !ok {
		return nil, newParseError(lr, section, ErrStructure, prefix+", missing metadata")
	}
	fields := strings.Fields(line)
	meta, ok := parseInts(fields)
	if !ok || len(meta) != 4 || meta[0] < 0 || meta[1] < 0 {
		return nil, newParseError(lr, section, ErrStructure, prefix+", missing metadata")
	}
	numBlocs, numNodes, maxNodeTag := meta[0], meta[1], meta[3]
	if maxNodeTag > maxTag {
		return nil, newParseError(lr, section, ErrValue,
			prefix+", max node tag is too large (%d), limit is %d", maxNodeTag, maxTag)
	}

	nodes = make([]mesh.Node, 0, min(numNodes, maxPrealloc))
	seen := make(map[int]bool, min(numNodes, maxPrealloc))
	for b := 0; b < numBlocs; b++ {
		bloc, err := parseNodeBloc(lr)
		if err != nil {
			return nil, wrapParseError(section, prefix, err)
		}
		for _, n := range bloc {
			if seen[n.Tag] {
				return nil, newParseError(lr, section, ErrDuplicate,
					prefix+", found duplicate node tag %d", n.Tag)
			}
			seen[n.Tag] = true
		}
		nodes = append(nodes, bloc...)
	}
	if len(nodes) != numNodes {
		return nil, newParseError(lr, section, ErrStructure,
			prefix+", expected %d nodes but read %d", numNodes, len(nodes))
	}

	if line, ok = lr.Next(); !ok || line != "$EndNodes" {
		return nil, newParseError(lr, section, ErrStructure, prefix+", expected $EndNodes")
	}
	return nodes, nil
}

// parseElementBloc reads one entity block of $Elements. Blocks of points, lines and
// surfaces are skipped, numRead counts every element record consumed.
func parseElementBloc(lr *lineReader) (tets []RawTetrahedron, numRead int, err error) {
	const section = "$Elements"
	line, ok := lr.Next()
	if !ok {
		return nil, 0, newParseError(lr, section, ErrStructure, "Element bloc parsing failed")
	}
	meta, ok := parseInts(strings.Fields(line))
	if !ok || len(meta) != 4 || meta[3] < 0 {
		return nil, 0, newParseError(lr, section, ErrStructure, "Element bloc parsing failed")
	}
	entityDim, entityTag, elementType, numElements := meta[0], meta[1], meta[2], meta[3]

	switch {
	case entityDim < 0 || entityDim > 3:
		return nil, 0, newParseError(lr, section, ErrValue,
			"Element bloc parsing failed for entity %d, got dimension %d, expected 0, 1, 2, or 3",
			entityTag, entityDim)
	case entityDim < 3:
		for i := 0; i < numElements; i++ {
			if _, ok = lr.Next(); !ok {
				return nil, 0, newParseError(lr, section, ErrStructure,
					"Element bloc parsing failed for entity %d, unexpected end of input", entityTag)
			}
		}
		return nil, numElements, nil
	case elementType != gmshTet4:
		return nil, 0, newParseError(lr, section, ErrValue,
			"Element bloc parsing failed for entity %d, got non-tetrahedral mesh element type %d",
			entityTag, elementType)
	}

	tets = make([]RawTetrahedron, 0, min(numElements, maxPrealloc))
	for i := 0; i < numElements; i++ {
		line, ok = lr.Next()
		vals, okVals := parseInts(strings.Fields(line))
		if !ok || !okVals || len(vals) != 5 {
			return nil, 0, newParseError(lr, section, ErrStructure,
				"Element bloc parsing failed for entity %d", entityTag)
		}
		tets = append(tets, RawTetrahedron{Tag: vals[0], A: vals[1], B: vals[2], C: vals[3], D: vals[4],
			Volume: entityTag})
	}
	return tets, numElements, nil
}

// parseElements reads the body of $Elements, the opening tag has been consumed
func parseElements(lr *lineReader) (tets []RawTetrahedron, err error) {
	const (
		section = "$Elements"
		prefix  = "$Elements section parsing failed"
	)
	line, ok := lr.Next()
	if !ok {
		return nil, newParseError(lr, section, ErrStructure, prefix+", missing metadata")
	}
	meta, ok := parseInts(strings.Fields(line))
	if !ok || len(meta) != 4 || meta[0] < 0 || meta[1] < 0 {
		return nil, newParseError(lr, section, ErrStructure, prefix+", missing metadata")
	}
	numBlocs, numElements, maxElementTag := meta[0], meta[1], meta[3]
	if maxElementTag > maxTag {
		return nil, newParseError(lr, section, ErrValue,
			prefix+", max element tag is too large (%d), limit is %d", maxElementTag, maxTag)
	}

	var (
		numRead int
		seen    = make(map[int]bool)
	)
	for b := 0; b < numBlocs; b++ {
		bloc, n, err := parseElementBloc(lr)
		if err != nil {
			return nil, wrapParseError(section, prefix, err)
		}
		for _, tet := range bloc {
			if seen[tet.Tag] {
				return nil, newParseError(lr, section, ErrDuplicate,
					prefix+", found duplicate tetrahedron tag %d", tet.Tag)
			}
			seen[tet.Tag] = true
		}
		tets = append(tets, bloc...)
		numRead += n
	}
	if len(tets) == 0 {
		return nil, newParseError(lr, section, ErrStructure, prefix+", no tetrahedral elements were read")
	}
	if numRead != numElements {
		return nil, newParseError(lr, section, ErrStructure,
			prefix+", expected %d elements but read %d", numElements, numRead)
	}

	if line, ok = lr.Next(); !ok || line != "$EndElements" {
		return nil, newParseError(lr, section, ErrStructure, prefix+", expected $EndElements")
	}
	return tets, nil
}
