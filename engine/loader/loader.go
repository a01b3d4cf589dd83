// Package loader imports triangle meshes from glTF 2.0 (.gltf and .glb) files as procedural batch meshes.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/chewxy/math32"
)

// ImportedMesh is one glTF primitive converted to the accumulator's mesh layout.
type ImportedMesh struct {
	Name string
	accumulator.MeshData
}

var _ accumulator.Mesh = &ImportedMesh{}

// loader is the implementation of the Loader interface.
type loader struct {
	logger    *log.Logger
	unitScale bool
}

// Loader imports meshes from glTF files.
//
// Every triangle primitive of every mesh becomes one ImportedMesh. Primitives without indices get sequential
// indices, primitives without normals get area-weighted smooth normals. Non-triangle primitives are skipped
// with a log line.
type Loader interface {
	// Load imports every triangle primitive from a .gltf or .glb file.
	//
	// Parameters:
	//   - path: the file path; external buffers are resolved relative to it
	//
	// Returns:
	//   - []*ImportedMesh: one mesh per triangle primitive, in document order
	//   - error: a read or parse error
	Load(path string) ([]*ImportedMesh, error)

	// LoadReader imports every triangle primitive from a glTF stream. External buffer URIs are not supported.
	//
	// Parameters:
	//   - r: the glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//
	// Returns:
	//   - []*ImportedMesh: one mesh per triangle primitive, in document order
	//   - error: a read or parse error
	LoadReader(r io.Reader, isGLB bool) ([]*ImportedMesh, error)
}

var _ Loader = &loader{}

// NewLoader creates a Loader.
//
// Parameters:
//   - options: variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger: log.Default(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) Load(path string) ([]*ImportedMesh, error) {
	p, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l.extract(p)
}

func (l *loader) LoadReader(r io.Reader, isGLB bool) ([]*ImportedMesh, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	p, err := parseBytes(buf.Bytes(), isGLB, "")
	if err != nil {
		return nil, err
	}
	return l.extract(p)
}

func (l *loader) extract(p *gltfParser) ([]*ImportedMesh, error) {
	var meshes []*ImportedMesh
	for meshIndex, mesh := range p.document.Meshes {
		for primIndex := range mesh.Primitives {
			prim := &mesh.Primitives[primIndex]
			if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
				l.logger.Printf("[Loader] skipping mesh %d primitive %d: unsupported mode %d", meshIndex, primIndex, *prim.Mode)
				continue
			}

			imported, err := extractPrimitive(p, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIndex, err)
			}

			imported.Name = mesh.Name
			if imported.Name == "" {
				imported.Name = fmt.Sprintf("mesh_%d", meshIndex)
			}
			if primIndex > 0 {
				imported.Name = fmt.Sprintf("%s_prim%d", imported.Name, primIndex)
			}
			if l.unitScale {
				fitUnitCube(imported.Vertices)
			}
			meshes = append(meshes, imported)
		}
	}
	return meshes, nil
}

func extractPrimitive(p *gltfParser, prim *gltfPrimitive) (*ImportedMesh, error) {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := p.readVec3(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = p.readIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%d indices is not a whole number of triangles", len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
		}
	}

	var normals []common.Vec3
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = p.readVec3(normalAccessor); err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals) != len(positions) {
			return nil, fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
	} else {
		normals = generateNormals(positions, indices)
	}

	return &ImportedMesh{
		MeshData: accumulator.MeshData{
			Vertices: positions,
			Normal:   normals,
			Indices:  indices,
		},
	}, nil
}

// generateNormals accumulates each triangle's unnormalized face normal (area weighted) onto its vertices,
// then normalizes. Vertices on no triangle get +Y.
func generateNormals(positions []common.Vec3, indices []uint32) []common.Vec3 {
	normals := make([]common.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := positions[indices[t]], positions[indices[t+1]], positions[indices[t+2]]
		e1 := common.Vec3{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := common.Vec3{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		face := common.Vec3{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, v := range indices[t : t+3] {
			normals[v][0] += face[0]
			normals[v][1] += face[1]
			normals[v][2] += face[2]
		}
	}

	for i, n := range normals {
		l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l == 0 {
			normals[i] = common.Vec3{0, 1, 0}
			continue
		}
		normals[i] = common.Vec3{n[0] / l, n[1] / l, n[2] / l}
	}
	return normals
}

// fitUnitCube centers positions on their bounding box and scales the largest extent to 1.
func fitUnitCube(positions []common.Vec3) {
	if len(positions) == 0 {
		return
	}
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		for c := 0; c < 3; c++ {
			lo[c] = math32.Min(lo[c], p[c])
			hi[c] = math32.Max(hi[c], p[c])
		}
	}

	extent := math32.Max(hi[0]-lo[0], math32.Max(hi[1]-lo[1], hi[2]-lo[2]))
	scale := float32(1)
	if extent > 0 {
		scale = 1 / extent
	}
	for i, p := range positions {
		for c := 0; c < 3; c++ {
			positions[i][c] = (p[c] - (lo[c]+hi[c])/2) * scale
		}
	}
}
