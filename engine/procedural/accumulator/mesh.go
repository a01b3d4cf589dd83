package accumulator

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-procedural/common"
)

// Mesh provides the vertex streams the accumulator packs. Positions and Normals are index-aligned and of equal
// length; TriangleIndices is a triangle list whose length is a multiple of 3, holding indices local to the mesh.
//
// The accumulator keeps the Mesh reference until the next flush and reads the streams only then. A mesh that no
// longer satisfies this contract at flush stops the batch like an overflow does.
type Mesh interface {
	Positions() []common.Vec3
	Normals() []common.Vec3
	TriangleIndices() []uint32
}

// MeshData is a plain in-memory Mesh.
type MeshData struct {
	Vertices []common.Vec3
	Normal   []common.Vec3
	Indices  []uint32
}

var _ Mesh = &MeshData{}

func (m *MeshData) Positions() []common.Vec3 {
	return m.Vertices
}

func (m *MeshData) Normals() []common.Vec3 {
	return m.Normal
}

func (m *MeshData) TriangleIndices() []uint32 {
	return m.Indices
}

// Submission is one queued draw request: a mesh and where to place it.
type Submission struct {
	Mesh         Mesh
	LocalToWorld common.Mat4
}

// validateMesh checks the provider contract. A nil interface and an interface wrapping a nil pointer are both
// treated as an absent mesh.
func validateMesh(mesh Mesh) error {
	if mesh == nil {
		return fmt.Errorf("%w: mesh is nil", ErrInvalidSubmission)
	}
	if v := reflect.ValueOf(mesh); v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Errorf("%w: mesh is nil", ErrInvalidSubmission)
	}

	positions, normals := len(mesh.Positions()), len(mesh.Normals())
	if positions != normals {
		return fmt.Errorf("%w: %d positions but %d normals", ErrInvalidSubmission, positions, normals)
	}
	if indices := len(mesh.TriangleIndices()); indices%3 != 0 {
		return fmt.Errorf("%w: %d triangle indices is not a multiple of 3", ErrInvalidSubmission, indices)
	}
	return nil
}
