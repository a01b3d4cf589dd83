// package common contains small value types and helpers shared across the engine. They are plain data, not
// interface-wrapped structs.
package common

// Vec3 is a three component float32 vector, laid out as x, y, z.
type Vec3 = [3]float32

// Mat4 is a 4x4 float32 matrix stored in column-major order (WebGPU convention).
type Mat4 = [16]float32

// IdentityMat4 returns a new identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func IdentityMat4() Mat4 {
	var m Mat4
	Identity(m[:])
	return m
}

// Translation returns a matrix that translates by (x, y, z).
//
// Parameters:
//   - x, y, z: translation in world space
//
// Returns:
//   - Mat4: the translation matrix
func Translation(x, y, z float32) Mat4 {
	m := IdentityMat4()
	m[12], m[13], m[14] = x, y, z
	return m
}
