package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestMul4Identity(t *testing.T) {
	m := BuildModelMatrix(Vec3{1, 2, 3}, Vec3{0.3, 0.2, 0.1}, Vec3{2, 2, 2})
	assert.Equal(t, m, Mul4(IdentityMat4(), m))
	assert.Equal(t, m, Mul4(m, IdentityMat4()))
}

func TestTranslation(t *testing.T) {
	m := Translation(5, -1, 2)
	assert.Equal(t, Vec3{6, 0, 2}, TransformPoint(m, Vec3{1, 1, 0}))
}

func TestBuildModelMatrixNoRotation(t *testing.T) {
	m := BuildModelMatrix(Vec3{1, 2, 3}, Vec3{}, Vec3{1, 1, 1})
	assert.Equal(t, Translation(1, 2, 3), m)
}

func TestBuildModelMatrixYaw(t *testing.T) {
	m := BuildModelMatrix(Vec3{}, Vec3{0, math32.Pi / 2, 0}, Vec3{1, 1, 1})
	p := TransformPoint(m, Vec3{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -1, p[2], 1e-6)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 0, 10}
	view := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	p := TransformPoint(view, eye)
	for _, c := range p {
		assert.InDelta(t, 0, c, 1e-5)
	}
	// the target sits straight ahead, down -Z in view space
	target := TransformPoint(view, Vec3{})
	assert.InDelta(t, -10, target[2], 1e-5)
}

func TestChunkRanges(t *testing.T) {
	assert.Nil(t, ChunkRanges(0, 4))
	assert.Equal(t, [][2]int{{0, 3}}, ChunkRanges(3, 0))
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, ChunkRanges(10, 4))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
