package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/stretchr/testify/assert"
)

func TestOrbitPosition(t *testing.T) {
	c := NewCamera(WithTarget(common.Vec3{1, 2, 3}), WithOrbit(10, 0, 0))
	p := c.Position()
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 13, p[2], 1e-5)
}

func TestTargetProjectsToCenter(t *testing.T) {
	c := NewCamera(WithTarget(common.Vec3{4, 0, -2}), WithOrbit(20, 0.7, 0.3))
	vp := c.ViewProjectionMatrix()

	target := c.Target()
	clip := [4]float32{}
	for row := 0; row < 4; row++ {
		clip[row] = vp[row]*target[0] + vp[4+row]*target[1] + vp[8+row]*target[2] + vp[12+row]
	}
	assert.Greater(t, clip[3], float32(0))
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-4)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-4)
}

func TestZoomIsClamped(t *testing.T) {
	c := NewCamera(WithOrbit(10, 0, 0), WithRadiusBounds(5, 15), WithSpeeds(0.1, 1))

	c.Zoom(3)
	assert.InDelta(t, 7, c.Radius(), 1e-5)

	c.Zoom(100)
	assert.InDelta(t, 5, c.Radius(), 1e-5)

	c.Zoom(-100)
	assert.InDelta(t, 15, c.Radius(), 1e-5)
}

func TestOrbitElevationIsClamped(t *testing.T) {
	c := NewCamera(WithOrbit(10, 0, 0), WithSpeeds(1, 1))
	c.Orbit(0, 100)

	p := c.Position()
	assert.Greater(t, p[1], float32(9.9))
	assert.Less(t, p[1], float32(10))
}

func TestSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	before := c.ProjectionMatrix()

	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, before, c.ProjectionMatrix())

	c.SetAspect(1)
	assert.NotEqual(t, before, c.ProjectionMatrix())
}
