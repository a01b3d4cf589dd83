package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/chewxy/math32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up common.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	// Orbit state: the eye sits on a sphere around target.
	target    common.Vec3
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32

	position             common.Vec3
	viewMatrix           common.Mat4
	projectionMatrix     common.Mat4
	viewProjectionMatrix common.Mat4
}

// Camera is a perspective camera orbiting a target point.
// The eye position is derived from radius, azimuth (around Y) and elevation (above the horizontal plane);
// every setter recomputes the view, projection and view-projection matrices.
type Camera interface {
	// Position returns the world-space eye position.
	Position() common.Vec3

	// Target returns the point the camera looks at.
	Target() common.Vec3

	// SetTarget moves the orbit center.
	//
	// Parameters:
	//   - target: the new orbit center in world space
	SetTarget(target common.Vec3)

	// Radius returns the distance from the eye to the target.
	Radius() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio, typically after a resize.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Zoom moves the eye toward (positive delta) or away from the target, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: scroll delta, scaled by the zoom speed
	Zoom(delta float32)

	// Orbit rotates the eye around the target by whole orbit steps. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - azimuthSteps: steps around the Y axis, positive is to the right
	//   - elevationSteps: steps above the horizontal plane, positive is up
	Orbit(azimuthSteps, elevationSteps float32)

	// ViewMatrix returns the current column-major view matrix.
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the current column-major projection matrix.
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns projection * view, column-major.
	ViewProjectionMatrix() common.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orbit camera with the given options applied over defaults.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera with its matrices computed
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     common.Vec3{0, 1, 0},
		fov:    math32.Pi / 4,
		aspect: 16.0 / 9.0,
		near:   0.1,
		far:    1000,

		radius:    30,
		elevation: math32.Pi / 6,

		minRadius:    2,
		maxRadius:    500,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,

		orbitSpeed: 0.03,
		zoomSpeed:  2,
	}
	for _, opt := range options {
		opt(c)
	}

	c.radius = clamp(c.radius, c.minRadius, c.maxRadius)
	c.elevation = clamp(c.elevation, c.minElevation, c.maxElevation)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
	c.updateMatrices()
}

func (c *cameraImpl) Orbit(azimuthSteps, elevationSteps float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += azimuthSteps * c.orbitSpeed
	c.elevation = clamp(c.elevation+elevationSteps*c.orbitSpeed, c.minElevation, c.maxElevation)
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

// updateMatrices recomputes the eye position from the orbit coordinates, then every matrix.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	cosElev, sinElev := math32.Cos(c.elevation), math32.Sin(c.elevation)
	cosAzim, sinAzim := math32.Cos(c.azimuth), math32.Sin(c.azimuth)

	c.position = common.Vec3{
		c.target[0] + c.radius*cosElev*sinAzim,
		c.target[1] + c.radius*sinElev,
		c.target[2] + c.radius*cosElev*cosAzim,
	}

	c.viewMatrix = common.LookAt(c.position, c.target, c.up)
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = common.Mul4(c.projectionMatrix, c.viewMatrix)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
