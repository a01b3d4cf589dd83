package camera

import "github.com/Carmen-Shannon/oxy-procedural/common"

// CameraBuilderOption is a functional option for configuring a camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the initial aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance, must be > 0
//   - far: far plane distance, must be > near
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithTarget sets the orbit center.
//
// Parameters:
//   - target: the point the camera looks at
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(target common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithOrbit sets the initial orbit coordinates.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: angle around the Y axis in radians
//   - elevation: angle above the horizontal plane in radians
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrbit(radius, azimuth, elevation float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.radius = radius
		c.azimuth = azimuth
		c.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - min: the closest the eye may get to the target
//   - max: the farthest the eye may get from the target
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithRadiusBounds(min, max float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minRadius = min
		c.maxRadius = max
	}
}

// WithSpeeds sets the orbit step in radians and the zoom distance per scroll unit.
//
// Parameters:
//   - orbit: radians per orbit step
//   - zoom: distance per scroll unit
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithSpeeds(orbit, zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orbitSpeed = orbit
		c.zoomSpeed = zoom
	}
}
