package engine

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/engine/camera"
	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
	"github.com/Carmen-Shannon/oxy-procedural/engine/profiler"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/window"
)

// EngineBuilderOption is a functional option for configuring an engine.
type EngineBuilderOption func(*engine)

// WithProfiling sets whether profiling output starts enabled.
//
// Parameters:
//   - enabled: true to enable profiling output
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine drives.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer passes execute against.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera whose view-projection is applied each frame.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithLifecycle sets the lifecycle listener. When not set the engine creates one.
//
// Parameters:
//   - l: the listener
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLifecycle(l lifecycle.Listener) EngineBuilderOption {
	return func(e *engine) {
		e.listener = l
	}
}

// WithPass adds a pass under a key.
//
// Parameters:
//   - key: the execution order key
//   - p: the pass
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPass(key int, p procedural.Pass) EngineBuilderOption {
	return func(e *engine) {
		e.passes[key] = p
	}
}

// WithRenderFrameLimit sets an optional frame rate cap. Pass 0 to uncap.
//
// Parameters:
//   - fps: the cap
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithLogger sets the logger shared by the engine's default listener and profiler.
//
// Parameters:
//   - logger: the logger, nil keeps log.Default()
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
