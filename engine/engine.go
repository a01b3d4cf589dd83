// Package engine runs the host frame loop: one frame per window update, executing procedural passes in key
// order between the renderer's frame begin and present.
package engine

import (
	"log"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-procedural/engine/camera"
	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
	"github.com/Carmen-Shannon/oxy-procedural/engine/profiler"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/window"
)

type engine struct {
	logger *log.Logger
	now    func() time.Time

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	listener lifecycle.Listener

	profiler         profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)

	passes map[int]procedural.Pass

	lastFrame        time.Time
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	playing          bool
}

// Engine is the main interface for the procedural batching host.
// Everything runs on the window thread: the update callback submits meshes, then every pass is executed
// against the renderer in ascending key order.
type Engine interface {
	// Window returns the window the engine drives.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Renderer returns the renderer passes are executed against.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the camera whose view-projection is set before each frame, or nil.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Lifecycle returns the listener passes subscribe their reset to.
	//
	// Returns:
	//   - lifecycle.Listener: the listener
	Lifecycle() lifecycle.Listener

	// Profiler returns the profiler fed after each frame while profiling is enabled.
	//
	// Returns:
	//   - profiler.Profiler: the profiler
	Profiler() profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers the function called at the start of each frame, before passes execute.
	//
	// Parameters:
	//   - callback: receives the seconds elapsed since the previous frame
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap.
	//
	// Parameters:
	//   - fps: the cap, 0 to uncap
	SetRenderFrameLimit(fps float64)

	// AddPass adds a pass under a key. Passes execute in ascending key order.
	//
	// Parameters:
	//   - key: the execution order key
	//   - p: the pass
	AddPass(key int, p procedural.Pass)

	// RemovePass removes and closes the pass under a key.
	//
	// Parameters:
	//   - key: the key of the pass
	RemovePass(key int)

	// Pass returns the pass under a key, or nil.
	//
	// Parameters:
	//   - key: the key of the pass
	//
	// Returns:
	//   - procedural.Pass: the pass
	Pass(key int) procedural.Pass

	// Playing reports whether the engine is in play mode.
	Playing() bool

	// SetPlaying enters or leaves play mode, notifying the lifecycle listener of the exiting and entered
	// transitions in that order. Leaving either mode resets every subscribed pass.
	//
	// Parameters:
	//   - playing: true to enter play mode
	SetPlaying(playing bool)

	// Frame runs one frame. Run calls it on every window update.
	Frame()

	// Run blocks in the window message loop until the window closes, then releases everything.
	Run()

	// Quit asks the window loop to stop after the current frame.
	Quit()

	// Close closes every pass and releases the renderer and window.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. A window and a renderer are required before Run.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger: log.Default(),
		now:    time.Now,
		passes: make(map[int]procedural.Pass),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.listener == nil {
		e.listener = lifecycle.NewListener(lifecycle.WithLogger(e.logger))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if e.camera != nil && height > 0 {
				e.camera.SetAspect(float32(width) / float32(height))
			}
		})
		e.window.SetScrollCallback(func(delta float32) {
			if e.camera != nil {
				e.camera.Zoom(delta)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Lifecycle() lifecycle.Listener {
	return e.listener
}

func (e *engine) Profiler() profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.updateCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddPass(key int, p procedural.Pass) {
	if old, ok := e.passes[key]; ok && old != p {
		old.Close()
	}
	e.passes[key] = p
}

func (e *engine) RemovePass(key int) {
	if p, ok := e.passes[key]; ok {
		p.Close()
		delete(e.passes, key)
	}
}

func (e *engine) Pass(key int) procedural.Pass {
	return e.passes[key]
}

func (e *engine) Playing() bool {
	return e.playing
}

func (e *engine) SetPlaying(playing bool) {
	if playing == e.playing {
		return
	}
	e.playing = playing
	if playing {
		e.listener.Notify(lifecycle.ExitingEditMode)
		e.listener.Notify(lifecycle.EnteredPlayMode)
		return
	}
	e.listener.Notify(lifecycle.ExitingPlayMode)
	e.listener.Notify(lifecycle.EnteredEditMode)
}

func (e *engine) Frame() {
	start := e.now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(start.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = start

	if e.updateCallback != nil {
		e.updateCallback(dt)
	}

	keys := make([]int, 0, len(e.passes))
	for k := range e.passes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if e.camera != nil {
		e.renderer.SetViewProjection(e.camera.ViewProjectionMatrix())
	}

	// Passes execute even without a swapchain texture so pending submissions are always flushed; the
	// renderer drops draws outside a frame.
	began := e.renderer.BeginFrame() == nil
	for _, k := range keys {
		e.passes[k].Execute(e.renderer)
	}
	if began {
		e.renderer.EndFrame()
		e.renderer.Present()
	}

	if e.profilingEnabled {
		for _, k := range keys {
			e.profiler.Observe(profiler.Sample(e.passes[k]))
		}
		if e.profiler.Tick() && e.window != nil {
			e.window.SetTitle(e.profiler.Summary())
		}
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Run() {
	defer e.Close()
	e.window.SetUpdateCallback(e.Frame)
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	if e.window != nil {
		e.window.RequestClose()
	}
}

func (e *engine) Close() {
	for k, p := range e.passes {
		p.Close()
		delete(e.passes, k)
	}
	if e.renderer != nil {
		e.renderer.Release()
		e.renderer = nil
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Printf("[Engine] failed to close window: %v", err)
		}
		e.window = nil
	}
}
