package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend the Renderer draws with.
type RendererBackendType int

const (
	// BackendTypeWGPU draws through WebGPU.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync presents on vertical blank, capping the frame rate at the refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents as soon as a frame is done. Frames may tear.
	PresentModeUncapped
)

// String returns the configuration name of the mode.
func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return fmt.Sprintf("PresentMode(%d)", int(m))
	}
}

// ParsePresentMode maps a configuration name ("vsync" or "uncapped") to a PresentMode.
//
// Parameters:
//   - name: the configured name
//
// Returns:
//   - PresentMode: the matching mode, PresentModeVSync on error
//   - error: an error if the name is unknown
func ParsePresentMode(name string) (PresentMode, error) {
	for _, m := range []PresentMode{PresentModeVSync, PresentModeUncapped} {
		if m.String() == name {
			return m, nil
		}
	}
	return PresentModeVSync, fmt.Errorf("unknown present mode %q", name)
}

// wgpuPresentMode returns the surface present mode used for m. Unknown modes present immediately.
func (m PresentMode) wgpuPresentMode() wgpu.PresentMode {
	if m == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// MSAASampleCount is the sample count of the color and depth attachments. WebGPU guarantees 1 and 4.
type MSAASampleCount uint32

const (
	// MSAAOff renders single-sampled.
	MSAAOff MSAASampleCount = 1

	// MSAA4x renders with 4 samples and resolves into the swapchain. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is what the Renderer needs from a GPU API: storage buffers for the linear buffers, uniform
// buffers and bind groups for materials, pipeline registration and one render pass per frame.
type RendererBackend interface {
	wgpuRendererBackend
}
