package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/emitter"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-procedural/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *log.Logger

	pipelineCache map[string]pipeline.Pipeline
	// providers holds the bind group state built for each material drawn so far.
	providers map[material.Material]bind_group_provider.BindGroupProvider
	// missingPipelines remembers keys already reported so a missing pipeline is logged once, not every frame.
	missingPipelines map[string]bool

	viewProjection common.Mat4

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device and surface, caches render pipelines by key and acts as the command sink of
// procedural render passes: bound storage buffers are recorded on the material, and each procedural draw turns
// the material's bindings into a bind group, rebuilding it only when the bound storage changed.
// Frames are driven with BeginFrame, any number of draws, EndFrame and Present.
type Renderer interface {
	emitter.CommandSink

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU pipeline objects via
	// the backend, then caching them by PipelineKey. Pipelines whose keys are already registered are skipped
	// to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// StorageFactory returns a linear_buffer.StorageFactory that creates GPU storage buffers on this
	// Renderer's device.
	//
	// Returns:
	//   - linear_buffer.StorageFactory: the factory
	StorageFactory() linear_buffer.StorageFactory

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetViewProjection sets the camera view-projection written with every draw.
	//
	// Parameters:
	//   - m: the column-major view-projection matrix
	SetViewProjection(m common.Mat4)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	// Must be paired with EndFrame after all draws within a single frame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface, call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// ReleaseMaterial releases the bind group state built for a material.
	//
	// Parameters:
	//   - m: the material
	ReleaseMaterial(m material.Material)

	// Release releases every cached pipeline, material bind group and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type, rendering to the window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface the renderer presents to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:               &sync.Mutex{},
		logger:           log.Default(),
		pipelineCache:    make(map[string]pipeline.Pipeline),
		providers:        make(map[material.Material]bind_group_provider.BindGroupProvider),
		missingPipelines: make(map[string]bool),
		viewProjection:   common.IdentityMat4(),
		backendType:      backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
		delete(r.missingPipelines, key)
	}
	return nil
}

func (r *renderer) StorageFactory() linear_buffer.StorageFactory {
	return r.backend.CreateStorage
}

func (r *renderer) SetViewProjection(m common.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewProjection = m
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) BindBuffer(m material.Material, slot emitter.Slot, storage linear_buffer.Storage) {
	m.SetBuffer(int(slot), storage)
}

func (r *renderer) DrawProcedural(m material.Material, args emitter.DrawArgs) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := common.Coalesce(m.PipelineKey(), ProceduralPipelineKey)
	p, exists := r.pipelineCache[key]
	if !exists {
		if !r.missingPipelines[key] {
			r.missingPipelines[key] = true
			r.logger.Printf("[Renderer] material %q: render pipeline %q not found in cache, skipping draw", m.Name(), key)
		}
		return
	}

	if topology, ok := primitiveTopology(args.Topology); !ok || topology != p.Topology() {
		r.logger.Printf("[Renderer] material %q: draw topology %d does not match pipeline %q, skipping draw", m.Name(), args.Topology, key)
		return
	}

	provider, err := r.bindGroupFor(m, p)
	if err != nil {
		r.logger.Printf("[Renderer] material %q: %v", m.Name(), err)
		return
	}

	if uniforms := provider.Buffer(DrawUniformsBinding); uniforms != nil {
		data := GPUDrawUniforms{
			ViewProjection:  r.viewProjection,
			ObjectTransform: args.Transform,
			BaseColor:       m.BaseColor(),
		}
		r.backend.WriteBuffer(uniforms, 0, data.Marshal())
	}

	r.backend.Draw(p, provider.BindGroup(), args.IndexCountPerInstance, args.InstanceCount)
}

// bindGroupFor returns the material's provider with a bind group matching the material's current bindings,
// creating owned uniform buffers and rebuilding the bind group as needed.
func (r *renderer) bindGroupFor(m material.Material, p pipeline.Pipeline) (bind_group_provider.BindGroupProvider, error) {
	provider, ok := r.providers[m]
	if !ok {
		provider = bind_group_provider.NewBindGroupProvider(m.Name())
		r.providers[m] = provider
	}

	version := m.Version()
	if provider.BindGroup() != nil && provider.Version() == version {
		return provider, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(p.LayoutEntries()))
	for _, layoutEntry := range p.LayoutEntries() {
		binding := int(layoutEntry.Binding)

		var buf *wgpu.Buffer
		switch layoutEntry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			buf = provider.Buffer(binding)
			if buf == nil {
				created, err := r.backend.CreateUniformBuffer(fmt.Sprintf("%s Uniform %d", m.Name(), binding), layoutEntry.Buffer.MinBindingSize)
				if err != nil {
					return nil, fmt.Errorf("failed to create uniform buffer for binding %d: %w", binding, err)
				}
				provider.SetBuffer(binding, created)
				buf = created
			}
		default:
			storage, ok := m.Buffer(binding).(*wgpuStorage)
			if !ok || storage.Buffer() == nil {
				return nil, fmt.Errorf("binding %d has no GPU storage bound", binding)
			}
			buf = storage.Buffer()
		}

		entries = append(entries, wgpu.BindGroupEntry{
			Binding: layoutEntry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := r.backend.CreateBindGroup(m.Name()+" Bind Group", p, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group: %w", err)
	}
	provider.SetBindGroup(bindGroup, version)
	return provider, nil
}

func (r *renderer) ReleaseMaterial(m material.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if provider, ok := r.providers[m]; ok {
		provider.Release()
		delete(r.providers, m)
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for m, provider := range r.providers {
		provider.Release()
		delete(r.providers, m)
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
