package material

import (
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
)

// material is the implementation of the Material interface.
type material struct {
	mu sync.RWMutex

	name        string
	baseColor   [4]float32
	pipelineKey string

	// buffers holds the storage bound to each binding slot.
	buffers map[int]linear_buffer.Storage
	// version increments whenever a slot's storage identity changes, so bind groups built from an older set
	// of buffers can be detected and rebuilt.
	version uint64
}

// Material defines the interface for a render material: the pipeline a draw uses and the storage buffers bound
// to that pipeline's binding slots.
//
// The material does not own its buffers. Binding a buffer only records the association; the Renderer turns the
// bound set into a GPU bind group when the material is drawn.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA color the procedural shader tints every instance with.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBuffer binds storage to a binding slot. Rebinding the same storage is a no-op; binding different
	// storage, or nil to clear the slot, increments Version.
	//
	// Parameters:
	//   - binding: the binding index
	//   - storage: the storage to bind, or nil to unbind
	SetBuffer(binding int, storage linear_buffer.Storage)

	// Buffer retrieves the storage bound to a binding slot.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - linear_buffer.Storage: the bound storage, or nil
	Buffer(binding int) linear_buffer.Storage

	// Bindings returns the occupied binding slots in ascending order.
	//
	// Returns:
	//   - []int: the binding indices
	Bindings() []int

	// Version returns a counter that changes whenever the bound storage set changes.
	//
	// Returns:
	//   - uint64: the binding version
	Version() uint64
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		buffers:   make(map[int]linear_buffer.Storage),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) PipelineKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pipelineKey
}

func (m *material) SetPipelineKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelineKey = key
}

func (m *material) SetBuffer(binding int, storage linear_buffer.Storage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.buffers[binding]
	if storage == nil {
		if ok {
			delete(m.buffers, binding)
			m.version++
		}
		return
	}
	if ok && current == storage {
		return
	}
	m.buffers[binding] = storage
	m.version++
}

func (m *material) Buffer(binding int) linear_buffer.Storage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffers[binding]
}

func (m *material) Bindings() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.buffers))
}

func (m *material) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}
