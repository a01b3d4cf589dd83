package material

import "github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the RGBA tint of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBuffer is an option builder that binds storage to a binding slot at construction.
//
// Parameters:
//   - binding: the binding index
//   - storage: the storage to bind
//
// Returns:
//   - MaterialBuilderOption: a function that applies the buffer option to a material
func WithBuffer(binding int, storage linear_buffer.Storage) MaterialBuilderOption {
	return func(m *material) {
		if storage != nil {
			m.buffers[binding] = storage
		}
	}
}
