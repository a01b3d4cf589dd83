package emitter

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
)

// EmitterBuilderOption is a functional option used to configure an Emitter during construction.
type EmitterBuilderOption func(*emitter)

// WithMaterial sets the material the batch is drawn with.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - EmitterBuilderOption: a function that sets the material
func WithMaterial(m material.Material) EmitterBuilderOption {
	return func(e *emitter) {
		e.material = m
	}
}

// WithLogger sets the logger used for emission diagnostics.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - EmitterBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) EmitterBuilderOption {
	return func(e *emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}
