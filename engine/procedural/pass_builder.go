package procedural

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
)

// PassBuilderOption is a functional option used to configure a Pass during construction.
type PassBuilderOption func(*pass)

// WithName sets the pass name.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - PassBuilderOption: a function that sets the name
func WithName(name string) PassBuilderOption {
	return func(p *pass) {
		p.name = name
	}
}

// WithMaterial sets the material the batch is drawn with.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - PassBuilderOption: a function that sets the material
func WithMaterial(m material.Material) PassBuilderOption {
	return func(p *pass) {
		p.material = m
	}
}

// WithLifecycle subscribes the pass's Reset to a lifecycle listener.
//
// Parameters:
//   - listener: the listener to subscribe to
//
// Returns:
//   - PassBuilderOption: a function that sets the listener
func WithLifecycle(listener lifecycle.Listener) PassBuilderOption {
	return func(p *pass) {
		p.listener = listener
	}
}

// WithAccumulatorOptions forwards options to the pass accumulator.
//
// Parameters:
//   - options: the accumulator options
//
// Returns:
//   - PassBuilderOption: a function that appends the accumulator options
func WithAccumulatorOptions(options ...accumulator.AccumulatorBuilderOption) PassBuilderOption {
	return func(p *pass) {
		p.accumulatorOptions = append(p.accumulatorOptions, options...)
	}
}

// WithLogger sets the logger shared by the accumulator and emitter.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - PassBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) PassBuilderOption {
	return func(p *pass) {
		if logger != nil {
			p.logger = logger
		}
	}
}
