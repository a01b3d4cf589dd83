// Package procedural assembles the batching pipeline into a render pass: submissions are accumulated during
// the frame, then flushed, bound and drawn in one procedural draw.
package procedural

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/emitter"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
)

// pass is the implementation of the Pass interface.
type pass struct {
	name   string
	logger *log.Logger

	accumulatorOptions []accumulator.AccumulatorBuilderOption
	material           material.Material
	listener           lifecycle.Listener

	accumulator accumulator.Accumulator
	emitter     emitter.Emitter
	unsubscribe func()

	lastFlush accumulator.FlushResult
}

// Pass owns one accumulator and its emitter for the lifetime of a render pass.
//
// All methods except Reset run on the render thread. Reset may be triggered by a lifecycle transition outside
// the frame loop, but never while Execute is running.
type Pass interface {
	// Name returns the pass name used in diagnostics.
	//
	// Returns:
	//   - string: the pass name
	Name() string

	// Submit queues a mesh for the next Execute.
	//
	// Parameters:
	//   - mesh: the mesh to draw
	//   - localToWorld: the instance transform
	//
	// Returns:
	//   - error: a wrapped accumulator.ErrInvalidSubmission if the mesh is rejected
	Submit(mesh accumulator.Mesh, localToWorld common.Mat4) error

	// Execute flushes pending submissions, then binds the packed buffers and issues the procedural draw.
	//
	// Parameters:
	//   - sink: the command sink receiving bindings and the draw
	Execute(sink emitter.CommandSink)

	// LastFlush returns the result of the most recent Execute's flush.
	//
	// Returns:
	//   - accumulator.FlushResult: the flush result
	LastFlush() accumulator.FlushResult

	// Reset releases the packed buffers and drops pending submissions. It is the lifecycle callback.
	Reset()

	// Close unsubscribes from the lifecycle listener, resets and stops background workers.
	Close()

	// Accumulator returns the pass accumulator.
	//
	// Returns:
	//   - accumulator.Accumulator: the accumulator
	Accumulator() accumulator.Accumulator

	// Emitter returns the pass emitter.
	//
	// Returns:
	//   - emitter.Emitter: the emitter
	Emitter() emitter.Emitter
}

var _ Pass = &pass{}

// NewPass creates a Pass. When a lifecycle listener is configured the pass subscribes Reset to it.
//
// Parameters:
//   - options: variadic list of PassBuilderOption functions to configure the pass
//
// Returns:
//   - Pass: the new pass
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		name:   "procedural",
		logger: log.Default(),
	}
	for _, opt := range options {
		opt(p)
	}

	accOptions := append([]accumulator.AccumulatorBuilderOption{accumulator.WithLogger(p.logger)}, p.accumulatorOptions...)
	p.accumulator = accumulator.NewAccumulator(accOptions...)
	p.emitter = emitter.NewEmitter(p.accumulator, emitter.WithMaterial(p.material), emitter.WithLogger(p.logger))

	if p.listener != nil {
		p.unsubscribe = p.listener.Subscribe(p.Reset)
	}
	return p
}

func (p *pass) Name() string {
	return p.name
}

func (p *pass) Submit(mesh accumulator.Mesh, localToWorld common.Mat4) error {
	return p.accumulator.Submit(mesh, localToWorld)
}

func (p *pass) Execute(sink emitter.CommandSink) {
	p.lastFlush = p.accumulator.Flush()
	if p.emitter.BindResources(sink) {
		p.emitter.Draw(sink)
	}
}

func (p *pass) LastFlush() accumulator.FlushResult {
	return p.lastFlush
}

func (p *pass) Reset() {
	p.accumulator.Reset()
	p.lastFlush = accumulator.FlushResult{}
}

func (p *pass) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	p.accumulator.Close()
	p.lastFlush = accumulator.FlushResult{}
}

func (p *pass) Accumulator() accumulator.Accumulator {
	return p.accumulator
}

func (p *pass) Emitter() emitter.Emitter {
	return p.emitter
}
