// Package emitter turns the accumulator's packed buffers into GPU commands: three storage-buffer bindings and a
// single procedural draw.
package emitter

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
)

// Slot is the binding index a packed buffer is bound to. The values match the @binding attributes of the
// procedural shader's storage buffers.
type Slot int

const (
	SlotVertex   Slot = 0
	SlotIndex    Slot = 1
	SlotInstance Slot = 2
)

// Topology is the primitive topology of the procedural draw.
type Topology int

const (
	TopologyTriangleList Topology = iota
)

// DrawArgs describes one procedural draw. The vertex shader runs IndexCountPerInstance times for each of
// InstanceCount instances and pulls everything it needs from the bound buffers.
type DrawArgs struct {
	Topology              Topology
	IndexCountPerInstance uint32
	InstanceCount         uint32
	// Transform is the object transform passed with the draw. Per-instance transforms come from the instance
	// buffer, so the emitter always sends identity.
	Transform common.Mat4
}

// CommandSink accepts the GPU commands the emitter produces.
type CommandSink interface {
	// BindBuffer binds storage to a slot of the material's pipeline.
	BindBuffer(m material.Material, slot Slot, storage linear_buffer.Storage)
	// DrawProcedural records a non-indexed draw driven entirely by bound buffers.
	DrawProcedural(m material.Material, args DrawArgs)
}

// Source is the read side of a batch: the three buffers and the draw counts. accumulator.Accumulator
// satisfies it.
type Source interface {
	VertexBuffer() linear_buffer.LinearBuffer[record.VertexRecord]
	IndexBuffer() linear_buffer.LinearBuffer[record.IndexRecord]
	InstanceBuffer() linear_buffer.LinearBuffer[record.InstanceRecord]
	MaxIndexCount() int
	InstanceCount() int
}

// emitter is the implementation of the Emitter interface.
type emitter struct {
	logger   *log.Logger
	material material.Material
	source   Source
}

// Emitter binds a batch's buffers and issues its draw.
//
// Both operations are no-ops unless a material is set, MaxIndexCount is positive and InstanceCount is positive.
type Emitter interface {
	// BindResources binds the vertex, index and instance buffers to SlotVertex, SlotIndex and SlotInstance.
	//
	// Parameters:
	//   - sink: the command sink receiving the bindings
	//
	// Returns:
	//   - bool: true if the buffers were bound
	BindResources(sink CommandSink) bool

	// Draw issues one triangle-list draw of MaxIndexCount indices for each of InstanceCount instances with an
	// identity transform.
	//
	// Parameters:
	//   - sink: the command sink receiving the draw
	//
	// Returns:
	//   - bool: true if the draw was issued
	Draw(sink CommandSink) bool

	// Material returns the material the batch is drawn with.
	//
	// Returns:
	//   - material.Material: the material, or nil
	Material() material.Material

	// SetMaterial sets the material the batch is drawn with. A nil material disables emission.
	//
	// Parameters:
	//   - m: the material
	SetMaterial(m material.Material)
}

var _ Emitter = &emitter{}

// NewEmitter creates an Emitter reading counts and buffers from source.
//
// Parameters:
//   - source: the batch to emit
//   - options: variadic list of EmitterBuilderOption functions to configure the emitter
//
// Returns:
//   - Emitter: the new emitter
func NewEmitter(source Source, options ...EmitterBuilderOption) Emitter {
	e := &emitter{
		logger: log.Default(),
		source: source,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *emitter) ready() bool {
	return e.material != nil && e.source != nil && e.source.MaxIndexCount() > 0 && e.source.InstanceCount() > 0
}

func (e *emitter) BindResources(sink CommandSink) bool {
	if !e.ready() {
		return false
	}

	vertices := e.source.VertexBuffer().Storage()
	indices := e.source.IndexBuffer().Storage()
	instances := e.source.InstanceBuffer().Storage()
	if vertices == nil || indices == nil || instances == nil {
		e.logger.Printf("[Emitter] %s: batch has instances but a buffer is not allocated, skipping bind", e.material.Name())
		return false
	}

	sink.BindBuffer(e.material, SlotVertex, vertices)
	sink.BindBuffer(e.material, SlotIndex, indices)
	sink.BindBuffer(e.material, SlotInstance, instances)
	return true
}

func (e *emitter) Draw(sink CommandSink) bool {
	if !e.ready() {
		return false
	}

	sink.DrawProcedural(e.material, DrawArgs{
		Topology:              TopologyTriangleList,
		IndexCountPerInstance: uint32(e.source.MaxIndexCount()),
		InstanceCount:         uint32(e.source.InstanceCount()),
		Transform:             common.IdentityMat4(),
	})
	return true
}

func (e *emitter) Material() material.Material {
	return e.material
}

func (e *emitter) SetMaterial(m material.Material) {
	e.material = m
}
