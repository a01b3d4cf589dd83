package emitter

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type binding struct {
	material material.Material
	slot     Slot
	storage  linear_buffer.Storage
}

// recordingSink remembers every command it receives.
type recordingSink struct {
	bindings []binding
	draws    []DrawArgs
}

func (s *recordingSink) BindBuffer(m material.Material, slot Slot, storage linear_buffer.Storage) {
	s.bindings = append(s.bindings, binding{material: m, slot: slot, storage: storage})
}

func (s *recordingSink) DrawProcedural(_ material.Material, args DrawArgs) {
	s.draws = append(s.draws, args)
}

func mesh(vertexCount, indexCount int) accumulator.Mesh {
	return &accumulator.MeshData{
		Vertices: make([]common.Vec3, vertexCount),
		Normal:   make([]common.Vec3, vertexCount),
		Indices:  make([]uint32, indexCount),
	}
}

func flushedBatch(t *testing.T, meshes ...accumulator.Mesh) accumulator.Accumulator {
	t.Helper()
	a := accumulator.NewAccumulator()
	t.Cleanup(a.Close)
	for _, m := range meshes {
		require.NoError(t, a.Submit(m, common.IdentityMat4()))
	}
	a.Flush()
	return a
}

func TestBindAndDraw(t *testing.T) {
	batch := flushedBatch(t, mesh(3, 3), mesh(4, 6))
	mat := material.NewMaterial(material.WithName("procedural"))
	e := NewEmitter(batch, WithMaterial(mat))
	sink := &recordingSink{}

	require.True(t, e.BindResources(sink))
	require.Len(t, sink.bindings, 3)
	assert.Equal(t, binding{mat, SlotVertex, batch.VertexBuffer().Storage()}, sink.bindings[0])
	assert.Equal(t, binding{mat, SlotIndex, batch.IndexBuffer().Storage()}, sink.bindings[1])
	assert.Equal(t, binding{mat, SlotInstance, batch.InstanceBuffer().Storage()}, sink.bindings[2])

	require.True(t, e.Draw(sink))
	require.Len(t, sink.draws, 1)
	assert.Equal(t, DrawArgs{
		Topology:              TopologyTriangleList,
		IndexCountPerInstance: 6,
		InstanceCount:         2,
		Transform:             common.IdentityMat4(),
	}, sink.draws[0])
}

func TestNothingEmittedWithoutInstances(t *testing.T) {
	batch := flushedBatch(t)
	e := NewEmitter(batch, WithMaterial(material.NewMaterial()))
	sink := &recordingSink{}

	assert.False(t, e.BindResources(sink))
	assert.False(t, e.Draw(sink))
	assert.Empty(t, sink.bindings)
	assert.Empty(t, sink.draws)
}

func TestNothingEmittedWithoutIndices(t *testing.T) {
	// instances exist but every mesh is empty, so MaxIndexCount stays 0
	batch := flushedBatch(t, mesh(0, 0), mesh(2, 0))
	require.Equal(t, 2, batch.InstanceCount())
	e := NewEmitter(batch, WithMaterial(material.NewMaterial()))
	sink := &recordingSink{}

	assert.False(t, e.BindResources(sink))
	assert.False(t, e.Draw(sink))
	assert.Empty(t, sink.bindings)
	assert.Empty(t, sink.draws)
}

func TestNothingEmittedWithoutMaterial(t *testing.T) {
	batch := flushedBatch(t, mesh(3, 3))
	e := NewEmitter(batch)
	sink := &recordingSink{}

	assert.False(t, e.BindResources(sink))
	assert.False(t, e.Draw(sink))

	e.SetMaterial(material.NewMaterial())
	assert.True(t, e.BindResources(sink))
	assert.True(t, e.Draw(sink))
}

func TestNothingEmittedAfterReset(t *testing.T) {
	batch := flushedBatch(t, mesh(3, 3))
	e := NewEmitter(batch, WithMaterial(material.NewMaterial()))
	batch.Reset()
	sink := &recordingSink{}

	assert.False(t, e.BindResources(sink))
	assert.False(t, e.Draw(sink))
	assert.Empty(t, sink.bindings)
}
