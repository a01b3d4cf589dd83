package procedural

import (
	"bytes"
	"log"
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/emitter"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	slots []emitter.Slot
	draws []emitter.DrawArgs
}

func (s *recordingSink) BindBuffer(_ material.Material, slot emitter.Slot, _ linear_buffer.Storage) {
	s.slots = append(s.slots, slot)
}

func (s *recordingSink) DrawProcedural(_ material.Material, args emitter.DrawArgs) {
	s.draws = append(s.draws, args)
}

func quad() accumulator.Mesh {
	return &accumulator.MeshData{
		Vertices: []common.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Normal:   []common.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestExecuteFlushesBindsAndDraws(t *testing.T) {
	p := NewPass(WithMaterial(material.NewMaterial()), WithLogger(quietLogger()))
	defer p.Close()

	require.NoError(t, p.Submit(quad(), common.IdentityMat4()))
	require.NoError(t, p.Submit(quad(), common.Translation(2, 0, 0)))

	sink := &recordingSink{}
	p.Execute(sink)

	assert.Equal(t, accumulator.FlushResult{Packed: 2}, p.LastFlush())
	assert.Equal(t, []emitter.Slot{emitter.SlotVertex, emitter.SlotIndex, emitter.SlotInstance}, sink.slots)
	require.Len(t, sink.draws, 1)
	assert.Equal(t, uint32(6), sink.draws[0].IndexCountPerInstance)
	assert.Equal(t, uint32(2), sink.draws[0].InstanceCount)

	// instances persist, so the next frame draws them again without new submissions
	p.Execute(sink)
	require.Len(t, sink.draws, 2)
	assert.Equal(t, uint32(2), sink.draws[1].InstanceCount)
}

func TestExecuteWithoutSubmissionsDrawsNothing(t *testing.T) {
	p := NewPass(WithMaterial(material.NewMaterial()))
	defer p.Close()

	sink := &recordingSink{}
	p.Execute(sink)
	assert.Empty(t, sink.slots)
	assert.Empty(t, sink.draws)
}

func TestLifecycleResetsPass(t *testing.T) {
	listener := lifecycle.NewListener(lifecycle.WithLogger(quietLogger()))
	p := NewPass(WithMaterial(material.NewMaterial()), WithLifecycle(listener), WithLogger(quietLogger()))
	require.Equal(t, 1, listener.Subscribers())

	require.NoError(t, p.Submit(quad(), common.IdentityMat4()))
	p.Execute(&recordingSink{})
	require.Equal(t, 1, p.Accumulator().InstanceCount())

	listener.Notify(lifecycle.EnteredPlayMode)
	assert.Equal(t, 1, p.Accumulator().InstanceCount())

	listener.Notify(lifecycle.ExitingPlayMode)
	assert.Equal(t, 0, p.Accumulator().InstanceCount())
	assert.False(t, p.Accumulator().VertexBuffer().Allocated())

	sink := &recordingSink{}
	p.Execute(sink)
	assert.Empty(t, sink.draws)

	p.Close()
	assert.Equal(t, 0, listener.Subscribers())
}

func TestAccumulatorOptionsAreForwarded(t *testing.T) {
	p := NewPass(
		WithMaterial(material.NewMaterial()),
		WithLogger(quietLogger()),
		// room for one quad's vertices and a single instance
		WithAccumulatorOptions(accumulator.WithByteBudget(4*record.VertexRecordSize+4)),
	)
	defer p.Close()

	require.NoError(t, p.Submit(quad(), common.IdentityMat4()))
	require.NoError(t, p.Submit(quad(), common.IdentityMat4()))
	p.Execute(&recordingSink{})

	result := p.LastFlush()
	assert.Equal(t, 1, result.Packed)
	assert.Equal(t, 1, result.Discarded)
	assert.ErrorIs(t, result.Err, linear_buffer.ErrOverflow)
	assert.Equal(t, 1, p.Accumulator().InstanceBuffer().Capacity())
}
