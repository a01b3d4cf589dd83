package accumulator

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleMesh builds a mesh with the given vertex count and a triangle list of indexCount indices.
func triangleMesh(vertexCount, indexCount int) *MeshData {
	m := &MeshData{
		Vertices: make([]common.Vec3, vertexCount),
		Normal:   make([]common.Vec3, vertexCount),
		Indices:  make([]uint32, indexCount),
	}
	for i := range vertexCount {
		m.Vertices[i] = common.Vec3{float32(i), float32(i) * 2, float32(i) * 3}
		m.Normal[i] = common.Vec3{0, 1, 0}
	}
	for i := range indexCount {
		m.Indices[i] = uint32(i % max(vertexCount, 1))
	}
	return m
}

func hostBytes(t *testing.T, s linear_buffer.Storage) []byte {
	t.Helper()
	h, ok := s.(*linear_buffer.HostStorage)
	require.True(t, ok)
	return h.Bytes()
}

func instanceAt(t *testing.T, a Accumulator, i int) record.InstanceRecord {
	t.Helper()
	data := hostBytes(t, a.InstanceBuffer().Storage())
	return record.UnmarshalInstance(data[i*record.InstanceRecordSize:])
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}

func TestFlushPacksSubmissionsInOrder(t *testing.T) {
	a := NewAccumulator(WithLogger(quietLogger(&bytes.Buffer{})))
	defer a.Close()

	meshA := triangleMesh(3, 3)
	meshB := triangleMesh(4, 6)
	moved := common.Translation(5, 0, -2)

	require.NoError(t, a.Submit(meshA, common.IdentityMat4()))
	require.NoError(t, a.Submit(meshB, moved))
	assert.Equal(t, 2, a.Pending())

	result := a.Flush()
	assert.Equal(t, FlushResult{Packed: 2}, result)
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 6, a.MaxIndexCount())
	assert.Equal(t, 2, a.InstanceCount())

	first := instanceAt(t, a, 0)
	assert.Equal(t, uint32(0), first.VertexStart)
	assert.Equal(t, uint32(0), first.IndexStart)
	assert.Equal(t, uint32(3), first.IndexEnd)
	assert.Equal(t, common.IdentityMat4(), first.LocalToWorld)

	second := instanceAt(t, a, 1)
	assert.Equal(t, uint32(3), second.VertexStart)
	assert.Equal(t, uint32(3), second.IndexStart)
	assert.Equal(t, uint32(9), second.IndexEnd)
	assert.Equal(t, moved, second.LocalToWorld)

	assert.Equal(t, 7, a.VertexBuffer().WriteOffset())
	assert.Equal(t, 9, a.IndexBuffer().WriteOffset())

	vertices := hostBytes(t, a.VertexBuffer().Storage())
	v := record.UnmarshalVertex(vertices[4*record.VertexRecordSize:])
	assert.Equal(t, meshB.Vertices[1], v.Position)
	assert.Equal(t, meshB.Normal[1], v.Normal)

	// indices stay local to their mesh
	indices := hostBytes(t, a.IndexBuffer().Storage())
	assert.Equal(t, uint32(3), record.UnmarshalIndex(indices[6*record.IndexRecordSize:]).Value)
}

func TestFlushWithNothingPending(t *testing.T) {
	a := NewAccumulator()
	defer a.Close()

	result := a.Flush()
	assert.Equal(t, FlushResult{}, result)
	assert.True(t, a.VertexBuffer().Allocated())
	assert.True(t, a.IndexBuffer().Allocated())
	assert.True(t, a.InstanceBuffer().Allocated())
	assert.Equal(t, 0, a.InstanceCount())
	assert.Equal(t, 0, a.MaxIndexCount())
}

func TestSubmitRejectsInvalidMeshes(t *testing.T) {
	var logs bytes.Buffer
	a := NewAccumulator(WithLogger(quietLogger(&logs)))
	defer a.Close()

	var typedNil *MeshData
	cases := map[string]Mesh{
		"nil":              nil,
		"typed nil":        typedNil,
		"normals mismatch": &MeshData{Vertices: make([]common.Vec3, 3), Normal: make([]common.Vec3, 2)},
		"partial triangle": &MeshData{Vertices: make([]common.Vec3, 3), Normal: make([]common.Vec3, 3), Indices: []uint32{0, 1}},
	}
	for name, mesh := range cases {
		t.Run(name, func(t *testing.T) {
			err := a.Submit(mesh, common.IdentityMat4())
			assert.ErrorIs(t, err, ErrInvalidSubmission)
		})
	}

	assert.Equal(t, 0, a.Pending())
	assert.False(t, a.VertexBuffer().Allocated())
	assert.False(t, a.IndexBuffer().Allocated())
	assert.False(t, a.InstanceBuffer().Allocated())
	assert.Equal(t, 0, a.InstanceCount())
	assert.Equal(t, 0, a.MaxIndexCount())
	assert.Equal(t, len(cases), a.Stats().Rejected)
	assert.Contains(t, logs.String(), "[Accumulator] rejected submission")
}

func TestEmptyMeshStillProducesInstance(t *testing.T) {
	a := NewAccumulator()
	defer a.Close()

	require.NoError(t, a.Submit(&MeshData{}, common.IdentityMat4()))
	result := a.Flush()
	assert.Equal(t, 1, result.Packed)
	assert.Equal(t, 1, a.InstanceCount())
	assert.Equal(t, 0, a.MaxIndexCount())
}

func TestOverflowStopsBatch(t *testing.T) {
	var logs bytes.Buffer
	// 10 vertex records per buffer; the index and instance buffers hold far more
	a := NewAccumulator(
		WithByteBudget(10*record.VertexRecordSize),
		WithLogger(quietLogger(&logs)),
	)
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(4, 6), common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(4, 3), common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(4, 3), common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(1, 3), common.IdentityMat4()))

	result := a.Flush()
	assert.Equal(t, 2, result.Packed)
	assert.Equal(t, 2, result.Discarded)
	assert.ErrorIs(t, result.Err, linear_buffer.ErrOverflow)

	var overflow *linear_buffer.OverflowError
	require.True(t, errors.As(result.Err, &overflow))
	assert.Equal(t, VertexBufferLabel, overflow.Label)

	// the overflowing submission wrote nothing to any buffer
	assert.Equal(t, 8, a.VertexBuffer().WriteOffset())
	assert.Equal(t, 9, a.IndexBuffer().WriteOffset())
	assert.Equal(t, 2, a.InstanceCount())
	assert.Equal(t, 6, a.MaxIndexCount())
	assert.Equal(t, 0, a.Pending())

	assert.Contains(t, logs.String(), "reached its size limit")
	stats := a.Stats()
	assert.Equal(t, 1, stats.Overflows)
	assert.Equal(t, 2, stats.Discarded)
	assert.Equal(t, 2, stats.Packed)
}

func TestInstanceBufferOverflow(t *testing.T) {
	a := NewAccumulator(
		WithByteBudget(2*record.InstanceRecordSize),
		WithLogger(quietLogger(&bytes.Buffer{})),
	)
	defer a.Close()

	for range 3 {
		require.NoError(t, a.Submit(triangleMesh(1, 0), common.IdentityMat4()))
	}
	result := a.Flush()
	assert.Equal(t, 2, result.Packed)
	assert.Equal(t, 1, result.Discarded)
	assert.Equal(t, 2, a.InstanceCount())
	// the third vertex was not written because the instance check failed first
	assert.Equal(t, 2, a.VertexBuffer().WriteOffset())
}

func TestIndexBufferOverflow(t *testing.T) {
	// 10 vertex, 60 index and 3 instance records per buffer
	a := NewAccumulator(
		WithByteBudget(3*record.InstanceRecordSize),
		WithLogger(quietLogger(&bytes.Buffer{})),
	)
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(1, 27), common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(1, 27), common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(1, 9), common.IdentityMat4()))

	result := a.Flush()
	assert.Equal(t, 2, result.Packed)
	assert.Equal(t, 1, result.Discarded)

	var overflow *linear_buffer.OverflowError
	require.True(t, errors.As(result.Err, &overflow))
	assert.Equal(t, IndexBufferLabel, overflow.Label)

	// the vertex and instance buffers had room but were not written
	assert.Equal(t, 2, a.VertexBuffer().WriteOffset())
	assert.Equal(t, 54, a.IndexBuffer().WriteOffset())
	assert.Equal(t, 2, a.InstanceCount())
	assert.Equal(t, 27, a.MaxIndexCount())
}

func TestMeshChangedAfterSubmitStopsBatch(t *testing.T) {
	var logs bytes.Buffer
	a := NewAccumulator(WithLogger(quietLogger(&logs)))
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
	shrunk := triangleMesh(3, 3)
	require.NoError(t, a.Submit(shrunk, common.IdentityMat4()))
	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
	shrunk.Normal = shrunk.Normal[:1]

	var result FlushResult
	require.NotPanics(t, func() { result = a.Flush() })
	assert.Equal(t, 1, result.Packed)
	assert.Equal(t, 2, result.Discarded)
	assert.ErrorIs(t, result.Err, ErrInvalidSubmission)

	assert.Equal(t, 3, a.VertexBuffer().WriteOffset())
	assert.Equal(t, 1, a.InstanceCount())
	assert.Equal(t, 0, a.Pending())
	assert.Contains(t, logs.String(), "packing stopped")
}

func TestBuffersPersistAcrossFlushes(t *testing.T) {
	a := NewAccumulator()
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
	a.Flush()
	require.NoError(t, a.Submit(triangleMesh(4, 6), common.IdentityMat4()))
	a.Flush()

	assert.Equal(t, 2, a.InstanceCount())
	assert.Equal(t, 6, a.MaxIndexCount())
	second := instanceAt(t, a, 1)
	assert.Equal(t, uint32(3), second.VertexStart)
	assert.Equal(t, uint32(9), second.IndexEnd)
}

func TestResetReleasesBuffers(t *testing.T) {
	created := 0
	factory := func(label string, size uint64) (linear_buffer.Storage, error) {
		created++
		return linear_buffer.NewHostStorage(label, size)
	}
	a := NewAccumulator(WithStorageFactory(factory))
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
	a.Flush()
	vertexStorage := a.VertexBuffer().Storage().(*linear_buffer.HostStorage)
	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))

	a.Reset()
	assert.True(t, vertexStorage.Released())
	assert.False(t, a.VertexBuffer().Allocated())
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 0, a.InstanceCount())
	assert.Equal(t, 0, a.MaxIndexCount())

	require.NoError(t, a.Submit(triangleMesh(4, 6), common.IdentityMat4()))
	a.Flush()
	assert.Equal(t, 6, created)
	assert.Equal(t, 1, a.InstanceCount())
	assert.Equal(t, uint32(0), instanceAt(t, a, 0).VertexStart)
}

func TestStorageFactoryFailureDiscardsBatch(t *testing.T) {
	boom := errors.New("device lost")
	a := NewAccumulator(
		WithStorageFactory(func(string, uint64) (linear_buffer.Storage, error) { return nil, boom }),
		WithLogger(quietLogger(&bytes.Buffer{})),
	)
	defer a.Close()

	require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
	result := a.Flush()
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, 1, result.Discarded)
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 0, a.InstanceCount())
}

func TestParallelTranscodeMatchesSerial(t *testing.T) {
	mesh := triangleMesh(1000, 3000)

	serial := NewAccumulator()
	defer serial.Close()
	parallel := NewAccumulator(WithTranscodeWorkers(4), WithParallelThreshold(64))
	defer parallel.Close()

	for _, a := range []Accumulator{serial, parallel} {
		require.NoError(t, a.Submit(triangleMesh(3, 3), common.IdentityMat4()))
		require.NoError(t, a.Submit(mesh, common.Translation(1, 2, 3)))
		assert.Equal(t, 2, a.Flush().Packed)
	}

	assert.Equal(t, hostBytes(t, serial.VertexBuffer().Storage()), hostBytes(t, parallel.VertexBuffer().Storage()))
	assert.Equal(t, hostBytes(t, serial.IndexBuffer().Storage()), hostBytes(t, parallel.IndexBuffer().Storage()))
	assert.Equal(t, hostBytes(t, serial.InstanceBuffer().Storage()), hostBytes(t, parallel.InstanceBuffer().Storage()))
}
