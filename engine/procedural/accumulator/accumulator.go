// Package accumulator batches per-frame mesh submissions into the vertex, index and instance linear buffers
// consumed by a single procedural draw.
package accumulator

import (
	"errors"
	"log"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
)

// ErrInvalidSubmission is returned by Submit for an absent or malformed mesh.
var ErrInvalidSubmission = errors.New("invalid submission")

// FlushResult summarizes one Flush.
type FlushResult struct {
	// Packed is the number of submissions written to the buffers.
	Packed int
	// Discarded is the number of pending submissions dropped because the batch was truncated.
	Discarded int
	// Err is the reason the batch was truncated: a wrapped linear_buffer.ErrOverflow, a wrapped
	// ErrInvalidSubmission for a mesh that changed shape after Submit, or a storage creation error.
	// Nil when every pending submission was packed.
	Err error
}

// Stats are cumulative counters since the accumulator was created.
type Stats struct {
	Submitted int
	Rejected  int
	Packed    int
	Discarded int
	Overflows int
	Flushes   int
}

// accumulator is the implementation of the Accumulator interface.
type accumulator struct {
	logger *log.Logger

	byteBudget     int
	storageFactory linear_buffer.StorageFactory

	vertices  linear_buffer.LinearBuffer[record.VertexRecord]
	indices   linear_buffer.LinearBuffer[record.IndexRecord]
	instances linear_buffer.LinearBuffer[record.InstanceRecord]

	// pending is a write-once log for the current cycle. Entries are never removed individually; the whole log
	// is cleared at the end of every Flush.
	pending []Submission

	maxIndexCount int
	stats         Stats

	// transcodeWorkers > 1 enables chunked transcoding of large meshes on transcodePool.
	transcodeWorkers  int
	parallelThreshold int
	transcodePool     worker.DynamicWorkerPool

	vertexScratch []record.VertexRecord
	indexScratch  []record.IndexRecord
}

// Accumulator collects (mesh, transform) submissions for one cycle and packs them on Flush.
//
// The three buffers persist across flushes: instances packed in earlier cycles stay drawable until Reset.
// MaxIndexCount is a single running maximum shared by every instance, so the procedural draw issues that many
// indices for each instance, including instances whose mesh has fewer; the shader is expected to discard
// indices beyond an instance's IndexEnd.
//
// An Accumulator is owned by one render pass and is not safe for concurrent use. Reset may be called from a
// lifecycle hook but never while a Flush is running.
type Accumulator interface {
	// Submit queues a mesh for the next Flush. Capacity is not checked here.
	//
	// Parameters:
	//   - mesh: the mesh to draw
	//   - localToWorld: the column-major transform for this instance
	//
	// Returns:
	//   - error: ErrInvalidSubmission (wrapped) if the mesh is absent or malformed; nothing is queued
	Submit(mesh Mesh, localToWorld common.Mat4) error

	// Pending returns the number of submissions queued for the next Flush.
	Pending() int

	// Flush creates any missing buffers, then packs pending submissions in order until one does not fit in
	// any of the three buffers. That submission and every one after it are discarded. The pending list is
	// always empty afterwards.
	//
	// Returns:
	//   - FlushResult: how many submissions were packed or discarded, and why packing stopped
	Flush() FlushResult

	// Reset releases all three buffers, clears pending submissions and zeroes the counters used by the draw.
	// Buffers are recreated on the next Flush.
	Reset()

	// Close resets the accumulator and stops the transcoding worker pool, if any.
	Close()

	// MaxIndexCount returns the largest per-mesh index count packed since the last Reset.
	MaxIndexCount() int

	// InstanceCount returns the number of instance records in the instance buffer.
	InstanceCount() int

	// VertexBuffer returns the vertex record buffer.
	VertexBuffer() linear_buffer.LinearBuffer[record.VertexRecord]

	// IndexBuffer returns the index record buffer.
	IndexBuffer() linear_buffer.LinearBuffer[record.IndexRecord]

	// InstanceBuffer returns the instance record buffer.
	InstanceBuffer() linear_buffer.LinearBuffer[record.InstanceRecord]

	// Stats returns cumulative counters.
	Stats() Stats
}

var _ Accumulator = &accumulator{}

// NewAccumulator creates an Accumulator with three unallocated buffers sharing one byte budget.
//
// Parameters:
//   - options: variadic list of AccumulatorBuilderOption functions to configure the accumulator
//
// Returns:
//   - Accumulator: the new accumulator
func NewAccumulator(options ...AccumulatorBuilderOption) Accumulator {
	a := &accumulator{
		logger:            log.Default(),
		byteBudget:        linear_buffer.DefaultByteBudget,
		storageFactory:    linear_buffer.NewHostStorage,
		transcodeWorkers:  1,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range options {
		opt(a)
	}

	bufferOptions := func(label string) []linear_buffer.LinearBufferBuilderOption {
		return []linear_buffer.LinearBufferBuilderOption{
			linear_buffer.WithLabel(label),
			linear_buffer.WithByteBudget(a.byteBudget),
			linear_buffer.WithStorageFactory(a.storageFactory),
		}
	}
	a.vertices = linear_buffer.NewLinearBuffer[record.VertexRecord](bufferOptions(VertexBufferLabel)...)
	a.indices = linear_buffer.NewLinearBuffer[record.IndexRecord](bufferOptions(IndexBufferLabel)...)
	a.instances = linear_buffer.NewLinearBuffer[record.InstanceRecord](bufferOptions(InstanceBufferLabel)...)

	if a.transcodeWorkers > 1 {
		a.transcodePool = worker.NewDynamicWorkerPool(a.transcodeWorkers, a.transcodeWorkers*4, transcodeIdleTimeout)
	}

	return a
}

const (
	// VertexBufferLabel labels the vertex record storage.
	VertexBufferLabel = "Procedural Vertex Buffer"
	// IndexBufferLabel labels the index record storage.
	IndexBufferLabel = "Procedural Index Buffer"
	// InstanceBufferLabel labels the instance record storage.
	InstanceBufferLabel = "Procedural Instance Buffer"
)

func (a *accumulator) Submit(mesh Mesh, localToWorld common.Mat4) error {
	if err := validateMesh(mesh); err != nil {
		a.stats.Rejected++
		a.logger.Printf("[Accumulator] rejected submission: %v", err)
		return err
	}

	a.pending = append(a.pending, Submission{Mesh: mesh, LocalToWorld: localToWorld})
	a.stats.Submitted++
	return nil
}

func (a *accumulator) Pending() int {
	return len(a.pending)
}

func (a *accumulator) Flush() FlushResult {
	defer a.clearPending()
	a.stats.Flushes++

	var result FlushResult
	if err := a.ensureCapacity(); err != nil {
		a.logger.Printf("[Accumulator] failed to create buffers: %v", err)
		result.Discarded = len(a.pending)
		result.Err = err
		a.stats.Discarded += result.Discarded
		return result
	}

	for i, s := range a.pending {
		if err := a.pack(s); err != nil {
			result.Discarded = len(a.pending) - i
			result.Err = err
			var overflow *linear_buffer.OverflowError
			if errors.As(err, &overflow) {
				a.stats.Overflows++
				a.logger.Printf("[Accumulator] the %s reached its size limit (%d records), %d submission(s) dropped until a new batch",
					overflow.Label, overflow.Capacity, result.Discarded)
			} else {
				a.logger.Printf("[Accumulator] packing stopped, %d submission(s) dropped: %v", result.Discarded, err)
			}
			break
		}
		result.Packed++
	}

	a.stats.Packed += result.Packed
	a.stats.Discarded += result.Discarded
	return result
}

// pack writes one submission to the three buffers. Capacity of all three is checked before anything is
// written, so a submission that does not fit leaves every buffer untouched.
func (a *accumulator) pack(s Submission) error {
	// The streams are read again here, so a provider mutated since Submit is checked once more.
	if err := validateMesh(s.Mesh); err != nil {
		return err
	}

	positions := s.Mesh.Positions()
	normals := s.Mesh.Normals()
	triangles := s.Mesh.TriangleIndices()

	if err := a.vertices.CheckAppend(len(positions)); err != nil {
		return err
	}
	if err := a.indices.CheckAppend(len(triangles)); err != nil {
		return err
	}
	if err := a.instances.CheckAppend(1); err != nil {
		return err
	}

	vertexStart, err := a.vertices.Append(a.transcodeVertices(positions, normals))
	if err != nil {
		return err
	}
	indexStart, err := a.indices.Append(a.transcodeIndices(triangles))
	if err != nil {
		return err
	}
	instance := record.Instance(s.LocalToWorld, uint32(vertexStart), uint32(indexStart), uint32(a.indices.WriteOffset()))
	if _, err := a.instances.Append([]record.InstanceRecord{instance}); err != nil {
		return err
	}

	a.maxIndexCount = max(a.maxIndexCount, len(triangles))
	return nil
}

// ensureCapacity lazily creates any released buffer.
func (a *accumulator) ensureCapacity() error {
	return errors.Join(
		a.vertices.EnsureCapacity(),
		a.indices.EnsureCapacity(),
		a.instances.EnsureCapacity(),
	)
}

func (a *accumulator) clearPending() {
	clear(a.pending)
	a.pending = a.pending[:0]
}

func (a *accumulator) Reset() {
	a.clearPending()
	a.vertices.Release()
	a.indices.Release()
	a.instances.Release()
	a.maxIndexCount = 0
	a.vertexScratch = nil
	a.indexScratch = nil
}

func (a *accumulator) Close() {
	a.Reset()
	if a.transcodePool != nil {
		a.transcodePool.Stop()
		a.transcodePool = nil
	}
}

func (a *accumulator) MaxIndexCount() int {
	return a.maxIndexCount
}

func (a *accumulator) InstanceCount() int {
	return a.instances.WriteOffset()
}

func (a *accumulator) VertexBuffer() linear_buffer.LinearBuffer[record.VertexRecord] {
	return a.vertices
}

func (a *accumulator) IndexBuffer() linear_buffer.LinearBuffer[record.IndexRecord] {
	return a.indices
}

func (a *accumulator) InstanceBuffer() linear_buffer.LinearBuffer[record.InstanceRecord] {
	return a.instances
}

func (a *accumulator) Stats() Stats {
	return a.stats
}
