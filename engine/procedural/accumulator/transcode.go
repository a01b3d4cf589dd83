package accumulator

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
)

// DefaultParallelThreshold is the stream length at which transcoding is split across workers.
const DefaultParallelThreshold = 16384

const transcodeIdleTimeout = 1 * time.Second

// transcodeVertices converts a mesh's position and normal streams into vertex records. The returned slice
// aliases the accumulator's scratch space and is only valid until the next call.
func (a *accumulator) transcodeVertices(positions, normals []common.Vec3) []record.VertexRecord {
	if cap(a.vertexScratch) < len(positions) {
		a.vertexScratch = make([]record.VertexRecord, len(positions))
	}
	out := a.vertexScratch[:len(positions)]

	a.forEachChunk(len(positions), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = record.Vertex(positions[i], normals[i])
		}
	})
	return out
}

// transcodeIndices converts a triangle list into index records. The returned slice aliases the accumulator's
// scratch space and is only valid until the next call.
func (a *accumulator) transcodeIndices(triangles []uint32) []record.IndexRecord {
	if cap(a.indexScratch) < len(triangles) {
		a.indexScratch = make([]record.IndexRecord, len(triangles))
	}
	out := a.indexScratch[:len(triangles)]

	a.forEachChunk(len(triangles), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = record.Index(triangles[i])
		}
	})
	return out
}

// forEachChunk runs fn over [0, n). Streams shorter than the parallel threshold, or any stream when no pool
// exists, run inline; longer ones are split into one chunk per worker and fn runs on the pool. Chunks write
// disjoint ranges, and forEachChunk returns only after every chunk has finished.
func (a *accumulator) forEachChunk(n int, fn func(lo, hi int)) {
	if a.transcodePool == nil || n < a.parallelThreshold {
		fn(0, n)
		return
	}

	chunkSize := (n + a.transcodeWorkers - 1) / a.transcodeWorkers
	var wg sync.WaitGroup
	for id, r := range common.ChunkRanges(n, chunkSize) {
		lo, hi := r[0], r[1]
		wg.Add(1)
		a.transcodePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				fn(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
