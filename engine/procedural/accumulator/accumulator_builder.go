package accumulator

import (
	"log"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
)

// AccumulatorBuilderOption is a functional option used to configure an Accumulator during construction.
type AccumulatorBuilderOption func(*accumulator)

// WithByteBudget sets the byte budget shared by the vertex, index and instance buffers.
// Non-positive values keep linear_buffer.DefaultByteBudget.
//
// Parameters:
//   - bytes: the per-buffer byte budget
//
// Returns:
//   - AccumulatorBuilderOption: a function that sets the byte budget
func WithByteBudget(bytes int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if bytes > 0 {
			a.byteBudget = bytes
		}
	}
}

// WithStorageFactory sets the factory the three buffers create their storage with.
// The default keeps records in host memory; the renderer supplies a GPU-backed factory.
//
// Parameters:
//   - factory: the StorageFactory to use
//
// Returns:
//   - AccumulatorBuilderOption: a function that sets the storage factory
func WithStorageFactory(factory linear_buffer.StorageFactory) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if factory != nil {
			a.storageFactory = factory
		}
	}
}

// WithLogger sets the logger used for overflow and rejection diagnostics.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - AccumulatorBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTranscodeWorkers sets how many workers transcode large meshes into records.
// Values of 1 or less transcode on the calling goroutine.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - AccumulatorBuilderOption: a function that sets the worker count
func WithTranscodeWorkers(workers int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.transcodeWorkers = max(workers, 1)
	}
}

// WithParallelThreshold sets the element count at which a mesh stream is split across the transcode workers.
//
// Parameters:
//   - threshold: the minimum vertex or index count for parallel transcoding
//
// Returns:
//   - AccumulatorBuilderOption: a function that sets the threshold
func WithParallelThreshold(threshold int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if threshold > 0 {
			a.parallelThreshold = threshold
		}
	}
}
