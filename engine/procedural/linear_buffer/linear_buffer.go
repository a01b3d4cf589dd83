// Package linear_buffer implements the bump allocator behind the procedural batcher: a fixed-capacity
// buffer of records with a forward-only write offset.
package linear_buffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
)

// DefaultByteBudget is the byte budget shared by every buffer kind unless overridden (3 MiB).
const DefaultByteBudget = 3 * 1024 * 1024

// linearBuffer is the implementation of the LinearBuffer interface.
type linearBuffer[T record.Record] struct {
	label      string
	byteBudget int
	recordSize int
	factory    StorageFactory

	// The following fields describe the live allocation. They are zero while the storage is released.

	storage     Storage
	capacity    int
	writeOffset int

	// scratch is reused between appends to encode records before they are written to storage.
	scratch []byte
}

// LinearBuffer is a fixed-capacity, append-only buffer of records of type T.
//
// Capacity is measured in records and derived from the byte budget divided by the record size, so buffers of
// different record kinds sharing one budget hold different record counts. Appends either fit entirely or are
// rejected without writing anything. The write offset only moves forward until Release.
//
// A LinearBuffer is not safe for concurrent use; it is owned by a single render pass.
type LinearBuffer[T record.Record] interface {
	// Label returns the debug label of the buffer.
	Label() string

	// RecordSize returns the encoded size of one record in bytes.
	RecordSize() int

	// ByteBudget returns the byte budget the capacity is derived from.
	ByteBudget() int

	// Capacity returns the number of records the allocated storage holds, or 0 when released.
	Capacity() int

	// WriteOffset returns the number of records appended since the storage was last created.
	WriteOffset() int

	// Allocated reports whether backing storage currently exists.
	Allocated() bool

	// Storage returns the backing storage, or nil when released.
	Storage() Storage

	// EnsureCapacity creates the backing storage if it is absent, sizing it for ByteBudget/RecordSize records
	// and resetting the write offset to 0. It is a no-op while storage exists.
	//
	// Returns:
	//   - error: an error if the budget cannot hold a single record or storage creation fails
	EnsureCapacity() error

	// CanAppend reports whether n more records fit without exceeding capacity.
	//
	// Parameters:
	//   - n: the number of records to check
	//
	// Returns:
	//   - bool: true if the records fit
	CanAppend(n int) bool

	// CheckAppend is CanAppend with a reason: nil if n more records fit, otherwise the error Append would
	// return for n records.
	//
	// Parameters:
	//   - n: the number of records to check
	//
	// Returns:
	//   - error: nil, ErrNotAllocated, or an *OverflowError
	CheckAppend(n int) error

	// Append writes records at the current write offset and advances it.
	// On failure the buffer is left unchanged.
	//
	// Parameters:
	//   - records: the records to append
	//
	// Returns:
	//   - int: the write offset the first record was stored at
	//   - error: an *OverflowError if the records do not fit, ErrNotAllocated if there is no storage
	Append(records []T) (int, error)

	// Release frees the backing storage and resets capacity and write offset to 0.
	// Calling Release on a released buffer is a no-op.
	Release()
}

// NewLinearBuffer creates a LinearBuffer for records of type T. No storage is allocated until EnsureCapacity.
//
// Parameters:
//   - options: variadic list of LinearBufferBuilderOption functions to configure the buffer
//
// Returns:
//   - LinearBuffer[T]: the unallocated buffer
func NewLinearBuffer[T record.Record](options ...LinearBufferBuilderOption) LinearBuffer[T] {
	cfg := &linearBufferConfig{
		byteBudget: DefaultByteBudget,
		factory:    NewHostStorage,
	}
	for _, opt := range options {
		opt(cfg)
	}

	var zero T
	return &linearBuffer[T]{
		label:      cfg.label,
		byteBudget: cfg.byteBudget,
		recordSize: zero.Size(),
		factory:    cfg.factory,
	}
}

func (b *linearBuffer[T]) Label() string {
	return b.label
}

func (b *linearBuffer[T]) RecordSize() int {
	return b.recordSize
}

func (b *linearBuffer[T]) ByteBudget() int {
	return b.byteBudget
}

func (b *linearBuffer[T]) Capacity() int {
	return b.capacity
}

func (b *linearBuffer[T]) WriteOffset() int {
	return b.writeOffset
}

func (b *linearBuffer[T]) Allocated() bool {
	return b.storage != nil
}

func (b *linearBuffer[T]) Storage() Storage {
	return b.storage
}

func (b *linearBuffer[T]) EnsureCapacity() error {
	if b.storage != nil {
		return nil
	}

	capacity := b.byteBudget / b.recordSize
	if capacity <= 0 {
		return fmt.Errorf("%s: byte budget %d cannot hold one %d-byte record", b.label, b.byteBudget, b.recordSize)
	}

	storage, err := b.factory(b.label, uint64(capacity*b.recordSize))
	if err != nil {
		return fmt.Errorf("%s: failed to create storage: %w", b.label, err)
	}

	b.storage = storage
	b.capacity = capacity
	b.writeOffset = 0
	return nil
}

func (b *linearBuffer[T]) CanAppend(n int) bool {
	return b.CheckAppend(n) == nil
}

func (b *linearBuffer[T]) CheckAppend(n int) error {
	if b.storage == nil {
		return fmt.Errorf("%s: %w", b.label, ErrNotAllocated)
	}
	if n < 0 || b.writeOffset+n > b.capacity {
		return &OverflowError{
			Label:       b.label,
			Requested:   n,
			WriteOffset: b.writeOffset,
			Capacity:    b.capacity,
		}
	}
	return nil
}

func (b *linearBuffer[T]) Append(records []T) (int, error) {
	if err := b.CheckAppend(len(records)); err != nil {
		return b.writeOffset, err
	}

	start := b.writeOffset
	if len(records) == 0 {
		return start, nil
	}

	n := len(records) * b.recordSize
	if cap(b.scratch) < n {
		b.scratch = make([]byte, n)
	}
	buf := b.scratch[:n]
	for i, r := range records {
		r.MarshalTo(buf[i*b.recordSize:])
	}

	b.storage.Write(uint64(start*b.recordSize), buf)
	b.writeOffset += len(records)
	return start, nil
}

func (b *linearBuffer[T]) Release() {
	if b.storage != nil {
		b.storage.Release()
		b.storage = nil
	}
	b.capacity = 0
	b.writeOffset = 0
	b.scratch = nil
}
