package linear_buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when an append would write past the buffer's capacity.
	ErrOverflow = errors.New("linear buffer overflow")

	// ErrNotAllocated is returned when appending to a buffer whose backing storage has not been created.
	ErrNotAllocated = errors.New("linear buffer storage not allocated")
)

// OverflowError carries the state of a rejected append. It unwraps to ErrOverflow.
type OverflowError struct {
	Label       string
	Requested   int
	WriteOffset int
	Capacity    int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: %d records requested at offset %d, capacity %d: %v",
		e.Label, e.Requested, e.WriteOffset, e.Capacity, ErrOverflow)
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}
