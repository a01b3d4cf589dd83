package linear_buffer

import "fmt"

// Storage is the fixed-size backing memory a LinearBuffer writes encoded records into.
// On the GPU path it wraps a storage buffer; HostStorage keeps the bytes in memory.
type Storage interface {
	// Label returns the debug label the storage was created with.
	Label() string

	// Size returns the size of the storage in bytes.
	Size() uint64

	// Write copies data into the storage starting at the given byte offset.
	//
	// Parameters:
	//   - offset: byte offset to start writing at
	//   - data: the encoded records to write
	Write(offset uint64, data []byte)

	// Release frees the storage. Safe to call more than once.
	Release()
}

// StorageFactory creates Storage of the requested byte size.
//
// Parameters:
//   - label: a debug label for the storage
//   - size: size of the storage in bytes
//
// Returns:
//   - Storage: the created storage
//   - error: an error if the storage could not be created
type StorageFactory func(label string, size uint64) (Storage, error)

// HostStorage is a Storage backed by a Go byte slice. It is the default backing of a LinearBuffer and is what
// tests read records back from.
type HostStorage struct {
	label    string
	data     []byte
	released bool
}

var _ Storage = &HostStorage{}

// NewHostStorage allocates a zeroed HostStorage of the given size. It satisfies StorageFactory.
//
// Parameters:
//   - label: a debug label for the storage
//   - size: size of the storage in bytes
//
// Returns:
//   - Storage: the created storage
//   - error: always nil
func NewHostStorage(label string, size uint64) (Storage, error) {
	return &HostStorage{
		label: label,
		data:  make([]byte, size),
	}, nil
}

func (s *HostStorage) Label() string {
	return s.label
}

func (s *HostStorage) Size() uint64 {
	return uint64(len(s.data))
}

func (s *HostStorage) Write(offset uint64, data []byte) {
	if s.released {
		panic(fmt.Sprintf("write to released host storage %q", s.label))
	}
	copy(s.data[offset:], data)
}

func (s *HostStorage) Release() {
	s.released = true
	s.data = nil
}

// Bytes returns the storage contents. The slice aliases the storage and is nil after Release.
func (s *HostStorage) Bytes() []byte {
	return s.data
}

// Released reports whether Release has been called.
func (s *HostStorage) Released() bool {
	return s.released
}
