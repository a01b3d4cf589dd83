package renderer

import (
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuStorage backs a linear buffer with a GPU storage buffer. Writes go through the queue, so they are
// visible to every command buffer submitted afterwards.
type wgpuStorage struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
	queue  *wgpu.Queue
}

var _ linear_buffer.Storage = &wgpuStorage{}

func (s *wgpuStorage) Label() string {
	return s.label
}

func (s *wgpuStorage) Size() uint64 {
	return s.size
}

func (s *wgpuStorage) Write(offset uint64, data []byte) {
	if s.buffer == nil {
		panic("renderer: write to released storage " + s.label)
	}
	s.queue.WriteBuffer(s.buffer, offset, data)
}

func (s *wgpuStorage) Release() {
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}

// Buffer returns the GPU buffer, or nil once released.
func (s *wgpuStorage) Buffer() *wgpu.Buffer {
	return s.buffer
}
