// Package record holds the fixed-size GPU records the procedural batcher packs into its linear buffers,
// and the codec functions that build them from mesh and submission data.
//
// Every record matches the WGSL storage-buffer layout in RecordSource byte for byte. The codec functions are
// pure and total: they copy their inputs into the record without conversion, so a record read back from a
// buffer yields exactly the values it was built from.
package record

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-procedural/common"
)

// RecordSource is the canonical WGSL definition of the VertexRecord, IndexRecord and InstanceRecord structs.
//
//go:embed assets/records.wgsl
var RecordSource string

const (
	// VertexRecordSize is the byte size of a VertexRecord.
	VertexRecordSize = 24
	// IndexRecordSize is the byte size of an IndexRecord.
	IndexRecordSize = 4
	// InstanceRecordSize is the byte size of an InstanceRecord, including the trailing pad word WGSL inserts
	// to round the 76-byte payload up to the 16-byte alignment of mat4x4<f32>.
	InstanceRecordSize = 80
)

// Record is implemented by every record kind that can be stored in a linear buffer.
type Record interface {
	// Size returns the encoded size of the record in bytes.
	Size() int

	// MarshalTo encodes the record little-endian into dst, which must hold at least Size() bytes.
	MarshalTo(dst []byte)
}

// VertexRecord is one packed vertex: position then normal.
// Size: 24 bytes.
type VertexRecord struct {
	Position common.Vec3 // offset  0: model-space position (12 bytes)
	Normal   common.Vec3 // offset 12: model-space normal (12 bytes)
}

// IndexRecord is one triangle-list index. Values are local to the submitting mesh; the shader offsets them by
// the owning InstanceRecord's VertexStart.
// Size: 4 bytes.
type IndexRecord struct {
	Value uint32 // offset 0
}

// InstanceRecord describes one batched submission.
// Size: 80 bytes.
type InstanceRecord struct {
	LocalToWorld common.Mat4 // offset  0: column-major local-to-world transform (64 bytes)
	VertexStart  uint32      // offset 64: first vertex record of the mesh
	IndexStart   uint32      // offset 68: first index record of the mesh
	IndexEnd     uint32      // offset 72: one past the last index record of the mesh
	_            uint32      // offset 76: padding
}

var (
	_ Record = VertexRecord{}
	_ Record = IndexRecord{}
	_ Record = InstanceRecord{}
)

// Vertex builds a VertexRecord from a position and its normal.
func Vertex(position, normal common.Vec3) VertexRecord {
	return VertexRecord{Position: position, Normal: normal}
}

// Index builds an IndexRecord from a mesh-local index value.
func Index(value uint32) IndexRecord {
	return IndexRecord{Value: value}
}

// Instance builds an InstanceRecord from a submission's transform and the buffer ranges its mesh landed in.
func Instance(transform common.Mat4, vertexStart, indexStart, indexEnd uint32) InstanceRecord {
	return InstanceRecord{
		LocalToWorld: transform,
		VertexStart:  vertexStart,
		IndexStart:   indexStart,
		IndexEnd:     indexEnd,
	}
}

func (r VertexRecord) Size() int {
	return int(unsafe.Sizeof(r))
}

func (r VertexRecord) MarshalTo(dst []byte) {
	_ = dst[VertexRecordSize-1]
	putFloats(dst[0:12], r.Position[:])
	putFloats(dst[12:24], r.Normal[:])
}

// Marshal serializes the VertexRecord into a new 24-byte buffer.
func (r VertexRecord) Marshal() []byte {
	buf := make([]byte, VertexRecordSize)
	r.MarshalTo(buf)
	return buf
}

func (r IndexRecord) Size() int {
	return int(unsafe.Sizeof(r))
}

func (r IndexRecord) MarshalTo(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], r.Value)
}

// Marshal serializes the IndexRecord into a new 4-byte buffer.
func (r IndexRecord) Marshal() []byte {
	buf := make([]byte, IndexRecordSize)
	r.MarshalTo(buf)
	return buf
}

func (r InstanceRecord) Size() int {
	return int(unsafe.Sizeof(r))
}

func (r InstanceRecord) MarshalTo(dst []byte) {
	_ = dst[InstanceRecordSize-1]
	putFloats(dst[0:64], r.LocalToWorld[:])
	binary.LittleEndian.PutUint32(dst[64:68], r.VertexStart)
	binary.LittleEndian.PutUint32(dst[68:72], r.IndexStart)
	binary.LittleEndian.PutUint32(dst[72:76], r.IndexEnd)
	binary.LittleEndian.PutUint32(dst[76:80], 0)
}

// Marshal serializes the InstanceRecord into a new 80-byte buffer.
func (r InstanceRecord) Marshal() []byte {
	buf := make([]byte, InstanceRecordSize)
	r.MarshalTo(buf)
	return buf
}

// UnmarshalVertex decodes a VertexRecord from the first 24 bytes of src.
func UnmarshalVertex(src []byte) VertexRecord {
	_ = src[VertexRecordSize-1]
	var r VertexRecord
	getFloats(r.Position[:], src[0:12])
	getFloats(r.Normal[:], src[12:24])
	return r
}

// UnmarshalIndex decodes an IndexRecord from the first 4 bytes of src.
func UnmarshalIndex(src []byte) IndexRecord {
	return IndexRecord{Value: binary.LittleEndian.Uint32(src[0:4])}
}

// UnmarshalInstance decodes an InstanceRecord from the first 80 bytes of src.
func UnmarshalInstance(src []byte) InstanceRecord {
	_ = src[InstanceRecordSize-1]
	var r InstanceRecord
	getFloats(r.LocalToWorld[:], src[0:64])
	r.VertexStart = binary.LittleEndian.Uint32(src[64:68])
	r.IndexStart = binary.LittleEndian.Uint32(src[68:72])
	r.IndexEnd = binary.LittleEndian.Uint32(src[72:76])
	return r
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
