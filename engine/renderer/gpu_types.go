package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-procedural/common"
)

// GPUDrawUniformsSource is the canonical WGSL definition of the DrawUniforms struct.
// Matches GPUDrawUniforms layout exactly (144 bytes, std140 aligned).
//
//go:embed assets/draw_uniforms.wgsl
var GPUDrawUniformsSource string

// GPUDrawUniforms is the per-draw uniform of the procedural pipeline (binding 3).
// Matches the WGSL DrawUniforms struct layout exactly (see GPUDrawUniformsSource).
// Size: 144 bytes.
type GPUDrawUniforms struct {
	ViewProjection  common.Mat4 // offset   0: camera view-projection (64 bytes)
	ObjectTransform common.Mat4 // offset  64: draw-call object transform, identity for batches (64 bytes)
	BaseColor       [4]float32  // offset 128: material RGBA tint (16 bytes)
}

// Size returns the size of the GPUDrawUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUDrawUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDrawUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload.
func (g *GPUDrawUniforms) Marshal() []byte {
	buf := make([]byte, 144)
	for i, v := range g.ViewProjection {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.ObjectTransform {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	for i, v := range g.BaseColor {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(v))
	}
	return buf
}
