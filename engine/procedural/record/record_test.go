package record

import (
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSizesMatchLayout(t *testing.T) {
	assert.Equal(t, VertexRecordSize, VertexRecord{}.Size())
	assert.Equal(t, IndexRecordSize, IndexRecord{}.Size())
	assert.Equal(t, InstanceRecordSize, InstanceRecord{}.Size())

	assert.Len(t, VertexRecord{}.Marshal(), VertexRecordSize)
	assert.Len(t, IndexRecord{}.Marshal(), IndexRecordSize)
	assert.Len(t, InstanceRecord{}.Marshal(), InstanceRecordSize)
}

func TestRecordSourceDeclaresAllRecords(t *testing.T) {
	for _, name := range []string{"struct VertexRecord", "struct IndexRecord", "struct InstanceRecord"} {
		assert.True(t, strings.Contains(RecordSource, name), name)
	}
}

func TestVertexRoundTrip(t *testing.T) {
	cases := []struct {
		name           string
		position, norm common.Vec3
	}{
		{"zero", common.Vec3{0, 0, 0}, common.Vec3{0, 0, 0}},
		{"negative", common.Vec3{-1.5, -0.25, -1e-7}, common.Vec3{0, -1, 0}},
		{"large", common.Vec3{math.MaxFloat32, -math.MaxFloat32, 3.4e37}, common.Vec3{1, 0, 0}},
		{"tiny", common.Vec3{math.SmallestNonzeroFloat32, 1e-38, 0.1}, common.Vec3{0.577, 0.577, 0.577}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Vertex(tc.position, tc.norm)
			got := UnmarshalVertex(r.Marshal())
			assert.Equal(t, tc.position, got.Position)
			assert.Equal(t, tc.norm, got.Normal)
		})
	}
}

func TestVertexFieldOrder(t *testing.T) {
	buf := Vertex(common.Vec3{1, 2, 3}, common.Vec3{4, 5, 6}).Marshal()
	for i := 0; i < 6; i++ {
		bits := uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		assert.Equal(t, float32(i+1), math.Float32frombits(bits))
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 65535, math.MaxUint32} {
		assert.Equal(t, v, UnmarshalIndex(Index(v).Marshal()).Value)
	}
}

func TestInstanceRoundTrip(t *testing.T) {
	m := common.BuildModelMatrix(common.Vec3{-3, 4, 1e6}, common.Vec3{0.1, 0.2, 0.3}, common.Vec3{1, 2, 3})
	r := Instance(m, 7, 12, 48)

	buf := r.Marshal()
	require.Len(t, buf, InstanceRecordSize)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[76:80])

	got := UnmarshalInstance(buf)
	assert.Equal(t, m, got.LocalToWorld)
	assert.Equal(t, uint32(7), got.VertexStart)
	assert.Equal(t, uint32(12), got.IndexStart)
	assert.Equal(t, uint32(48), got.IndexEnd)
}

func TestMarshalToWritesInPlace(t *testing.T) {
	dst := make([]byte, IndexRecordSize*3)
	Index(9).MarshalTo(dst[IndexRecordSize:])
	assert.Equal(t, uint32(0), UnmarshalIndex(dst[0:]).Value)
	assert.Equal(t, uint32(9), UnmarshalIndex(dst[IndexRecordSize:]).Value)
	assert.Equal(t, uint32(0), UnmarshalIndex(dst[2*IndexRecordSize:]).Value)
}
