package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T, label string) linear_buffer.Storage {
	t.Helper()
	s, err := linear_buffer.NewHostStorage(label, 16)
	require.NoError(t, err)
	return s
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("procedural"), WithPipelineKey("procedural_pipeline"))
	assert.Equal(t, "procedural", m.Name())
	assert.Equal(t, "procedural_pipeline", m.PipelineKey())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Empty(t, m.Bindings())
	assert.Equal(t, uint64(0), m.Version())
}

func TestSetBufferVersioning(t *testing.T) {
	m := NewMaterial()
	a := newStorage(t, "a")
	b := newStorage(t, "b")

	m.SetBuffer(2, a)
	assert.Equal(t, uint64(1), m.Version())
	assert.Same(t, a, m.Buffer(2))

	m.SetBuffer(2, a)
	assert.Equal(t, uint64(1), m.Version(), "rebinding the same storage keeps the version")

	m.SetBuffer(2, b)
	assert.Equal(t, uint64(2), m.Version())

	m.SetBuffer(0, a)
	assert.Equal(t, []int{0, 2}, m.Bindings())

	m.SetBuffer(0, nil)
	assert.Equal(t, uint64(4), m.Version())
	assert.Nil(t, m.Buffer(0))
	assert.Equal(t, []int{2}, m.Bindings())

	// clearing an empty slot is a no-op
	m.SetBuffer(5, nil)
	assert.Equal(t, uint64(4), m.Version())
}

func TestWithBuffer(t *testing.T) {
	s := newStorage(t, "vertices")
	m := NewMaterial(WithBuffer(0, s), WithBuffer(1, nil))
	assert.Equal(t, []int{0}, m.Bindings())
	assert.Same(t, s, m.Buffer(0))
}
