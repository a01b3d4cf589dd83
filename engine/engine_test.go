package engine

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/lifecycle"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/emitter"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/profiler"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records frame calls and draws. Methods the engine never calls are left to the nil embedded
// interface.
type fakeRenderer struct {
	renderer.Renderer

	beginErr error
	calls    []string
	draws    []string
	released bool
}

func (r *fakeRenderer) BeginFrame() error {
	r.calls = append(r.calls, "begin")
	return r.beginErr
}

func (r *fakeRenderer) EndFrame() {
	r.calls = append(r.calls, "end")
}

func (r *fakeRenderer) Present() {
	r.calls = append(r.calls, "present")
}

func (r *fakeRenderer) SetViewProjection(common.Mat4) {}

func (r *fakeRenderer) BindBuffer(material.Material, emitter.Slot, linear_buffer.Storage) {}

func (r *fakeRenderer) DrawProcedural(m material.Material, _ emitter.DrawArgs) {
	r.draws = append(r.draws, m.Name())
}

func (r *fakeRenderer) Release() {
	r.released = true
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func triangle() accumulator.Mesh {
	return &accumulator.MeshData{
		Vertices: []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normal:   []common.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:  []uint32{0, 1, 2},
	}
}

func newPass(name string, listener lifecycle.Listener) procedural.Pass {
	return procedural.NewPass(
		procedural.WithName(name),
		procedural.WithMaterial(material.NewMaterial(material.WithName(name))),
		procedural.WithLifecycle(listener),
		procedural.WithLogger(quietLogger()),
		procedural.WithAccumulatorOptions(accumulator.WithLogger(quietLogger())),
	)
}

func TestFrameExecutesPassesInKeyOrder(t *testing.T) {
	r := &fakeRenderer{}
	e := NewEngine(WithRenderer(r), WithLogger(quietLogger()))

	second := newPass("second", e.Lifecycle())
	first := newPass("first", e.Lifecycle())
	e.AddPass(20, second)
	e.AddPass(10, first)

	e.SetUpdateCallback(func(float32) {
		require.NoError(t, first.Submit(triangle(), common.IdentityMat4()))
		require.NoError(t, second.Submit(triangle(), common.IdentityMat4()))
	})
	e.Frame()

	assert.Equal(t, []string{"first", "second"}, r.draws)
	assert.Equal(t, []string{"begin", "end", "present"}, r.calls)
}

func TestFrameFlushesWhenBeginFails(t *testing.T) {
	r := &fakeRenderer{beginErr: errors.New("surface lost")}
	e := NewEngine(WithRenderer(r), WithLogger(quietLogger()))
	p := newPass("batch", e.Lifecycle())
	e.AddPass(0, p)

	require.NoError(t, p.Submit(triangle(), common.IdentityMat4()))
	e.Frame()

	assert.Equal(t, []string{"begin"}, r.calls)
	assert.Equal(t, 0, p.Accumulator().Pending())
	assert.Equal(t, 1, p.LastFlush().Packed)
}

func TestSetPlayingResetsPasses(t *testing.T) {
	r := &fakeRenderer{}
	e := NewEngine(WithRenderer(r), WithLogger(quietLogger()))
	p := newPass("batch", e.Lifecycle())
	e.AddPass(0, p)

	require.NoError(t, p.Submit(triangle(), common.IdentityMat4()))
	e.Frame()
	require.Equal(t, 1, p.Accumulator().InstanceCount())

	e.SetPlaying(true)
	assert.True(t, e.Playing())
	assert.Equal(t, lifecycle.EnteredPlayMode, e.Lifecycle().Mode())
	assert.Equal(t, 0, p.Accumulator().InstanceCount())
	assert.False(t, p.Accumulator().InstanceBuffer().Allocated())

	// no transition when the mode does not change
	e.SetPlaying(true)
	assert.Equal(t, lifecycle.EnteredPlayMode, e.Lifecycle().Mode())

	e.SetPlaying(false)
	assert.Equal(t, lifecycle.EnteredEditMode, e.Lifecycle().Mode())
}

func TestRemovePassClosesIt(t *testing.T) {
	e := NewEngine(WithRenderer(&fakeRenderer{}), WithLogger(quietLogger()))
	p := newPass("batch", e.Lifecycle())
	e.AddPass(0, p)
	require.Equal(t, 1, e.Lifecycle().Subscribers())

	e.RemovePass(0)
	assert.Nil(t, e.Pass(0))
	assert.Equal(t, 0, e.Lifecycle().Subscribers())
}

func TestFrameFeedsProfiler(t *testing.T) {
	var out bytes.Buffer
	r := &fakeRenderer{}
	e := NewEngine(
		WithRenderer(r),
		WithLogger(quietLogger()),
		WithProfiling(true),
		WithProfiler(profiler.NewProfiler(profiler.WithInterval(time.Nanosecond), profiler.WithLogger(log.New(&out, "", 0)))),
	)
	p := newPass("batch", e.Lifecycle())
	e.AddPass(0, p)

	require.NoError(t, p.Submit(triangle(), common.IdentityMat4()))
	e.Frame()

	assert.Contains(t, e.Profiler().Summary(), "batch: 1 inst")
	assert.Contains(t, out.String(), "[Profiler]")
}

func TestCloseReleasesRenderer(t *testing.T) {
	r := &fakeRenderer{}
	e := NewEngine(WithRenderer(r), WithLogger(quietLogger()))
	e.AddPass(0, newPass("batch", e.Lifecycle()))

	e.Close()
	assert.True(t, r.released)
	assert.Nil(t, e.Pass(0))
	assert.Equal(t, 0, e.Lifecycle().Subscribers())
}
