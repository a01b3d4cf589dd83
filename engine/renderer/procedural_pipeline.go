package renderer

import (
	_ "embed"
	"strings"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/emitter"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/record"
	"github.com/Carmen-Shannon/oxy-procedural/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ProceduralPipelineKey is the key the procedural batch pipeline is registered under.
const ProceduralPipelineKey = "procedural_batch"

// DrawUniformsBinding is the binding of the per-draw uniform buffer, after the three record buffers.
const DrawUniformsBinding = 3

//go:embed assets/procedural.wgsl
var proceduralSource string

// ProceduralShaderSource returns the complete WGSL module of the procedural pipeline: the record structs, the
// draw uniform struct and the vertex-pulling entry points.
//
// Returns:
//   - string: the WGSL source
func ProceduralShaderSource() string {
	return strings.Join([]string{record.RecordSource, GPUDrawUniformsSource, proceduralSource}, "\n")
}

// ProceduralLayoutEntries returns the group 0 layout of the procedural pipeline: the vertex, index and instance
// record buffers as read-only storage visible to the vertex stage, then the draw uniforms.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the layout entries ordered by binding
func ProceduralLayoutEntries() []wgpu.BindGroupLayoutEntry {
	storage := func(slot emitter.Slot, recordSize int) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    uint32(slot),
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: uint64(recordSize),
			},
		}
	}

	uniforms := GPUDrawUniforms{}
	return []wgpu.BindGroupLayoutEntry{
		storage(emitter.SlotVertex, record.VertexRecordSize),
		storage(emitter.SlotIndex, record.IndexRecordSize),
		storage(emitter.SlotInstance, record.InstanceRecordSize),
		{
			Binding:    DrawUniformsBinding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(uniforms.Size()),
			},
		},
	}
}

// NewProceduralPipeline creates the render pipeline that draws procedural batches.
//
// Parameters:
//   - opts: additional PipelineBuilderOption functions applied after the procedural defaults
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
func NewProceduralPipeline(opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	defaults := []pipeline.PipelineBuilderOption{
		pipeline.WithSource(ProceduralShaderSource()),
		pipeline.WithLayoutEntries(ProceduralLayoutEntries()...),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	}
	return pipeline.NewPipeline(ProceduralPipelineKey, append(defaults, opts...)...)
}

// primitiveTopology maps an emitter topology to its WebGPU equivalent.
func primitiveTopology(t emitter.Topology) (wgpu.PrimitiveTopology, bool) {
	switch t {
	case emitter.TopologyTriangleList:
		return wgpu.PrimitiveTopologyTriangleList, true
	default:
		var unknown wgpu.PrimitiveTopology
		return unknown, false
	}
}
