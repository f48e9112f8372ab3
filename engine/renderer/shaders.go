package renderer

import (
	"github.com/Carmen-Shannon/echoes/engine/mesh"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/echoes/engine/renderer/resources"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// LitPipelineKey is the key of the pipeline returned by DefaultLitPipeline.
	LitPipelineKey = "lit"
	// LinePipelineKey is the key of the internal line pipeline.
	LinePipelineKey = "lines"
)

// sceneBindings declares bind group 0, shared by every scene pipeline.
const sceneBindings = `
struct Camera {
    position: vec4<f32>,
    view_proj: mat4x4<f32>,
};

struct Light {
    direction: vec3<f32>,
    color: vec3<f32>,
    ambient: vec3<f32>,
};

@group(0) @binding(0) var<uniform> camera: Camera;
@group(0) @binding(1) var<uniform> light: Light;
`

// LitShaderSource shades ColorNormalVertex meshes drawn with per-instance model and normal
// matrices, using one directional light plus an ambient term.
const LitShaderSource = sceneBindings + `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
    @location(2) normal: vec3<f32>,
};

struct InstanceInput {
    @location(5) model_0: vec4<f32>,
    @location(6) model_1: vec4<f32>,
    @location(7) model_2: vec4<f32>,
    @location(8) model_3: vec4<f32>,
    @location(9) normal_0: vec3<f32>,
    @location(10) normal_1: vec3<f32>,
    @location(11) normal_2: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec3<f32>,
    @location(1) normal: vec3<f32>,
};

@vertex
fn vs_main(vertex: VertexInput, instance: InstanceInput) -> VertexOutput {
    let model = mat4x4<f32>(instance.model_0, instance.model_1, instance.model_2, instance.model_3);
    let normal_matrix = mat3x3<f32>(instance.normal_0, instance.normal_1, instance.normal_2);

    var out: VertexOutput;
    out.clip_position = camera.view_proj * model * vec4<f32>(vertex.position, 1.0);
    out.color = vertex.color;
    out.normal = normal_matrix * vertex.normal;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let n = normalize(in.normal);
    let diffuse = max(dot(n, -light.direction), 0.0) * light.color;
    return vec4<f32>(in.color * (light.ambient + diffuse), 1.0);
}
`

// lineShaderSource draws ColorVertex line lists with the camera transform only.
const lineShaderSource = sceneBindings + `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(vertex: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_proj * vec4<f32>(vertex.position, 1.0);
    out.color = vertex.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

// DefaultLitPipeline describes the pipeline for mesh.ColorNormalVertex meshes with
// resources.InstanceData instances. Triangles wind counter-clockwise and back faces are culled.
//
// Returns:
//   - pipeline.Pipeline: the lit pipeline description
func DefaultLitPipeline() pipeline.Pipeline {
	return pipeline.NewPipeline(LitPipelineKey,
		pipeline.WithShaderSource(LitShaderSource),
		pipeline.WithVertexLayouts(mesh.ColorNormalVertexLayout(), resources.InstanceLayout()),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	)
}

func linePipeline() pipeline.Pipeline {
	return pipeline.NewPipeline(LinePipelineKey,
		pipeline.WithShaderSource(lineShaderSource),
		pipeline.WithVertexLayouts(mesh.ColorVertexLayout()),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue),
	)
}
