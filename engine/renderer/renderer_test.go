package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/Carmen-Shannon/echoes/engine/mesh"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/echoes/engine/renderer/resources"
	"github.com/Carmen-Shannon/echoes/engine/renderer/ui"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *gputest.Backend) {
	t.Helper()
	backend := gputest.NewBackend()
	r, err := newRenderer(backend, 800, 600, options...)
	require.NoError(t, err)
	return r, backend
}

func addList(t *testing.T, r Renderer, p handle.Handle[resources.Pipeline], m handle.Handle[resources.Mesh], instances int) handle.Handle[resources.InstanceList] {
	t.Helper()
	list, err := r.AddInstanceList(p, m)
	require.NoError(t, err)
	for i := range instances {
		_, err := r.AddInstance(list, common.TransformFromTranslation(mgl32.Vec3{float32(i), 0, 0}))
		require.NoError(t, err)
	}
	return list
}

func commandNames(frame *gputest.Frame) []string {
	names := make([]string, 0, len(frame.Commands))
	for _, c := range frame.Commands {
		names = append(names, c.Name)
	}
	return names
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	r, backend := newTestRenderer(t)

	assert.Equal(t, 800, backend.Surface.Width)
	assert.Equal(t, 600, backend.Surface.Height)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestRenderEmptyScene(t *testing.T) {
	r, backend := newTestRenderer(t)

	require.NoError(t, r.Render())

	frame := backend.LastFrame()
	require.NotNil(t, frame)
	assert.True(t, frame.Presented)
	assert.Empty(t, frame.Commands)
	assert.Equal(t, DefaultClearColor, frame.ClearColor)
	assert.Same(t, r.Resources().DepthTextureView(), frame.Depth)
}

func TestRenderGroupsDrawsByPipeline(t *testing.T) {
	r, backend := newTestRenderer(t)

	lit, err := r.AddPipeline(DefaultLitPipeline())
	require.NoError(t, err)
	flat, err := r.AddPipeline(pipeline.NewPipeline("flat", pipeline.WithShaderSource(LitShaderSource)))
	require.NoError(t, err)
	cube, err := r.AddMesh(mesh.Cube(mesh.White))
	require.NoError(t, err)
	plane, err := r.AddMesh(mesh.Plane(10, mesh.White))
	require.NoError(t, err)

	addList(t, r, lit, cube, 2)
	addList(t, r, flat, plane, 1)
	addList(t, r, lit, plane, 3)
	addList(t, r, lit, cube, 0)

	require.NoError(t, r.Render())
	frame := backend.LastFrame()

	var pipelines []string
	for _, c := range frame.Commands {
		if c.Name == "SetPipeline" {
			pipelines = append(pipelines, c.Pipeline.Label())
		}
	}
	assert.Equal(t, []string{LitPipelineKey, "flat"}, pipelines)

	draws := frame.Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, []uint32{2, 3, 1}, []uint32{draws[0].Instances, draws[1].Instances, draws[2].Instances})
	assert.Equal(t, []uint32{36, 6, 6}, []uint32{draws[0].Count, draws[1].Count, draws[2].Count})

	assert.Equal(t, []string{
		"SetPipeline", "SetBindGroup", "SetVertexBuffer", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
		"SetBindGroup", "SetVertexBuffer", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
		"SetPipeline", "SetBindGroup", "SetVertexBuffer", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
	}, commandNames(frame))

	instanceSlot := frame.Commands[3]
	assert.Equal(t, uint32(1), instanceSlot.Slot)
	assert.Equal(t, 2*resources.InstanceDataSize, instanceSlot.Size)
	assert.Same(t, r.Resources().CameraBindGroup(), frame.Commands[1].BindGroup)
}

func TestRenderSkipsInactiveInstances(t *testing.T) {
	r, backend := newTestRenderer(t)

	lit, err := r.AddPipeline(DefaultLitPipeline())
	require.NoError(t, err)
	cube, err := r.AddMesh(mesh.Cube(mesh.White))
	require.NoError(t, err)
	list := addList(t, r, lit, cube, 0)
	ref, err := r.AddInstance(list, common.IdentityTransform())
	require.NoError(t, err)
	require.NoError(t, r.SetInstanceActive(ref, false))

	require.NoError(t, r.Render())
	assert.Empty(t, backend.LastFrame().Draws())

	require.NoError(t, r.SetInstanceActive(ref, true))
	require.NoError(t, r.Render())
	require.Len(t, backend.LastFrame().Draws(), 1)
}

func TestRenderLines(t *testing.T) {
	r, backend := newTestRenderer(t)

	r.Lines().DrawAxes(mgl32.Vec3{}, 1)
	require.NoError(t, r.Render())

	frame := backend.LastFrame()
	require.Len(t, frame.Draws(), 1)
	assert.Equal(t, "Draw", frame.Draws()[0].Name)
	assert.Equal(t, uint32(6), frame.Draws()[0].Count)
	assert.Equal(t, LinePipelineKey, frame.Commands[0].Pipeline.Label())

	require.NoError(t, r.Render())
	assert.Empty(t, backend.LastFrame().Draws())
}

func TestRenderUIAfterScene(t *testing.T) {
	r, backend := newTestRenderer(t)

	r.Lines().DrawRedLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	prim := ui.ClippedPrimitive{
		ClipRect: ui.ClipRect{MaxX: 100, MaxY: 100},
		Vertices: make([]ui.Vertex, 3),
		Indices:  []uint32{0, 1, 2},
	}
	require.NoError(t, r.SubmitUI(ui.FrameData{Primitives: []ui.ClippedPrimitive{prim}, PixelsPerPoint: 1}))
	assert.ErrorIs(t, r.SubmitUI(ui.FrameData{}), ui.ErrFramePending)

	require.NoError(t, r.Render())
	draws := backend.LastFrame().Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, "Draw", draws[0].Name)
	assert.Equal(t, "DrawIndexed", draws[1].Name)

	assert.NoError(t, r.SubmitUI(ui.FrameData{}))
}

func TestRenderSkipsFrameOnSurfaceFailure(t *testing.T) {
	r, backend := newTestRenderer(t)
	configures := backend.Configures

	backend.FailAcquire = 1
	require.NoError(t, r.SubmitUI(ui.FrameData{}))
	require.NoError(t, r.Render())
	assert.Empty(t, backend.Frames)
	assert.Equal(t, configures+1, backend.Configures)
	assert.NoError(t, r.SubmitUI(ui.FrameData{}))

	require.NoError(t, r.Render())
	assert.Len(t, backend.Frames, 1)
}

func TestRenderReportsSurfaceLost(t *testing.T) {
	r, backend := newTestRenderer(t)

	backend.FailAcquire = maxSurfaceFailures
	for range maxSurfaceFailures - 1 {
		require.NoError(t, r.Render())
	}
	err := r.Render()
	assert.ErrorIs(t, err, ErrSurfaceLost)
	assert.ErrorIs(t, err, gpu.ErrSurfaceAcquire)

	require.NoError(t, r.Render())
	assert.Len(t, backend.Frames, 1)
}

func TestSurfaceFailureCountResetsOnSuccess(t *testing.T) {
	r, backend := newTestRenderer(t)

	for range 3 {
		backend.FailAcquire = maxSurfaceFailures - 1
		for range maxSurfaceFailures {
			require.NoError(t, r.Render())
		}
	}
	assert.Len(t, backend.Frames, 3)
}

func TestResize(t *testing.T) {
	r, backend := newTestRenderer(t)
	configures := backend.Configures

	r.Resize(0, 100)
	r.Resize(100, -1)
	assert.Equal(t, configures, backend.Configures)

	r.Resize(1024, 768)
	assert.Equal(t, 1024, backend.Surface.Width)
	assert.Equal(t, 768, backend.Surface.Height)
	assert.Equal(t, uint32(1024), r.Resources().DepthTextureView().Width())
	assert.Equal(t, uint32(768), r.Resources().DepthTextureView().Height())

	require.NoError(t, r.Render())
	assert.Same(t, r.Resources().DepthTextureView(), backend.LastFrame().Depth)
}

func TestRegistryErrorsForwarded(t *testing.T) {
	r, _ := newTestRenderer(t)

	lit, err := r.AddPipeline(DefaultLitPipeline())
	require.NoError(t, err)
	cube, err := r.AddMesh(mesh.Cube(mesh.White))
	require.NoError(t, err)
	list := addList(t, r, lit, cube, 1)

	assert.ErrorIs(t, r.RemovePipeline(lit), resources.ErrResourceInUse)
	assert.ErrorIs(t, r.RemoveMesh(cube), resources.ErrResourceInUse)
	require.NoError(t, r.RemoveInstanceList(list))
	assert.ErrorIs(t, r.RemoveInstanceList(list), resources.ErrStaleHandle)
	assert.NoError(t, r.RemovePipeline(lit))
	assert.NoError(t, r.RemoveMesh(cube))
}

func TestDefaultLitPipelineLayouts(t *testing.T) {
	p := DefaultLitPipeline()

	require.Len(t, p.VertexLayouts(), 2)
	assert.Equal(t, mesh.ColorNormalVertexLayout().ArrayStride, p.VertexLayouts()[0].ArrayStride)
	assert.Equal(t, resources.InstanceDataSize, p.VertexLayouts()[1].ArrayStride)
}

func TestPipelineRasterState(t *testing.T) {
	lit := DefaultLitPipeline()
	assert.Equal(t, wgpu.FrontFaceCCW, lit.FrontFace())
	assert.Equal(t, wgpu.CullModeBack, lit.CullMode())
	assert.Equal(t, wgpu.ColorWriteMaskAll, lit.WriteMask())

	lines := linePipeline()
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, lines.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue, lines.WriteMask())
}

func TestRenderUploadFailureDiscardsUI(t *testing.T) {
	r, backend := newTestRenderer(t)

	r.Lines().DrawAxes(mgl32.Vec3{}, 1)
	require.NoError(t, r.SubmitUI(ui.FrameData{}))
	backend.CreateBufferErr = errors.New("out of memory")

	assert.Error(t, r.Render())
	assert.Empty(t, backend.Frames)

	backend.CreateBufferErr = nil
	assert.NoError(t, r.SubmitUI(ui.FrameData{}))
	require.NoError(t, r.Render())
	assert.Len(t, backend.Frames, 1)
}

func TestRelease(t *testing.T) {
	r, backend := newTestRenderer(t)

	lit, err := r.AddPipeline(DefaultLitPipeline())
	require.NoError(t, err)
	cube, err := r.AddMesh(mesh.Cube(mesh.White))
	require.NoError(t, err)
	addList(t, r, lit, cube, 4)
	r.Lines().DrawAxes(mgl32.Vec3{}, 1)
	require.NoError(t, r.Render())

	r.Release()
	assert.True(t, backend.Released)
	assert.Empty(t, backend.LiveBuffers())
}
