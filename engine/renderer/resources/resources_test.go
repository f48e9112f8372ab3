package resources

import (
	"iter"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/camera"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/Carmen-Shannon/echoes/engine/light"
	"github.com/Carmen-Shannon/echoes/engine/mesh"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	device   *gputest.Device
	res      Resources
	pipeline handle.Handle[Pipeline]
	mesh     handle.Handle[Mesh]
}

func newFixture(t *testing.T, options ...ResourcesBuilderOption) *fixture {
	t.Helper()
	device := gputest.NewDevice()
	res, err := NewResources(device, 800, 600, options...)
	require.NoError(t, err)

	p, err := res.AddPipeline(pipeline.NewPipeline("lit"))
	require.NoError(t, err)
	m, err := res.AddMesh(mesh.Cube(mesh.White))
	require.NoError(t, err)

	return &fixture{device: device, res: res, pipeline: p, mesh: m}
}

func (f *fixture) staged(t *testing.T, h handle.Handle[InstanceList]) []InstanceData {
	t.Helper()
	list, err := f.res.InstanceList(h)
	require.NoError(t, err)
	return list.Staged()
}

func TestNewResourcesCreatesSharedResources(t *testing.T) {
	device := gputest.NewDevice()
	res, err := NewResources(device, 640, 480)
	require.NoError(t, err)

	require.Len(t, device.Buffers, 2)
	assert.Equal(t, uint64(80), device.Buffers[0].Size())
	assert.Equal(t, uint64(48), device.Buffers[1].Size())

	group := res.CameraBindGroup().(*gputest.BindGroup)
	assert.Len(t, group.Buffers, 2)
	assert.Equal(t, uint32(640), res.DepthTextureView().Width())
	assert.Equal(t, uint32(480), res.DepthTextureView().Height())
}

func TestAddMeshUploadsBuffers(t *testing.T) {
	f := newFixture(t)

	m, err := f.res.Mesh(f.mesh)
	require.NoError(t, err)
	cube := mesh.Cube(mesh.White)

	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, cube.VertexData(), m.VertexBuffer().(*gputest.Buffer).Data)
	assert.Equal(t, common.SliceToBytes(cube.Indices()), m.IndexBuffer().(*gputest.Buffer).Data)
}

func TestAddMeshRejectsEmptyMesh(t *testing.T) {
	f := newFixture(t)

	_, err := f.res.AddMesh(mesh.NewBuilder[mesh.ColorVertex]())
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestAddPipelineUsesCameraBindGroup(t *testing.T) {
	f := newFixture(t)

	p, err := f.res.Pipeline(f.pipeline)
	require.NoError(t, err)
	compiled := p.RenderPipeline().(*gputest.RenderPipeline)

	assert.Equal(t, "lit", p.Descriptor().PipelineKey())
	assert.Equal(t, "lit", compiled.Label())
	require.Len(t, compiled.BindGroups, 1)
	assert.Same(t, f.res.CameraBindGroup(), compiled.BindGroups[0])
}

func TestAddInstanceListRejectsStaleHandles(t *testing.T) {
	f := newFixture(t)

	_, err := f.res.AddInstanceList(handle.Handle[Pipeline]{}, f.mesh)
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = f.res.AddInstanceList(f.pipeline, handle.Handle[Mesh]{})
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestDependencyInvariant(t *testing.T) {
	f := newFixture(t)
	l1, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	l2, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)

	assert.Equal(t, []handle.Handle[InstanceList]{l1, l2}, slices.Collect(f.res.PipelineDependents(f.pipeline)))
	assert.Equal(t, []handle.Handle[InstanceList]{l1, l2}, slices.Collect(f.res.MeshDependents(f.mesh)))

	assert.ErrorIs(t, f.res.RemoveMesh(f.mesh), ErrResourceInUse)
	assert.ErrorIs(t, f.res.RemovePipeline(f.pipeline), ErrResourceInUse)

	require.NoError(t, f.res.RemoveInstanceList(l1))
	assert.Equal(t, []handle.Handle[InstanceList]{l2}, slices.Collect(f.res.PipelineDependents(f.pipeline)))
	assert.ErrorIs(t, f.res.RemoveMesh(f.mesh), ErrResourceInUse)

	require.NoError(t, f.res.RemoveInstanceList(l2))
	assert.Empty(t, slices.Collect(f.res.MeshDependents(f.mesh)))

	require.NoError(t, f.res.RemoveMesh(f.mesh))
	require.NoError(t, f.res.RemovePipeline(f.pipeline))

	_, err = f.res.Mesh(f.mesh)
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = f.res.Pipeline(f.pipeline)
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.ErrorIs(t, f.res.RemoveMesh(f.mesh), ErrStaleHandle)
	assert.ErrorIs(t, f.res.RemovePipeline(f.pipeline), ErrStaleHandle)
	assert.Zero(t, countSeq2(f.res.Meshes()))
	assert.Zero(t, countSeq2(f.res.Pipelines()))
}

func TestRemoveInstanceListTwiceFails(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	list, err := f.res.InstanceList(l)
	require.NoError(t, err)
	buf := list.InstanceBuffer().(*gputest.Buffer)

	require.NoError(t, f.res.RemoveInstanceList(l))
	assert.True(t, buf.Released)
	assert.ErrorIs(t, f.res.RemoveInstanceList(l), ErrStaleHandle)

	_, err = f.res.AddInstance(l, common.IdentityTransform())
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestDependentsSwapRemoveOrder(t *testing.T) {
	f := newFixture(t)
	var lists []handle.Handle[InstanceList]
	for range 4 {
		l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
		require.NoError(t, err)
		lists = append(lists, l)
	}

	require.NoError(t, f.res.RemoveInstanceList(lists[1]))

	assert.Equal(t,
		[]handle.Handle[InstanceList]{lists[0], lists[3], lists[2]},
		slices.Collect(f.res.PipelineDependents(f.pipeline)),
	)
}

func TestInstanceLifecycle(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	r, err := f.res.AddInstance(l, common.IdentityTransform())
	require.NoError(t, err)

	require.NoError(t, f.res.SetInstanceActive(r, false))
	require.NoError(t, f.res.PrepareInstanceBuffers())
	list, err := f.res.InstanceList(l)
	require.NoError(t, err)
	assert.Empty(t, list.Staged())
	assert.Zero(t, list.BufferedInstanceCount())

	require.NoError(t, f.res.SetInstanceActive(r, true))
	require.NoError(t, f.res.PrepareInstanceBuffers())
	require.Len(t, list.Staged(), 1)
	assert.Equal(t, uint32(1), list.BufferedInstanceCount())
	assert.Equal(t, mgl32.Ident4(), list.Staged()[0].Model)
	assert.Equal(t, mgl32.Ident3(), list.Staged()[0].Normal)

	data := list.InstanceBuffer().(*gputest.Buffer).Data
	assert.Equal(t, common.SliceToBytes(list.Staged()), data[:InstanceDataSize])
}

func TestInstanceVisibility(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)

	t1 := common.TransformFromTranslation(mgl32.Vec3{1, 0, 0})
	t2 := common.TransformFromTranslation(mgl32.Vec3{2, 0, 0})
	t3 := common.TransformFromTranslation(mgl32.Vec3{3, 0, 0})
	_, err = f.res.AddInstance(l, t1)
	require.NoError(t, err)
	i2, err := f.res.AddInstance(l, t2)
	require.NoError(t, err)
	i3, err := f.res.AddInstance(l, t3)
	require.NoError(t, err)
	require.NoError(t, f.res.SetInstanceActive(i2, false))

	moved := common.TransformFromTranslation(mgl32.Vec3{0, 5, 0})
	require.NoError(t, f.res.UpdateInstance(i3, moved))
	require.NoError(t, f.res.PrepareInstanceBuffers())

	staged := f.staged(t, l)
	require.Len(t, staged, 2)
	assert.Equal(t, t1.Model(), staged[0].Model)
	assert.Equal(t, moved.Model(), staged[1].Model)

	list, err := f.res.InstanceList(l)
	require.NoError(t, err)
	assert.Equal(t, 3, list.InstanceCount())
	assert.Equal(t, 2, list.ActiveInstanceCount())
}

func TestChangesAfterRebuildAreInvisible(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	_, err = f.res.AddInstance(l, common.IdentityTransform())
	require.NoError(t, err)
	require.NoError(t, f.res.PrepareInstanceBuffers())

	_, err = f.res.AddInstance(l, common.IdentityTransform())
	require.NoError(t, err)

	list, err := f.res.InstanceList(l)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), list.BufferedInstanceCount())
	assert.Equal(t, 2, list.ActiveInstanceCount())
}

func TestStaleInstanceRef(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	r, err := f.res.AddInstance(l, common.IdentityTransform())
	require.NoError(t, err)

	require.NoError(t, f.res.RemoveInstance(r))
	reused, err := f.res.AddInstance(l, common.TransformFromTranslation(mgl32.Vec3{9, 9, 9}))
	require.NoError(t, err)
	assert.Equal(t, r.Instance.Index(), reused.Instance.Index())

	assert.ErrorIs(t, f.res.RemoveInstance(r), ErrStaleHandle)
	assert.ErrorIs(t, f.res.UpdateInstance(r, common.IdentityTransform()), ErrStaleHandle)
	assert.ErrorIs(t, f.res.SetInstanceActive(r, false), ErrStaleHandle)
	_, err = f.res.Instance(r)
	assert.ErrorIs(t, err, ErrStaleHandle)

	inst, err := f.res.Instance(reused)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{9, 9, 9}, inst.Transform.Translation)
	assert.True(t, inst.Active)
}

func TestParallelPackingMatchesSerial(t *testing.T) {
	serial := newFixture(t)
	parallel := newFixture(t, WithPackWorkers(4))

	build := func(f *fixture) []handle.Handle[InstanceList] {
		var lists []handle.Handle[InstanceList]
		for i := range 6 {
			l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
			require.NoError(t, err)
			for j := range 10 * (i + 1) {
				r, err := f.res.AddInstance(l, common.TransformFromTranslation(mgl32.Vec3{float32(i), float32(j), 0}))
				require.NoError(t, err)
				if j%3 == 0 {
					require.NoError(t, f.res.SetInstanceActive(r, false))
				}
			}
			lists = append(lists, l)
		}
		require.NoError(t, f.res.PrepareInstanceBuffers())
		return lists
	}

	sLists := build(serial)
	pLists := build(parallel)
	for i := range sLists {
		assert.Equal(t, serial.staged(t, sLists[i]), parallel.staged(t, pLists[i]))
	}
}

func TestInstanceBufferGrows(t *testing.T) {
	f := newFixture(t, WithInitialInstanceCapacity(4))
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	for range 5 {
		_, err := f.res.AddInstance(l, common.IdentityTransform())
		require.NoError(t, err)
	}

	require.NoError(t, f.res.PrepareInstanceBuffers())

	list, err := f.res.InstanceList(l)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, list.InstanceBuffer().Size(), 5*InstanceDataSize)
	assert.Equal(t, 5*InstanceDataSize, list.InstanceBufferSize())
}

func TestUpdateCameraAndLight(t *testing.T) {
	f := newFixture(t)
	cam := camera.NewCamera(camera.WithEye(mgl32.Vec3{1, 2, 3}))

	f.res.UpdateCamera(cam)
	f.res.UpdateLight(
		light.NewDirectionalLight(light.WithDirection(mgl32.Vec3{0, 0, -2})),
		light.NewAmbientLight(mgl32.Vec3{1, 1, 1}, 0.25),
	)

	camData := camera.Uniform(cam)
	assert.Equal(t, camData.Marshal(), f.device.Buffers[0].Data)
	lightData := light.Uniform(
		light.NewDirectionalLight(light.WithDirection(mgl32.Vec3{0, 0, -1})),
		light.NewAmbientLight(mgl32.Vec3{1, 1, 1}, 0.25),
	)
	assert.Equal(t, lightData.Marshal(), f.device.Buffers[1].Data)
}

func TestResizeDepthTexture(t *testing.T) {
	f := newFixture(t)
	old := f.res.DepthTextureView().(*gputest.TextureView)

	f.res.ResizeDepthTexture(0, 100)
	assert.Same(t, old, f.res.DepthTextureView())

	f.res.ResizeDepthTexture(1024, 768)
	assert.True(t, old.Released)
	assert.Equal(t, uint32(1024), f.res.DepthTextureView().Width())
}

func TestInstanceLayout(t *testing.T) {
	layout := InstanceLayout()

	assert.Equal(t, uint64(100), InstanceDataSize)
	assert.Equal(t, uint64(100), layout.ArrayStride)
	require.Len(t, layout.Attributes, 7)
	for i, want := range []uint64{0, 16, 32, 48, 64, 76, 88} {
		assert.Equal(t, want, layout.Attributes[i].Offset)
		assert.Equal(t, uint32(5+i), layout.Attributes[i].ShaderLocation)
	}
}

func TestReleaseFreesEverything(t *testing.T) {
	f := newFixture(t)
	l, err := f.res.AddInstanceList(f.pipeline, f.mesh)
	require.NoError(t, err)
	_, err = f.res.AddInstance(l, common.IdentityTransform())
	require.NoError(t, err)
	require.NoError(t, f.res.PrepareInstanceBuffers())

	f.res.Release()

	assert.Empty(t, f.device.LiveBuffers())
}

func countSeq2[K, V any](seq iter.Seq2[K, V]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
