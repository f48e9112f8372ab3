// Package resources owns the GPU meshes, pipelines and instance lists of a renderer and the
// dependency bookkeeping between them, plus the camera, light and depth resources shared by
// every draw.
package resources

import (
	"fmt"
	"iter"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/camera"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/Carmen-Shannon/echoes/engine/light"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
)

// DefaultInstanceCapacity is the initial instance buffer capacity of a new instance list in bytes.
const DefaultInstanceCapacity = 100

type resourcesImpl struct {
	device gpu.Device
	label  string

	pipelines     *handle.Arena[Pipeline]
	meshes        *handle.Arena[Mesh]
	instanceLists *handle.Arena[InstanceList]

	pipelineDependents map[handle.Handle[Pipeline]]*dependents
	meshDependents     map[handle.Handle[Mesh]]*dependents

	camera          *cameraResource
	light           *lightResource
	cameraBindGroup gpu.BindGroup
	depthView       gpu.TextureView

	instanceCapacity uint64
	listCount        int
	packWorkers      int
	packPool         worker.DynamicWorkerPool
}

// Resources is the registry of GPU meshes, pipelines and instance lists.
//
// Every instance list references one pipeline and one mesh. The registry keeps, for each
// pipeline and each mesh, the ordered set of instance lists that depend on it, and refuses to
// remove a pipeline or mesh while that set is not empty, so a list never holds a dangling handle.
//
// Resources is not safe for concurrent use; it belongs to the render thread.
type Resources interface {
	// AddMesh uploads a mesh.
	//
	// Parameters:
	//   - src: the vertex and index data
	//
	// Returns:
	//   - handle.Handle[Mesh]: the mesh handle
	//   - error: ErrEmptyMesh if src has no indices, or an upload error
	AddMesh(src MeshSource) (handle.Handle[Mesh], error)

	// AddPipeline compiles a render pipeline whose bind group 0 is the camera bind group.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - handle.Handle[Pipeline]: the pipeline handle
	//   - error: a compilation error
	AddPipeline(desc pipeline.Pipeline) (handle.Handle[Pipeline], error)

	// AddInstanceList creates an empty instance list drawing mesh m with pipeline p.
	//
	// Parameters:
	//   - p: the pipeline
	//   - m: the mesh
	//
	// Returns:
	//   - handle.Handle[InstanceList]: the list handle
	//   - error: ErrStaleHandle if p or m is unknown, or a buffer allocation error
	AddInstanceList(p handle.Handle[Pipeline], m handle.Handle[Mesh]) (handle.Handle[InstanceList], error)

	// RemoveInstanceList removes a list and its instances and releases its buffer.
	//
	// Parameters:
	//   - h: the list
	//
	// Returns:
	//   - error: ErrStaleHandle if h is unknown, including on a second removal
	RemoveInstanceList(h handle.Handle[InstanceList]) error

	// RemovePipeline removes and releases a pipeline with no dependent instance lists.
	//
	// Parameters:
	//   - h: the pipeline
	//
	// Returns:
	//   - error: ErrResourceInUse if lists still use it, ErrStaleHandle if h is unknown
	RemovePipeline(h handle.Handle[Pipeline]) error

	// RemoveMesh removes and releases a mesh with no dependent instance lists.
	//
	// Parameters:
	//   - h: the mesh
	//
	// Returns:
	//   - error: ErrResourceInUse if lists still use it, ErrStaleHandle if h is unknown
	RemoveMesh(h handle.Handle[Mesh]) error

	// AddInstance adds an active instance to a list.
	//
	// Parameters:
	//   - list: the instance list
	//   - t: the instance transform
	//
	// Returns:
	//   - InstanceRef: the reference addressing the new instance
	//   - error: ErrStaleHandle if list is unknown
	AddInstance(list handle.Handle[InstanceList], t common.Transform) (InstanceRef, error)

	// UpdateInstance replaces an instance's transform.
	//
	// Parameters:
	//   - ref: the instance
	//   - t: the new transform
	//
	// Returns:
	//   - error: ErrStaleHandle if the list or instance is unknown
	UpdateInstance(ref InstanceRef, t common.Transform) error

	// SetInstanceActive shows or hides an instance.
	//
	// Parameters:
	//   - ref: the instance
	//   - active: whether the instance is drawn
	//
	// Returns:
	//   - error: ErrStaleHandle if the list or instance is unknown
	SetInstanceActive(ref InstanceRef, active bool) error

	// RemoveInstance removes an instance.
	//
	// Parameters:
	//   - ref: the instance
	//
	// Returns:
	//   - error: ErrStaleHandle if the list or instance is unknown
	RemoveInstance(ref InstanceRef) error

	// Instance returns a copy of an instance.
	//
	// Parameters:
	//   - ref: the instance
	//
	// Returns:
	//   - Instance: the instance
	//   - error: ErrStaleHandle if the list or instance is unknown
	Instance(ref InstanceRef) (Instance, error)

	// Mesh looks up a mesh.
	Mesh(h handle.Handle[Mesh]) (*Mesh, error)

	// Pipeline looks up a pipeline.
	Pipeline(h handle.Handle[Pipeline]) (*Pipeline, error)

	// InstanceList looks up an instance list.
	InstanceList(h handle.Handle[InstanceList]) (*InstanceList, error)

	// Meshes iterates the meshes in slot order.
	Meshes() iter.Seq2[handle.Handle[Mesh], *Mesh]

	// Pipelines iterates the pipelines in slot order.
	Pipelines() iter.Seq2[handle.Handle[Pipeline], *Pipeline]

	// InstanceLists iterates the instance lists in slot order.
	InstanceLists() iter.Seq2[handle.Handle[InstanceList], *InstanceList]

	// PipelineDependents iterates the lists drawn with a pipeline. Unknown pipelines yield nothing.
	PipelineDependents(p handle.Handle[Pipeline]) iter.Seq[handle.Handle[InstanceList]]

	// MeshDependents iterates the lists drawing a mesh. Unknown meshes yield nothing.
	MeshDependents(m handle.Handle[Mesh]) iter.Seq[handle.Handle[InstanceList]]

	// PrepareInstanceBuffers rebuilds every list's instance buffer from its active instances.
	// With more than one pack worker the CPU packing runs in parallel; uploads always happen
	// on the calling goroutine.
	//
	// Returns:
	//   - error: the first upload error
	PrepareInstanceBuffers() error

	// UpdateCamera writes the camera uniform. Failures are logged.
	//
	// Parameters:
	//   - cam: the camera
	UpdateCamera(cam camera.Camera)

	// UpdateLight writes the light uniform. Failures are logged.
	//
	// Parameters:
	//   - directional: the directional light
	//   - ambient: the ambient light
	UpdateLight(directional light.DirectionalLight, ambient light.AmbientLight)

	// ResizeDepthTexture replaces the depth texture. Zero sizes are ignored and failures are logged.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	ResizeDepthTexture(width, height uint32)

	// CameraBindGroup returns the bind group holding the camera (binding 0) and light (binding 1) uniforms.
	CameraBindGroup() gpu.BindGroup

	// DepthTextureView returns the depth attachment matching the surface size.
	DepthTextureView() gpu.TextureView

	// Release releases every GPU object the registry owns.
	Release()
}

var _ Resources = &resourcesImpl{}

// NewResources creates an empty registry with its camera, light and depth resources.
//
// Parameters:
//   - device: the GPU device
//   - width, height: the initial surface size in pixels
//   - options: functional options to configure the registry
//
// Returns:
//   - Resources: the registry
//   - error: an error if a shared GPU resource cannot be created
func NewResources(device gpu.Device, width, height uint32, options ...ResourcesBuilderOption) (Resources, error) {
	r := &resourcesImpl{
		device:             device,
		label:              "resources",
		pipelines:          handle.NewArena[Pipeline](8),
		meshes:             handle.NewArena[Mesh](16),
		instanceLists:      handle.NewArena[InstanceList](16),
		pipelineDependents: make(map[handle.Handle[Pipeline]]*dependents),
		meshDependents:     make(map[handle.Handle[Mesh]]*dependents),
		instanceCapacity:   DefaultInstanceCapacity,
		packWorkers:        1,
	}
	for _, option := range options {
		option(r)
	}

	var err error
	if r.camera, err = newCameraResource(device, r.label); err != nil {
		return nil, err
	}
	if r.light, err = newLightResource(device, r.label); err != nil {
		return nil, err
	}
	r.cameraBindGroup, err = device.CreateUniformBindGroup(r.label+" camera bind group", r.camera.buffer, r.light.buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera bind group: %w", err)
	}
	r.depthView, err = device.CreateDepthTexture(max(width, 1), max(height, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}

	if r.packWorkers > 1 {
		r.packPool = worker.NewDynamicWorkerPool(r.packWorkers, 256, 1*time.Second)
	}
	return r, nil
}

func (r *resourcesImpl) AddMesh(src MeshSource) (handle.Handle[Mesh], error) {
	m, err := newMesh(r.device, fmt.Sprintf("%s mesh %d", r.label, r.meshes.Len()), src)
	if err != nil {
		return handle.Handle[Mesh]{}, err
	}
	h := r.meshes.Insert(*m)
	r.meshDependents[h] = newDependents()
	return h, nil
}

func (r *resourcesImpl) AddPipeline(desc pipeline.Pipeline) (handle.Handle[Pipeline], error) {
	compiled, err := r.device.CreateRenderPipeline(desc, r.cameraBindGroup)
	if err != nil {
		return handle.Handle[Pipeline]{}, fmt.Errorf("failed to compile pipeline %q: %w", desc.PipelineKey(), err)
	}
	h := r.pipelines.Insert(Pipeline{desc: desc, compiled: compiled})
	r.pipelineDependents[h] = newDependents()
	return h, nil
}

func (r *resourcesImpl) AddInstanceList(p handle.Handle[Pipeline], m handle.Handle[Mesh]) (handle.Handle[InstanceList], error) {
	if !r.pipelines.Contains(p) {
		return handle.Handle[InstanceList]{}, fmt.Errorf("%w: pipeline %v", ErrStaleHandle, p)
	}
	if !r.meshes.Contains(m) {
		return handle.Handle[InstanceList]{}, fmt.Errorf("%w: mesh %v", ErrStaleHandle, m)
	}

	r.listCount++
	list, err := newInstanceList(r.device, fmt.Sprintf("%s instances %d", r.label, r.listCount), p, m, r.instanceCapacity)
	if err != nil {
		return handle.Handle[InstanceList]{}, err
	}

	h := r.instanceLists.Insert(*list)
	r.pipelineDependents[p].add(h)
	r.meshDependents[m].add(h)
	return h, nil
}

func (r *resourcesImpl) RemoveInstanceList(h handle.Handle[InstanceList]) error {
	list, ok := r.instanceLists.Get(h)
	if !ok {
		return fmt.Errorf("%w: instance list %v", ErrStaleHandle, h)
	}

	if !r.pipelineDependents[list.pipeline].remove(h) || !r.meshDependents[list.mesh].remove(h) {
		panic(fmt.Sprintf("instance list %v missing from its dependent sets", h))
	}
	removed, _ := r.instanceLists.Remove(h)
	removed.release()
	return nil
}

func (r *resourcesImpl) RemovePipeline(h handle.Handle[Pipeline]) error {
	deps, ok := r.pipelineDependents[h]
	if !ok || !r.pipelines.Contains(h) {
		return fmt.Errorf("%w: pipeline %v", ErrStaleHandle, h)
	}
	if deps.len() > 0 {
		return fmt.Errorf("%w: pipeline %v has %d instance lists", ErrResourceInUse, h, deps.len())
	}

	delete(r.pipelineDependents, h)
	p, _ := r.pipelines.Remove(h)
	p.release()
	return nil
}

func (r *resourcesImpl) RemoveMesh(h handle.Handle[Mesh]) error {
	deps, ok := r.meshDependents[h]
	if !ok || !r.meshes.Contains(h) {
		return fmt.Errorf("%w: mesh %v", ErrStaleHandle, h)
	}
	if deps.len() > 0 {
		return fmt.Errorf("%w: mesh %v has %d instance lists", ErrResourceInUse, h, deps.len())
	}

	delete(r.meshDependents, h)
	m, _ := r.meshes.Remove(h)
	m.release()
	return nil
}

func (r *resourcesImpl) AddInstance(list handle.Handle[InstanceList], t common.Transform) (InstanceRef, error) {
	l, err := r.InstanceList(list)
	if err != nil {
		return InstanceRef{}, err
	}
	return InstanceRef{List: list, Instance: l.AddInstance(t)}, nil
}

func (r *resourcesImpl) UpdateInstance(ref InstanceRef, t common.Transform) error {
	l, err := r.InstanceList(ref.List)
	if err != nil {
		return err
	}
	return l.UpdateInstance(ref.Instance, t)
}

func (r *resourcesImpl) SetInstanceActive(ref InstanceRef, active bool) error {
	l, err := r.InstanceList(ref.List)
	if err != nil {
		return err
	}
	return l.SetInstanceActive(ref.Instance, active)
}

func (r *resourcesImpl) RemoveInstance(ref InstanceRef) error {
	l, err := r.InstanceList(ref.List)
	if err != nil {
		return err
	}
	return l.RemoveInstance(ref.Instance)
}

func (r *resourcesImpl) Instance(ref InstanceRef) (Instance, error) {
	l, err := r.InstanceList(ref.List)
	if err != nil {
		return Instance{}, err
	}
	return l.Instance(ref.Instance)
}

func (r *resourcesImpl) Mesh(h handle.Handle[Mesh]) (*Mesh, error) {
	m, ok := r.meshes.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: mesh %v", ErrStaleHandle, h)
	}
	return m, nil
}

func (r *resourcesImpl) Pipeline(h handle.Handle[Pipeline]) (*Pipeline, error) {
	p, ok := r.pipelines.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: pipeline %v", ErrStaleHandle, h)
	}
	return p, nil
}

func (r *resourcesImpl) InstanceList(h handle.Handle[InstanceList]) (*InstanceList, error) {
	l, ok := r.instanceLists.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: instance list %v", ErrStaleHandle, h)
	}
	return l, nil
}

func (r *resourcesImpl) Meshes() iter.Seq2[handle.Handle[Mesh], *Mesh] {
	return r.meshes.All()
}

func (r *resourcesImpl) Pipelines() iter.Seq2[handle.Handle[Pipeline], *Pipeline] {
	return r.pipelines.All()
}

func (r *resourcesImpl) InstanceLists() iter.Seq2[handle.Handle[InstanceList], *InstanceList] {
	return r.instanceLists.All()
}

func (r *resourcesImpl) PipelineDependents(p handle.Handle[Pipeline]) iter.Seq[handle.Handle[InstanceList]] {
	if deps, ok := r.pipelineDependents[p]; ok {
		return deps.all()
	}
	return func(func(handle.Handle[InstanceList]) bool) {}
}

func (r *resourcesImpl) MeshDependents(m handle.Handle[Mesh]) iter.Seq[handle.Handle[InstanceList]] {
	if deps, ok := r.meshDependents[m]; ok {
		return deps.all()
	}
	return func(func(handle.Handle[InstanceList]) bool) {}
}

func (r *resourcesImpl) PrepareInstanceBuffers() error {
	if r.packPool == nil || r.instanceLists.Len() < 2 {
		for h, list := range r.instanceLists.All() {
			if err := list.BuildAndUploadInstanceBuffer(); err != nil {
				return fmt.Errorf("failed to rebuild instance list %v: %w", h, err)
			}
		}
		return nil
	}

	// Phase 1: pack every list on the pool. Each task only touches its own list's staging data,
	// and the WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	taskID := 0
	for _, list := range r.instanceLists.All() {
		wg.Add(1)
		l := list
		r.packPool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				l.Pack()
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()

	// Phase 2: serial upload on the calling goroutine.
	for h, list := range r.instanceLists.All() {
		if err := list.Upload(); err != nil {
			return fmt.Errorf("failed to upload instance list %v: %w", h, err)
		}
	}
	return nil
}

func (r *resourcesImpl) UpdateCamera(cam camera.Camera) {
	if err := r.camera.update(cam); err != nil {
		log.Printf("[Resources] failed to update camera uniform: %v", err)
	}
}

func (r *resourcesImpl) UpdateLight(directional light.DirectionalLight, ambient light.AmbientLight) {
	if err := r.light.update(directional, ambient); err != nil {
		log.Printf("[Resources] failed to update light uniform: %v", err)
	}
}

func (r *resourcesImpl) ResizeDepthTexture(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	view, err := r.device.CreateDepthTexture(width, height)
	if err != nil {
		log.Printf("[Resources] failed to resize depth texture to %dx%d: %v", width, height, err)
		return
	}
	r.depthView.Release()
	r.depthView = view
}

func (r *resourcesImpl) CameraBindGroup() gpu.BindGroup {
	return r.cameraBindGroup
}

func (r *resourcesImpl) DepthTextureView() gpu.TextureView {
	return r.depthView
}

func (r *resourcesImpl) Release() {
	for _, list := range r.instanceLists.All() {
		list.release()
	}
	for _, p := range r.pipelines.All() {
		p.release()
	}
	for _, m := range r.meshes.All() {
		m.release()
	}
	r.cameraBindGroup.Release()
	r.camera.buffer.Release()
	r.light.buffer.Release()
	r.depthView.Release()
}
