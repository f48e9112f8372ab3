// Package renderer assembles frames: it rebuilds instance buffers, uploads debug lines and UI,
// and draws every instance list grouped by pipeline into the window surface.
package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/camera"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/Carmen-Shannon/echoes/engine/light"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/echoes/engine/renderer/resources"
	"github.com/Carmen-Shannon/echoes/engine/renderer/ui"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceLost is returned by Render when the surface could not be acquired for
// maxSurfaceFailures consecutive frames.
var ErrSurfaceLost = errors.New("surface lost")

const maxSurfaceFailures = 3

// DefaultClearColor is the color every frame is cleared to.
var DefaultClearColor = wgpu.Color{R: 0.01, G: 0.01, B: 0.01, A: 1}

// Target is the window a renderer presents to.
type Target interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer owns the GPU backend, the resource registry, the line renderer and the UI painter,
// and draws one frame per Render call.
//
// A Renderer belongs to the thread that created it.
type Renderer interface {
	// Resources returns the registry of meshes, pipelines and instance lists.
	Resources() resources.Resources

	// Lines returns the debug line renderer. Lines queued before Render are drawn in that frame.
	Lines() *LineRenderer

	AddMesh(src resources.MeshSource) (handle.Handle[resources.Mesh], error)
	AddPipeline(desc pipeline.Pipeline) (handle.Handle[resources.Pipeline], error)
	AddInstanceList(p handle.Handle[resources.Pipeline], m handle.Handle[resources.Mesh]) (handle.Handle[resources.InstanceList], error)
	RemoveInstanceList(h handle.Handle[resources.InstanceList]) error
	RemovePipeline(h handle.Handle[resources.Pipeline]) error
	RemoveMesh(h handle.Handle[resources.Mesh]) error
	AddInstance(list handle.Handle[resources.InstanceList], t common.Transform) (resources.InstanceRef, error)
	UpdateInstance(ref resources.InstanceRef, t common.Transform) error
	SetInstanceActive(ref resources.InstanceRef, active bool) error
	RemoveInstance(ref resources.InstanceRef) error

	// UpdateCamera writes the camera uniform used by the next frame.
	UpdateCamera(cam camera.Camera)

	// UpdateLight writes the light uniform used by the next frame.
	UpdateLight(directional light.DirectionalLight, ambient light.AmbientLight)

	// SubmitUI hands the UI output of the current frame to the painter.
	//
	// Parameters:
	//   - frame: the tessellated UI frame
	//
	// Returns:
	//   - error: ui.ErrFramePending if the previous UI frame was not rendered yet
	SubmitUI(frame ui.FrameData) error

	// Resize reconfigures the surface, the depth texture and the UI screen size.
	// Sizes with a zero or negative dimension are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Size returns the current surface size in pixels.
	Size() (width, height int)

	// Render draws one frame.
	//
	// A surface acquisition failure is logged, the surface is reconfigured and the frame is
	// skipped without error, unless it is the maxSurfaceFailures-th consecutive failure.
	//
	// Returns:
	//   - error: an error wrapping ErrSurfaceLost after repeated acquisition failures, or an
	//     upload or present error
	Render() error

	// Release frees every GPU object, the backend included.
	Release()
}

type renderer struct {
	backend   gpu.Backend
	resources resources.Resources
	lines     *LineRenderer
	painter   ui.Painter

	linePipeline gpu.RenderPipeline

	width, height int
	clearColor    wgpu.Color
	failures      int

	backendOptions  []gpu.BackendBuilderOption
	resourceOptions []resources.ResourcesBuilderOption
}

var _ Renderer = &renderer{}

// NewRenderer creates the wgpu backend for target and a renderer on top of it.
// Panics if the GPU cannot be initialized.
//
// Parameters:
//   - target: the window to present to
//   - options: functional options for the backend, the registry and the clear color
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(target Target, options ...RendererBuilderOption) Renderer {
	cfg := &renderer{}
	for _, opt := range options {
		opt(cfg)
	}
	backend := gpu.NewWGPUBackend(target.SurfaceDescriptor(), cfg.backendOptions...)

	r, err := newRenderer(backend, target.Width(), target.Height(), options...)
	if err != nil {
		backend.Release()
		panic(err)
	}
	return r
}

func newRenderer(backend gpu.Backend, width, height int, options ...RendererBuilderOption) (*renderer, error) {
	r := &renderer{
		backend:    backend,
		width:      max(width, 1),
		height:     max(height, 1),
		clearColor: DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}

	backend.Configure(r.width, r.height)

	res, err := resources.NewResources(backend, uint32(r.width), uint32(r.height), r.resourceOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resources: %w", err)
	}
	r.resources = res

	if r.lines, err = NewLineRenderer(backend); err != nil {
		r.releaseObjects()
		return nil, fmt.Errorf("failed to create line renderer: %w", err)
	}
	if r.linePipeline, err = backend.CreateRenderPipeline(linePipeline(), res.CameraBindGroup()); err != nil {
		r.releaseObjects()
		return nil, fmt.Errorf("failed to create line pipeline: %w", err)
	}
	if r.painter, err = ui.NewPainter(backend, uint32(r.width), uint32(r.height)); err != nil {
		r.releaseObjects()
		return nil, fmt.Errorf("failed to create ui painter: %w", err)
	}
	return r, nil
}

func (r *renderer) Resources() resources.Resources {
	return r.resources
}

func (r *renderer) Lines() *LineRenderer {
	return r.lines
}

func (r *renderer) AddMesh(src resources.MeshSource) (handle.Handle[resources.Mesh], error) {
	return r.resources.AddMesh(src)
}

func (r *renderer) AddPipeline(desc pipeline.Pipeline) (handle.Handle[resources.Pipeline], error) {
	return r.resources.AddPipeline(desc)
}

func (r *renderer) AddInstanceList(p handle.Handle[resources.Pipeline], m handle.Handle[resources.Mesh]) (handle.Handle[resources.InstanceList], error) {
	return r.resources.AddInstanceList(p, m)
}

func (r *renderer) RemoveInstanceList(h handle.Handle[resources.InstanceList]) error {
	return r.resources.RemoveInstanceList(h)
}

func (r *renderer) RemovePipeline(h handle.Handle[resources.Pipeline]) error {
	return r.resources.RemovePipeline(h)
}

func (r *renderer) RemoveMesh(h handle.Handle[resources.Mesh]) error {
	return r.resources.RemoveMesh(h)
}

func (r *renderer) AddInstance(list handle.Handle[resources.InstanceList], t common.Transform) (resources.InstanceRef, error) {
	return r.resources.AddInstance(list, t)
}

func (r *renderer) UpdateInstance(ref resources.InstanceRef, t common.Transform) error {
	return r.resources.UpdateInstance(ref, t)
}

func (r *renderer) SetInstanceActive(ref resources.InstanceRef, active bool) error {
	return r.resources.SetInstanceActive(ref, active)
}

func (r *renderer) RemoveInstance(ref resources.InstanceRef) error {
	return r.resources.RemoveInstance(ref)
}

func (r *renderer) UpdateCamera(cam camera.Camera) {
	r.resources.UpdateCamera(cam)
}

func (r *renderer) UpdateLight(directional light.DirectionalLight, ambient light.AmbientLight) {
	r.resources.UpdateLight(directional, ambient)
}

func (r *renderer) SubmitUI(frame ui.FrameData) error {
	return r.painter.Submit(frame)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.backend.Configure(width, height)
	r.resources.ResizeDepthTexture(uint32(width), uint32(height))
	r.painter.Resize(uint32(width), uint32(height))
}

func (r *renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *renderer) Render() error {
	if err := r.resources.PrepareInstanceBuffers(); err != nil {
		r.painter.Discard()
		return fmt.Errorf("failed to prepare instance buffers: %w", err)
	}
	if err := r.lines.UpdateBufferAndClear(); err != nil {
		r.painter.Discard()
		return fmt.Errorf("failed to upload lines: %w", err)
	}
	if err := r.painter.Update(); err != nil {
		r.painter.Discard()
		return fmt.Errorf("failed to upload ui: %w", err)
	}

	frame, err := r.backend.AcquireFrame(r.resources.DepthTextureView(), r.clearColor)
	if err != nil {
		r.painter.Discard()
		r.failures++
		if r.failures >= maxSurfaceFailures {
			return fmt.Errorf("%w after %d attempts: %w", ErrSurfaceLost, r.failures, err)
		}
		log.Printf("[Renderer] skipping frame: %v", err)
		r.backend.Configure(r.width, r.height)
		return nil
	}
	r.failures = 0

	pass := frame.Pass()
	r.drawInstanceLists(pass)

	if r.lines.VertexCount() > 0 {
		pass.SetPipeline(r.linePipeline)
		r.lines.Render(pass, r.resources.CameraBindGroup())
	}

	r.painter.Paint(pass)

	if err := frame.Present(); err != nil {
		return fmt.Errorf("failed to present frame: %w", err)
	}
	return nil
}

// drawInstanceLists issues one instanced draw per non-empty list, grouped by pipeline.
// A list whose mesh or pipeline no longer resolves means the registry lost track of a
// dependency, which is a programming error.
func (r *renderer) drawInstanceLists(pass gpu.RenderPass) {
	cameraGroup := r.resources.CameraBindGroup()
	for ph, p := range r.resources.Pipelines() {
		bound := false
		for lh := range r.resources.PipelineDependents(ph) {
			list, err := r.resources.InstanceList(lh)
			if err != nil {
				panic(fmt.Sprintf("pipeline %v lists dangling instance list: %v", ph, err))
			}
			count := list.BufferedInstanceCount()
			if count == 0 {
				continue
			}
			m, err := r.resources.Mesh(list.Mesh())
			if err != nil {
				panic(fmt.Sprintf("instance list %v references missing mesh: %v", lh, err))
			}

			if !bound {
				pass.SetPipeline(p.RenderPipeline())
				bound = true
			}
			pass.SetBindGroup(0, cameraGroup)
			pass.SetVertexBuffer(0, m.VertexBuffer(), 0, m.VertexBuffer().Size())
			pass.SetVertexBuffer(1, list.InstanceBuffer(), 0, list.InstanceBufferSize())
			pass.SetIndexBuffer(m.IndexBuffer(), 0, m.IndexBuffer().Size())
			pass.DrawIndexed(m.IndexCount(), count, 0, 0, 0)
		}
	}
}

func (r *renderer) Release() {
	r.releaseObjects()
	r.backend.Release()
}

// releaseObjects frees everything created on the backend, but not the backend itself.
func (r *renderer) releaseObjects() {
	if r.painter != nil {
		r.painter.Release()
	}
	if r.linePipeline != nil {
		r.linePipeline.Release()
	}
	if r.lines != nil {
		r.lines.Release()
	}
	if r.resources != nil {
		r.resources.Release()
	}
}
