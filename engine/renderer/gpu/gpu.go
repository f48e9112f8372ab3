// Package gpu defines the narrow GPU surface the engine core talks to: buffers, bind groups,
// render pipelines, depth textures and a per-frame render pass. The wgpu backend in this
// package implements it on top of cogentcore/webgpu; gputest implements it in memory.
package gpu

import (
	"errors"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// CopyBufferAlignment is the byte alignment required for buffer sizes and queue writes.
const CopyBufferAlignment = 4

// DepthFormat is the depth attachment format used by every render pipeline and depth texture.
const DepthFormat = wgpu.TextureFormatDepth32Float

// ErrSurfaceAcquire is returned by Surface.AcquireFrame when no frame could be obtained,
// for example because the surface was lost or became outdated.
var ErrSurfaceAcquire = errors.New("failed to acquire surface frame")

// Buffer is a GPU buffer of fixed size and usage.
type Buffer interface {
	// Label returns the debug label the buffer was created with.
	Label() string
	// Size returns the allocated size in bytes.
	Size() uint64
	// Usage returns the usage flags fixed at creation.
	Usage() wgpu.BufferUsage
	// Release frees the GPU allocation. The buffer must not be used afterwards.
	Release()
}

// BindGroup is a set of resources bound together at one bind group index.
type BindGroup interface {
	Label() string
	Release()
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface {
	Label() string
	Release()
}

// TextureView is a view of a texture usable as a render pass attachment.
type TextureView interface {
	Width() uint32
	Height() uint32
	Release()
}

// RenderPass records draw commands for the current frame.
type RenderPass interface {
	// SetPipeline binds the pipeline used by subsequent draws.
	SetPipeline(p RenderPipeline)

	// SetBindGroup binds group at index.
	SetBindGroup(index uint32, group BindGroup)

	// SetVertexBuffer binds size bytes of buffer starting at offset to the vertex buffer slot.
	SetVertexBuffer(slot uint32, buffer Buffer, offset, size uint64)

	// SetIndexBuffer binds size bytes of buffer starting at offset as a uint32 index buffer.
	SetIndexBuffer(buffer Buffer, offset, size uint64)

	// SetScissorRect restricts rasterization to the given rectangle in framebuffer pixels.
	SetScissorRect(x, y, width, height uint32)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// Device creates GPU objects and uploads data through the device queue.
// All calls are synchronous from the caller's point of view; execution is queued.
type Device interface {
	// CreateBuffer allocates a buffer of size bytes.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes, a multiple of CopyBufferAlignment
	//   - usage: usage flags, fixed for the buffer's lifetime
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: an error if allocation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error)

	// WriteBuffer queues a write of data into buffer at offset.
	//
	// Parameters:
	//   - buffer: the destination buffer, created with CopyDst usage
	//   - offset: destination offset in bytes
	//   - data: the bytes to write, length a multiple of CopyBufferAlignment
	//
	// Returns:
	//   - error: an error if the write is rejected
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error

	// CreateUniformBindGroup creates a bind group whose binding i is the whole of buffers[i],
	// visible to the vertex and fragment stages.
	//
	// Parameters:
	//   - label: debug label
	//   - buffers: uniform buffers in binding order
	//
	// Returns:
	//   - BindGroup: the new bind group
	//   - error: an error if creation fails
	CreateUniformBindGroup(label string, buffers ...Buffer) (BindGroup, error)

	// CreateTextureBindGroup uploads an RGBA8 texture and creates a bind group with the texture
	// view at binding 0 and a sampler at binding 1, visible to the fragment stage.
	//
	// Parameters:
	//   - label: debug label
	//   - texture: the pixel data to upload
	//   - sampler: sampler settings, zero fields use linear clamp-to-edge
	//
	// Returns:
	//   - BindGroup: the new bind group, which owns the texture and sampler
	//   - error: an error if creation fails
	CreateTextureBindGroup(label string, texture common.TextureStagingData, sampler common.SamplerStagingData) (BindGroup, error)

	// CreateRenderPipeline compiles desc against the surface color format and DepthFormat.
	// The pipeline layout takes bind group i's layout from bindGroups[i].
	//
	// Parameters:
	//   - desc: the pipeline description
	//   - bindGroups: representative bind groups, one per group index
	//
	// Returns:
	//   - RenderPipeline: the compiled pipeline
	//   - error: an error if compilation fails
	CreateRenderPipeline(desc pipeline.Pipeline, bindGroups ...BindGroup) (RenderPipeline, error)

	// CreateDepthTexture creates a depth attachment of the given size in DepthFormat.
	//
	// Parameters:
	//   - width: width in pixels
	//   - height: height in pixels
	//
	// Returns:
	//   - TextureView: the depth attachment view, which owns its texture
	//   - error: an error if creation fails
	CreateDepthTexture(width, height uint32) (TextureView, error)
}

// Frame is a single acquired surface image with one open render pass.
type Frame interface {
	// Pass returns the render pass targeting the frame.
	Pass() RenderPass
	// Present ends the pass, submits the recorded commands and presents the image.
	Present() error
}

// Surface is the presentable render target of a window.
type Surface interface {
	// Configure (re)configures the surface for the given size in pixels.
	Configure(width, height int)

	// AcquireFrame acquires the next surface image and begins a render pass that clears color
	// to clearColor and depth to 1.0.
	//
	// Parameters:
	//   - depth: the depth attachment, matching the surface size
	//   - clearColor: the color the frame is cleared to
	//
	// Returns:
	//   - Frame: the acquired frame
	//   - error: an error wrapping ErrSurfaceAcquire if no image is available
	AcquireFrame(depth TextureView, clearColor wgpu.Color) (Frame, error)
}

// Backend is a device and the surface it renders to.
type Backend interface {
	Device
	Surface

	// Release frees the device, surface and adapter.
	Release()
}
