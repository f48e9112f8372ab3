package renderer

import (
	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/mesh"
	"github.com/Carmen-Shannon/echoes/engine/renderer/buffer"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const lineBufferInitialSize = 32

var (
	red   = mgl32.Vec3{1, 0, 0}
	green = mgl32.Vec3{0, 1, 0}
	blue  = mgl32.Vec3{0, 0, 1}
)

// LineRenderer collects immediate-mode debug lines for one frame.
// Lines are queued with the Draw methods, uploaded once per frame by UpdateBufferAndClear and
// drawn by Render with the line pipeline bound.
type LineRenderer struct {
	vertices []mesh.ColorVertex
	buffer   buffer.ResizableBuffer
	count    uint32
}

// NewLineRenderer allocates the line vertex buffer on device.
//
// Parameters:
//   - device: the device that owns the vertex buffer
//
// Returns:
//   - *LineRenderer: the line renderer
//   - error: an error if the buffer cannot be created
func NewLineRenderer(device gpu.Device) (*LineRenderer, error) {
	buf, err := buffer.NewResizableBuffer(device, "line vertices", lineBufferInitialSize, wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	return &LineRenderer{buffer: buf}, nil
}

// DrawLine queues a line between two colored vertices for the current frame.
func (l *LineRenderer) DrawLine(start, end mesh.ColorVertex) {
	l.vertices = append(l.vertices, start, end)
}

// DrawLineColor queues a single-color line.
func (l *LineRenderer) DrawLineColor(start, end, color mgl32.Vec3) {
	l.DrawLine(mesh.NewColorVertex(start, color), mesh.NewColorVertex(end, color))
}

func (l *LineRenderer) DrawRedLine(start, end mgl32.Vec3) {
	l.DrawLineColor(start, end, red)
}

func (l *LineRenderer) DrawGreenLine(start, end mgl32.Vec3) {
	l.DrawLineColor(start, end, green)
}

func (l *LineRenderer) DrawBlueLine(start, end mgl32.Vec3) {
	l.DrawLineColor(start, end, blue)
}

// DrawAxes queues the X, Y and Z axes from origin in red, green and blue.
//
// Parameters:
//   - origin: the start of every axis
//   - length: the length of each axis
func (l *LineRenderer) DrawAxes(origin mgl32.Vec3, length float32) {
	l.DrawRedLine(origin, origin.Add(mgl32.Vec3{length, 0, 0}))
	l.DrawGreenLine(origin, origin.Add(mgl32.Vec3{0, length, 0}))
	l.DrawBlueLine(origin, origin.Add(mgl32.Vec3{0, 0, length}))
}

// Pending returns the number of vertices queued since the last upload.
func (l *LineRenderer) Pending() int {
	return len(l.vertices)
}

// UpdateBufferAndClear uploads the queued vertices, records their count for Render and clears
// the queue. A frame with no lines sets the count to zero, so old lines are not redrawn.
//
// Returns:
//   - error: an upload error; the count is zero in that case
func (l *LineRenderer) UpdateBufferAndClear() error {
	defer func() { l.vertices = l.vertices[:0] }()

	if len(l.vertices) == 0 {
		l.count = 0
		return nil
	}
	if err := l.buffer.Update(common.SliceToBytes(l.vertices)); err != nil {
		l.count = 0
		return err
	}
	l.count = uint32(len(l.vertices))
	return nil
}

// VertexCount returns the vertex count recorded by the last UpdateBufferAndClear.
func (l *LineRenderer) VertexCount() uint32 {
	return l.count
}

// Render draws the uploaded lines. The line pipeline must already be bound on pass.
//
// Parameters:
//   - pass: the frame's render pass
//   - cameraBindGroup: the camera bind group, bound at index 0
func (l *LineRenderer) Render(pass gpu.RenderPass, cameraBindGroup gpu.BindGroup) {
	if l.count == 0 {
		return
	}
	pass.SetBindGroup(0, cameraBindGroup)
	pass.SetVertexBuffer(0, l.buffer.Buffer(), 0, l.buffer.Size())
	pass.Draw(l.count, 1, 0, 0)
}

// Release frees the vertex buffer.
func (l *LineRenderer) Release() {
	l.buffer.Release()
}
