package gputest

import (
	"fmt"

	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Command is one recorded render pass call. Only the fields relevant to Name are set.
type Command struct {
	Name      string
	Pipeline  gpu.RenderPipeline
	BindGroup gpu.BindGroup
	Buffer    gpu.Buffer
	Slot      uint32
	Size      uint64
	// Count is the vertex or index count, Instances the instance count, First the first vertex or index.
	Count     uint32
	Instances uint32
	First     uint32
	Scissor   [4]uint32
}

// Frame is a recorded frame.
type Frame struct {
	ClearColor wgpu.Color
	Depth      gpu.TextureView
	Commands   []Command
	Presented  bool
}

func (f *Frame) Pass() gpu.RenderPass {
	return &renderPass{frame: f}
}

func (f *Frame) Present() error {
	if f.Presented {
		return fmt.Errorf("frame presented twice")
	}
	f.Presented = true
	return nil
}

// Draws returns the Draw and DrawIndexed commands of the frame in order.
//
// Returns:
//   - []Command: the draw commands
func (f *Frame) Draws() []Command {
	var draws []Command
	for _, c := range f.Commands {
		if c.Name == "Draw" || c.Name == "DrawIndexed" {
			draws = append(draws, c)
		}
	}
	return draws
}

// Surface is a recording gpu.Surface.
type Surface struct {
	Width, Height int
	Configures    int
	Frames        []*Frame

	// FailAcquire is the number of upcoming AcquireFrame calls that fail.
	FailAcquire int
}

var _ gpu.Surface = &Surface{}

func (s *Surface) Configure(width, height int) {
	s.Width = width
	s.Height = height
	s.Configures++
}

func (s *Surface) AcquireFrame(depth gpu.TextureView, clearColor wgpu.Color) (gpu.Frame, error) {
	if s.FailAcquire > 0 {
		s.FailAcquire--
		return nil, fmt.Errorf("%w: surface lost", gpu.ErrSurfaceAcquire)
	}
	f := &Frame{ClearColor: clearColor, Depth: depth}
	s.Frames = append(s.Frames, f)
	return f, nil
}

// LastFrame returns the most recently acquired frame, or nil.
//
// Returns:
//   - *Frame: the last frame
func (s *Surface) LastFrame() *Frame {
	if len(s.Frames) == 0 {
		return nil
	}
	return s.Frames[len(s.Frames)-1]
}

type renderPass struct {
	frame *Frame
}

func (p *renderPass) record(c Command) {
	p.frame.Commands = append(p.frame.Commands, c)
}

func (p *renderPass) SetPipeline(rp gpu.RenderPipeline) {
	p.record(Command{Name: "SetPipeline", Pipeline: rp})
}

func (p *renderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	p.record(Command{Name: "SetBindGroup", Slot: index, BindGroup: group})
}

func (p *renderPass) SetVertexBuffer(slot uint32, buffer gpu.Buffer, offset, size uint64) {
	p.record(Command{Name: "SetVertexBuffer", Slot: slot, Buffer: buffer, Size: size})
}

func (p *renderPass) SetIndexBuffer(buffer gpu.Buffer, offset, size uint64) {
	p.record(Command{Name: "SetIndexBuffer", Buffer: buffer, Size: size})
}

func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	p.record(Command{Name: "SetScissorRect", Scissor: [4]uint32{x, y, width, height}})
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record(Command{Name: "Draw", Count: vertexCount, Instances: instanceCount, First: firstVertex})
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record(Command{Name: "DrawIndexed", Count: indexCount, Instances: instanceCount, First: firstIndex, Slot: uint32(baseVertex)})
}
