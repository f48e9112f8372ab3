// Package gputest provides an in-memory gpu.Device and gpu.Surface that record everything
// they are asked to do, for tests that need to observe GPU traffic without an adapter.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is a recorded buffer. Data holds everything written to it.
type Buffer struct {
	label    string
	size     uint64
	usage    wgpu.BufferUsage
	Data     []byte
	Released bool
}

func (b *Buffer) Label() string           { return b.label }
func (b *Buffer) Size() uint64            { return b.size }
func (b *Buffer) Usage() wgpu.BufferUsage { return b.usage }
func (b *Buffer) Release()                { b.Released = true }

// BindGroup is a recorded bind group.
type BindGroup struct {
	label    string
	Buffers  []gpu.Buffer
	Texture  *common.TextureStagingData
	Released bool
}

func (g *BindGroup) Label() string { return g.label }
func (g *BindGroup) Release()      { g.Released = true }

// RenderPipeline is a recorded pipeline compilation.
type RenderPipeline struct {
	Desc       pipeline.Pipeline
	BindGroups []gpu.BindGroup
	Released   bool
}

func (p *RenderPipeline) Label() string { return p.Desc.PipelineKey() }
func (p *RenderPipeline) Release()      { p.Released = true }

// TextureView is a recorded depth texture.
type TextureView struct {
	width, height uint32
	Released      bool
}

func (v *TextureView) Width() uint32  { return v.width }
func (v *TextureView) Height() uint32 { return v.height }
func (v *TextureView) Release()       { v.Released = true }

// Device is a recording gpu.Device.
type Device struct {
	mu *sync.Mutex

	Buffers       []*Buffer
	BindGroups    []*BindGroup
	Pipelines     []*RenderPipeline
	DepthTextures []*TextureView
	Writes        int

	// CreateBufferErr, when set, is returned by every CreateBuffer call.
	CreateBufferErr error
	// CreatePipelineErr, when set, is returned by every CreateRenderPipeline call.
	CreatePipelineErr error
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
//
// Returns:
//   - *Device: the device
func NewDevice() *Device {
	return &Device{mu: &sync.Mutex{}}
}

func (d *Device) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (gpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.CreateBufferErr != nil {
		return nil, d.CreateBufferErr
	}
	if size%gpu.CopyBufferAlignment != 0 {
		return nil, fmt.Errorf("buffer %q size %d is not a multiple of %d", label, size, gpu.CopyBufferAlignment)
	}
	b := &Buffer{label: label, size: size, usage: usage, Data: make([]byte, size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) WriteBuffer(buffer gpu.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := buffer.(*Buffer)
	switch {
	case !ok:
		return errors.New("foreign buffer")
	case b.Released:
		return fmt.Errorf("write to released buffer %q", b.label)
	case b.usage&wgpu.BufferUsageCopyDst == 0:
		return fmt.Errorf("buffer %q lacks CopyDst usage", b.label)
	case len(data)%gpu.CopyBufferAlignment != 0:
		return fmt.Errorf("write of %d bytes is not aligned", len(data))
	case offset+uint64(len(data)) > b.size:
		return fmt.Errorf("write of %d bytes at %d overflows buffer %q of %d bytes", len(data), offset, b.label, b.size)
	}
	copy(b.Data[offset:], data)
	d.Writes++
	return nil
}

func (d *Device) CreateUniformBindGroup(label string, buffers ...gpu.Buffer) (gpu.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g := &BindGroup{label: label, Buffers: buffers}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateTextureBindGroup(label string, texture common.TextureStagingData, _ common.SamplerStagingData) (gpu.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if int(texture.Width*texture.Height*4) != len(texture.Pixels) {
		return nil, fmt.Errorf("texture %q: %d bytes for %dx%d", label, len(texture.Pixels), texture.Width, texture.Height)
	}
	g := &BindGroup{label: label, Texture: &texture}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateRenderPipeline(desc pipeline.Pipeline, bindGroups ...gpu.BindGroup) (gpu.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.CreatePipelineErr != nil {
		return nil, d.CreatePipelineErr
	}
	p := &RenderPipeline{Desc: desc, BindGroups: bindGroups}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) CreateDepthTexture(width, height uint32) (gpu.TextureView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := &TextureView{width: width, height: height}
	d.DepthTextures = append(d.DepthTextures, v)
	return v, nil
}

// LiveBuffers returns the buffers that have not been released.
//
// Returns:
//   - []*Buffer: unreleased buffers in creation order
func (d *Device) LiveBuffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()

	var live []*Buffer
	for _, b := range d.Buffers {
		if !b.Released {
			live = append(live, b)
		}
	}
	return live
}
