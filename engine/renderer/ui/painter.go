package ui

import (
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/buffer"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineKey is the key of the UI render pipeline.
const PipelineKey = "ui"

// Painter uploads and draws one UI frame at a time.
//
// The expected sequence per frame is Submit, then Update before the render pass begins, then
// Paint inside the pass. Paint consumes the submitted frame.
type Painter interface {
	// Submit stores the UI output of the current frame.
	//
	// Parameters:
	//   - frame: the tessellated primitives and texture changes
	//
	// Returns:
	//   - error: ErrFramePending if the previous frame was not painted yet
	Submit(frame FrameData) error

	// Pending reports whether a submitted frame is waiting to be painted.
	Pending() bool

	// Resize sets the framebuffer size in pixels. Zero sizes are ignored.
	Resize(width, height uint32)

	// Update applies texture changes and uploads the vertex, index and screen data of the
	// pending frame. It does nothing if no frame is pending.
	//
	// Returns:
	//   - error: an upload error
	Update() error

	// Paint draws the pending frame into pass and clears it, then frees the textures the frame
	// asked to free.
	//
	// Parameters:
	//   - pass: the frame's render pass
	Paint(pass gpu.RenderPass)

	// Discard drops the pending frame without drawing it, for frames that never reach a pass.
	// Texture uploads already applied by Update are kept and frees are applied.
	Discard()

	// Release frees the pipeline, buffers and textures.
	Release()
}

type drawCall struct {
	scissor    [4]uint32
	texture    TextureID
	firstIndex uint32
	indexCount uint32
	baseVertex int32
}

type painter struct {
	device gpu.Device

	pipeline    gpu.RenderPipeline
	screen      gpu.Buffer
	screenGroup gpu.BindGroup
	white       gpu.BindGroup
	textures    map[TextureID]gpu.BindGroup

	vertices buffer.ResizableBuffer
	indices  buffer.ResizableBuffer

	width, height uint32
	pending       *FrameData
	draws         []drawCall
	updated       bool

	vertexScratch []Vertex
	indexScratch  []uint32
}

var _ Painter = &painter{}

// screenUniform is the screen size in points, padded to 16 bytes.
type screenUniform struct {
	Size [2]float32
	_    [2]float32
}

// NewPainter creates the UI pipeline and its buffers on device.
//
// Parameters:
//   - device: the device that owns the UI resources
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - Painter: the new painter
//   - error: an error if any GPU object cannot be created
func NewPainter(device gpu.Device, width, height uint32) (Painter, error) {
	p := &painter{
		device:   device,
		textures: make(map[TextureID]gpu.BindGroup),
		width:    max(width, 1),
		height:   max(height, 1),
	}

	var err error
	if p.screen, err = device.CreateBuffer("ui screen", uint64(len(common.StructToBytes(&screenUniform{}))), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return nil, fmt.Errorf("failed to create ui screen buffer: %w", err)
	}
	if p.screenGroup, err = device.CreateUniformBindGroup("ui screen", p.screen); err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create ui screen bind group: %w", err)
	}
	white := common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	if p.white, err = device.CreateTextureBindGroup("ui white", white, common.SamplerStagingData{}); err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create ui default texture: %w", err)
	}
	if p.vertices, err = buffer.NewResizableBuffer(device, "ui vertices", 1024*VertexSize, wgpu.BufferUsageVertex); err != nil {
		p.Release()
		return nil, err
	}
	if p.indices, err = buffer.NewResizableBuffer(device, "ui indices", 3*1024*4, wgpu.BufferUsageIndex); err != nil {
		p.Release()
		return nil, err
	}

	desc := pipeline.NewPipeline(PipelineKey,
		pipeline.WithShaderSource(ShaderSource),
		pipeline.WithVertexLayouts(VertexLayout()),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendEnabled(true),
		pipeline.WithBlendState(&wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOneMinusDstAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}),
	)
	if p.pipeline, err = device.CreateRenderPipeline(desc, p.screenGroup, p.white); err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to create ui pipeline: %w", err)
	}
	return p, nil
}

func (p *painter) Submit(frame FrameData) error {
	if p.pending != nil {
		return ErrFramePending
	}
	if frame.PixelsPerPoint <= 0 {
		frame.PixelsPerPoint = 1
	}
	p.pending = &frame
	p.updated = false
	return nil
}

func (p *painter) Pending() bool {
	return p.pending != nil
}

func (p *painter) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	p.width, p.height = width, height
}

func (p *painter) Update() error {
	if p.pending == nil || p.updated {
		return nil
	}
	frame := p.pending

	for id, tex := range frame.Textures.Set {
		group, err := p.device.CreateTextureBindGroup(fmt.Sprintf("ui texture %d", id), tex, common.SamplerStagingData{})
		if err != nil {
			return fmt.Errorf("failed to upload ui texture %d: %w", id, err)
		}
		if old, ok := p.textures[id]; ok {
			old.Release()
		}
		p.textures[id] = group
	}

	ppp := frame.PixelsPerPoint
	screen := screenUniform{Size: [2]float32{float32(p.width) / ppp, float32(p.height) / ppp}}
	if err := p.device.WriteBuffer(p.screen, 0, common.StructToBytes(&screen)); err != nil {
		return fmt.Errorf("failed to write ui screen: %w", err)
	}

	p.draws = p.draws[:0]
	p.vertexScratch = p.vertexScratch[:0]
	p.indexScratch = p.indexScratch[:0]
	for _, prim := range frame.Primitives {
		if len(prim.Indices) == 0 || len(prim.Vertices) == 0 {
			continue
		}
		scissor, ok := p.scissor(prim.ClipRect, ppp)
		if !ok {
			continue
		}
		p.draws = append(p.draws, drawCall{
			scissor:    scissor,
			texture:    prim.TextureID,
			firstIndex: uint32(len(p.indexScratch)),
			indexCount: uint32(len(prim.Indices)),
			baseVertex: int32(len(p.vertexScratch)),
		})
		p.vertexScratch = append(p.vertexScratch, prim.Vertices...)
		p.indexScratch = append(p.indexScratch, prim.Indices...)
	}

	if err := p.vertices.Update(common.SliceToBytes(p.vertexScratch)); err != nil {
		return err
	}
	if err := p.indices.Update(common.SliceToBytes(p.indexScratch)); err != nil {
		return err
	}
	p.updated = true
	return nil
}

// scissor converts a clip rectangle in points to a pixel rectangle clamped to the framebuffer.
func (p *painter) scissor(clip ClipRect, ppp float32) ([4]uint32, bool) {
	clamp := func(v float32, limit uint32) uint32 {
		v = float32(math.Round(float64(v * ppp)))
		if v < 0 {
			return 0
		}
		if v > float32(limit) {
			return limit
		}
		return uint32(v)
	}
	minX, minY := clamp(clip.MinX, p.width), clamp(clip.MinY, p.height)
	maxX, maxY := clamp(clip.MaxX, p.width), clamp(clip.MaxY, p.height)
	if maxX <= minX || maxY <= minY {
		return [4]uint32{}, false
	}
	return [4]uint32{minX, minY, maxX - minX, maxY - minY}, true
}

func (p *painter) Paint(pass gpu.RenderPass) {
	if p.pending == nil {
		return
	}
	frame := p.pending
	p.pending = nil
	if !p.updated {
		log.Printf("[UI] frame painted without Update, skipping")
		p.freeTextures(frame.Textures.Free)
		return
	}

	if len(p.draws) > 0 {
		pass.SetPipeline(p.pipeline)
		pass.SetBindGroup(0, p.screenGroup)
		pass.SetVertexBuffer(0, p.vertices.Buffer(), 0, p.vertices.Size())
		pass.SetIndexBuffer(p.indices.Buffer(), 0, p.indices.Size())
		for _, d := range p.draws {
			pass.SetScissorRect(d.scissor[0], d.scissor[1], d.scissor[2], d.scissor[3])
			group, ok := p.textures[d.texture]
			if !ok {
				group = p.white
			}
			pass.SetBindGroup(1, group)
			pass.DrawIndexed(d.indexCount, 1, d.firstIndex, d.baseVertex, 0)
		}
		pass.SetScissorRect(0, 0, p.width, p.height)
	}
	p.freeTextures(frame.Textures.Free)
}

func (p *painter) Discard() {
	if p.pending == nil {
		return
	}
	frame := p.pending
	p.pending = nil
	p.freeTextures(frame.Textures.Free)
}

func (p *painter) freeTextures(ids []TextureID) {
	for _, id := range ids {
		if group, ok := p.textures[id]; ok {
			group.Release()
			delete(p.textures, id)
		}
	}
}

func (p *painter) Release() {
	for id, group := range p.textures {
		group.Release()
		delete(p.textures, id)
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.vertices != nil {
		p.vertices.Release()
	}
	if p.indices != nil {
		p.indices.Release()
	}
	if p.white != nil {
		p.white.Release()
	}
	if p.screenGroup != nil {
		p.screenGroup.Release()
	}
	if p.screen != nil {
		p.screen.Release()
	}
}
