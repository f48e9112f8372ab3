package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBackend struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat   wgpu.TextureFormat
	alphaMode       wgpu.CompositeAlphaMode
	msaaTexture     *wgpu.Texture
	msaaTextureView *wgpu.TextureView

	presentMode          PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
}

var _ Backend = &wgpuBackend{}

// NewWGPUBackend creates a WebGPU instance, surface, adapter and device for the given surface
// descriptor. The surface is not configured until Configure is called.
// Panics if no adapter or device can be obtained.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, usually from window.SurfaceDescriptor
//   - options: functional options for present mode, MSAA and adapter selection
//
// Returns:
//   - Backend: the device and surface pair
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendBuilderOption) Backend {
	runtime.LockOSThread()
	b := &wgpuBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: PresentModeVSync,
		sampleCount: MSAAOff,
	}
	for _, opt := range options {
		opt(b)
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			b.surfaceFormat = f
			break
		}
	}
	b.alphaMode = capabilities.AlphaModes[0]

	return b
}

func (b *wgpuBackend) Configure(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	presentMode := wgpu.PresentModeFifo
	if b.presentMode == PresentModeUncapped {
		presentMode = wgpu.PresentModeImmediate
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   b.alphaMode,
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTextureView = nil
		b.msaaTexture = nil
	}
	if b.sampleCount <= MSAAOff {
		return
	}

	// The pass draws into the MSAA texture and resolves into the swapchain image.
	msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "MSAA Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	view, err := msaaTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	b.msaaTexture = msaaTexture
	b.msaaTextureView = view
}

func (b *wgpuBackend) AcquireFrame(depth TextureView, clearColor wgpu.Color) (Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	depthView, ok := depth.(*wgpuTextureView)
	if !ok {
		return nil, errors.New("depth attachment was not created by this device")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceAcquire, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("%w: %w", ErrSurfaceAcquire, err)
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clearColor,
	}
	if b.msaaTextureView != nil {
		color.View = b.msaaTextureView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "Main Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	return &wgpuFrame{
		backend: b,
		encoder: encoder,
		pass:    &wgpuRenderPass{pass: pass},
		texture: surfaceTexture,
		view:    view,
	}, nil
}

func (b *wgpuBackend) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuBuffer{buffer: buf, label: label, size: size, usage: usage}, nil
}

func (b *wgpuBackend) WriteBuffer(buffer Buffer, offset uint64, data []byte) error {
	buf, ok := buffer.(*wgpuBuffer)
	if !ok {
		return errors.New("buffer was not created by this device")
	}
	return b.queue.WriteBuffer(buf.buffer, offset, data)
}

func (b *wgpuBackend) CreateUniformBindGroup(label string, buffers ...Buffer) (BindGroup, error) {
	layoutEntries := make([]wgpu.BindGroupLayoutEntry, len(buffers))
	entries := make([]wgpu.BindGroupEntry, len(buffers))
	for i, buffer := range buffers {
		buf, ok := buffer.(*wgpuBuffer)
		if !ok {
			return nil, fmt.Errorf("binding %d: buffer was not created by this device", i)
		}
		layoutEntries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  buf.buffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Layout",
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, err
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	return &wgpuBindGroup{group: group, layout: layout, label: label}, nil
}

func (b *wgpuBackend) CreateTextureBindGroup(label string, texture common.TextureStagingData, sampler common.SamplerStagingData) (BindGroup, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              texture.Width,
			Height:             texture.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		texture.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  texture.Width * 4,
			RowsPerImage: texture.Height,
		},
		&wgpu.Extent3D{
			Width:              texture.Width,
			Height:             texture.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(sampler.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(sampler.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(sampler.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(sampler.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(sampler.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(sampler.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label + " Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		samp.Release()
		view.Release()
		tex.Release()
		return nil, err
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: samp},
		},
	})
	if err != nil {
		layout.Release()
		samp.Release()
		view.Release()
		tex.Release()
		return nil, err
	}

	return &wgpuBindGroup{
		group:  group,
		layout: layout,
		label:  label,
		owned:  []func(){samp.Release, view.Release, tex.Release},
	}, nil
}

func (b *wgpuBackend) CreateRenderPipeline(desc pipeline.Pipeline, bindGroups ...BindGroup) (RenderPipeline, error) {
	if desc.ShaderSource() == "" {
		return nil, fmt.Errorf("pipeline %q has no shader source", desc.PipelineKey())
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.PipelineKey() + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.ShaderSource(),
		},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(bindGroups))
	for i, bg := range bindGroups {
		group, ok := bg.(*wgpuBindGroup)
		if !ok {
			return nil, fmt.Errorf("bind group %d was not created by this device", i)
		}
		bindGroupLayouts[i] = group.layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: desc.WriteMask(),
	}
	if desc.BlendEnabled() {
		target.Blend = desc.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !desc.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint(),
			Buffers:    desc.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.Topology(),
			FrontFace: desc.FrontFace(),
			CullMode:  desc.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              DepthFormat,
			DepthWriteEnabled:   desc.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           desc.DepthBias(),
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &wgpuRenderPipeline{pipeline: created, label: desc.PipelineKey()}, nil
}

func (b *wgpuBackend) CreateDepthTexture(width, height uint32) (TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTextureView{texture: tex, view: view, width: width, height: height}, nil
}

func (b *wgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

type wgpuFrame struct {
	backend *wgpuBackend
	encoder *wgpu.CommandEncoder
	pass    *wgpuRenderPass
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *wgpuFrame) Pass() RenderPass {
	return f.pass
}

func (f *wgpuFrame) Present() error {
	b := f.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	defer f.texture.Release()
	defer f.view.Release()
	defer f.encoder.Release()

	f.pass.pass.End()
	commandBuffer, err := f.encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
	return nil
}

type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuRenderPass) SetPipeline(rp RenderPipeline) {
	p.pass.SetPipeline(rp.(*wgpuRenderPipeline).pipeline)
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group BindGroup) {
	p.pass.SetBindGroup(index, group.(*wgpuBindGroup).group, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, buffer.(*wgpuBuffer).buffer, offset, size)
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer Buffer, offset, size uint64) {
	p.pass.SetIndexBuffer(buffer.(*wgpuBuffer).buffer, wgpu.IndexFormatUint32, offset, size)
}

func (p *wgpuRenderPass) SetScissorRect(x, y, width, height uint32) {
	p.pass.SetScissorRect(x, y, width, height)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

type wgpuBuffer struct {
	buffer *wgpu.Buffer
	label  string
	size   uint64
	usage  wgpu.BufferUsage
}

func (b *wgpuBuffer) Label() string           { return b.label }
func (b *wgpuBuffer) Size() uint64            { return b.size }
func (b *wgpuBuffer) Usage() wgpu.BufferUsage { return b.usage }
func (b *wgpuBuffer) Release()                { b.buffer.Release() }

type wgpuBindGroup struct {
	group  *wgpu.BindGroup
	layout *wgpu.BindGroupLayout
	label  string
	// owned are releases for resources referenced only by this group, e.g. its texture
	owned []func()
}

func (g *wgpuBindGroup) Label() string { return g.label }

func (g *wgpuBindGroup) Release() {
	g.group.Release()
	g.layout.Release()
	for _, release := range g.owned {
		release()
	}
}

type wgpuRenderPipeline struct {
	pipeline *wgpu.RenderPipeline
	label    string
}

func (p *wgpuRenderPipeline) Label() string { return p.label }
func (p *wgpuRenderPipeline) Release()      { p.pipeline.Release() }

type wgpuTextureView struct {
	texture       *wgpu.Texture
	view          *wgpu.TextureView
	width, height uint32
}

func (v *wgpuTextureView) Width() uint32  { return v.width }
func (v *wgpuTextureView) Height() uint32 { return v.height }

func (v *wgpuTextureView) Release() {
	v.view.Release()
	v.texture.Release()
}
