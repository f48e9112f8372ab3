// Package ui draws pre-tessellated immediate-mode UI output inside the frame's render pass.
// A UI library produces clipped triangle meshes and texture changes each frame; this package
// only uploads and draws them.
package ui

import (
	"errors"
	"unsafe"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrFramePending is returned when a UI frame is submitted before the previous one was painted.
var ErrFramePending = errors.New("ui frame already pending")

// TextureID identifies a UI texture, such as a font atlas or a user image.
type TextureID uint64

// Vertex is a UI vertex in points with a texture coordinate and an sRGB vertex color.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]uint8
}

// VertexSize is the byte stride of Vertex.
const VertexSize = uint64(unsafe.Sizeof(Vertex{}))

// VertexLayout returns the vertex buffer layout of Vertex.
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
		},
	}
}

// ClipRect is a clip rectangle in points, top-left origin.
type ClipRect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// ClippedPrimitive is an indexed triangle mesh drawn with one texture inside a clip rectangle.
type ClippedPrimitive struct {
	ClipRect  ClipRect
	Vertices  []Vertex
	Indices   []uint32
	TextureID TextureID
}

// TexturesDelta lists the textures to create or replace and the textures to free.
// Set entries are whole RGBA8 images; frees are applied after the frame is painted.
type TexturesDelta struct {
	Set  map[TextureID]common.TextureStagingData
	Free []TextureID
}

// FrameData is the UI output of one frame.
type FrameData struct {
	Primitives     []ClippedPrimitive
	Textures       TexturesDelta
	PixelsPerPoint float32
}
