// Package mesh builds indexed triangle meshes on the CPU for upload as mesh resources.
package mesh

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a plain-old-data vertex with a position. Implementations must not contain pointers,
// since vertex slices are uploaded by reinterpreting their memory.
type Vertex interface {
	// Position returns the object-space position of the vertex.
	Position() mgl32.Vec3
}

// White is the default vertex color.
var White = mgl32.Vec3{1, 1, 1}

// ColorVertex is a position with an RGB color. It is used by the line renderer.
type ColorVertex struct {
	Pos   mgl32.Vec3
	Color mgl32.Vec3
}

var _ Vertex = ColorVertex{}

// NewColorVertex creates a ColorVertex.
//
// Parameters:
//   - position: object-space position
//   - color: linear RGB color
//
// Returns:
//   - ColorVertex: the vertex
func NewColorVertex(position, color mgl32.Vec3) ColorVertex {
	return ColorVertex{Pos: position, Color: color}
}

func (v ColorVertex) Position() mgl32.Vec3 {
	return v.Pos
}

// ColorVertexLayout returns the per-vertex buffer layout of ColorVertex:
// position at location 0 and color at location 1.
func ColorVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(ColorVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// ColorNormalVertex is a position with an RGB color and a normal, used by lit meshes.
type ColorNormalVertex struct {
	Pos    mgl32.Vec3
	Color  mgl32.Vec3
	Normal mgl32.Vec3
}

var _ Vertex = ColorNormalVertex{}

// NewColorNormalVertex creates a ColorNormalVertex.
//
// Parameters:
//   - position: object-space position
//   - color: linear RGB color
//   - normal: object-space unit normal
//
// Returns:
//   - ColorNormalVertex: the vertex
func NewColorNormalVertex(position, color, normal mgl32.Vec3) ColorNormalVertex {
	return ColorNormalVertex{Pos: position, Color: color, Normal: normal}
}

func (v ColorNormalVertex) Position() mgl32.Vec3 {
	return v.Pos
}

// ColorNormalVertexLayout returns the per-vertex buffer layout of ColorNormalVertex:
// position at location 0, color at location 1 and normal at location 2.
func ColorNormalVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(ColorNormalVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2},
		},
	}
}
