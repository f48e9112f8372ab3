package mesh

import (
	"github.com/Carmen-Shannon/echoes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexRef is the index of a vertex already added to a Builder.
type VertexRef uint32

// Builder accumulates vertices and triangle indices for one mesh.
type Builder[V Vertex] struct {
	vertices []V
	indices  []uint32
}

// NewBuilder creates an empty Builder.
func NewBuilder[V Vertex]() *Builder[V] {
	return &Builder[V]{}
}

// AddVertex appends v and returns its index.
//
// Parameters:
//   - v: the vertex to add
//
// Returns:
//   - VertexRef: the index of v
func (b *Builder[V]) AddVertex(v V) VertexRef {
	b.vertices = append(b.vertices, v)
	return VertexRef(len(b.vertices) - 1)
}

// AddTriangleRefs appends a triangle over three existing vertices in the given winding.
func (b *Builder[V]) AddTriangleRefs(a, c, d VertexRef) {
	b.indices = append(b.indices, uint32(a), uint32(c), uint32(d))
}

// AddTriangle appends three new vertices and a triangle over them.
func (b *Builder[V]) AddTriangle(a, c, d V) {
	b.AddTriangleRefs(b.AddVertex(a), b.AddVertex(c), b.AddVertex(d))
}

// AddQuadRefs appends the two triangles (a, c, d) and (a, d, e) over four existing vertices.
func (b *Builder[V]) AddQuadRefs(a, c, d, e VertexRef) {
	b.AddTriangleRefs(a, c, d)
	b.AddTriangleRefs(a, d, e)
}

// AddQuad appends four new vertices and the two triangles of the quad they outline.
func (b *Builder[V]) AddQuad(a, c, d, e V) {
	b.AddQuadRefs(b.AddVertex(a), b.AddVertex(c), b.AddVertex(d), b.AddVertex(e))
}

// AddTriangleFacing appends a triangle, flipping the winding if needed so that its
// counter-clockwise front face points along facing.
//
// Parameters:
//   - a, c, d: the corners
//   - facing: the direction the front face should point
func (b *Builder[V]) AddTriangleFacing(a, c, d V, facing mgl32.Vec3) {
	if faceNormal(a.Position(), c.Position(), d.Position()).Dot(facing) > 0 {
		b.AddTriangle(a, c, d)
		return
	}
	b.AddTriangle(a, d, c)
}

// AddQuadFacing appends a quad outlined by a, c, d, e, flipping the winding if needed so that
// its counter-clockwise front face points along facing.
//
// Parameters:
//   - a, c, d, e: the corners in outline order
//   - facing: the direction the front face should point
func (b *Builder[V]) AddQuadFacing(a, c, d, e V, facing mgl32.Vec3) {
	if faceNormal(a.Position(), c.Position(), d.Position()).Dot(facing) > 0 {
		b.AddQuad(a, c, d, e)
		return
	}
	b.AddQuad(a, e, d, c)
}

// Vertices returns the accumulated vertices.
func (b *Builder[V]) Vertices() []V {
	return b.vertices
}

// VertexData returns the vertices as raw bytes ready for upload. The result aliases the builder.
func (b *Builder[V]) VertexData() []byte {
	return common.SliceToBytes(b.vertices)
}

// Indices returns the accumulated triangle indices.
func (b *Builder[V]) Indices() []uint32 {
	return b.indices
}

// IndexCount returns the number of indices.
func (b *Builder[V]) IndexCount() uint32 {
	return uint32(len(b.indices))
}

func faceNormal(a, c, d mgl32.Vec3) mgl32.Vec3 {
	return c.Sub(a).Cross(d.Sub(a))
}
