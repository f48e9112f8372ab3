package mesh

import "github.com/go-gl/mathgl/mgl32"

var (
	unitX = mgl32.Vec3{1, 0, 0}
	unitY = mgl32.Vec3{0, 1, 0}
	unitZ = mgl32.Vec3{0, 0, 1}
)

// Cube builds the unit cube spanning [0, 1] on every axis with flat per-face normals.
//
// Parameters:
//   - color: the vertex color
//
// Returns:
//   - *Builder[ColorNormalVertex]: 24 vertices and 36 indices
func Cube(color mgl32.Vec3) *Builder[ColorNormalVertex] {
	b := NewBuilder[ColorNormalVertex]()

	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{unitX.Mul(-1), [4]mgl32.Vec3{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
		{unitX, [4]mgl32.Vec3{{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}}},
		{unitY.Mul(-1), [4]mgl32.Vec3{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 0, 0}}},
		{unitY, [4]mgl32.Vec3{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
		{unitZ.Mul(-1), [4]mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
		{unitZ, [4]mgl32.Vec3{{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1}}},
	}

	for _, f := range faces {
		var v [4]ColorNormalVertex
		for i, p := range f.corners {
			v[i] = NewColorNormalVertex(p, color, f.normal)
		}
		b.AddQuadFacing(v[0], v[1], v[2], v[3], f.normal)
	}
	return b
}

// Plane builds a square in the XZ plane centered on the origin, facing +Y.
//
// Parameters:
//   - size: the edge length
//   - color: the vertex color
//
// Returns:
//   - *Builder[ColorNormalVertex]: 4 vertices and 6 indices
func Plane(size float32, color mgl32.Vec3) *Builder[ColorNormalVertex] {
	b := NewBuilder[ColorNormalVertex]()
	h := size / 2

	b.AddQuadFacing(
		NewColorNormalVertex(mgl32.Vec3{-h, 0, -h}, color, unitY),
		NewColorNormalVertex(mgl32.Vec3{h, 0, -h}, color, unitY),
		NewColorNormalVertex(mgl32.Vec3{h, 0, h}, color, unitY),
		NewColorNormalVertex(mgl32.Vec3{-h, 0, h}, color, unitY),
		unitY,
	)
	return b
}

// Sphere builds a sphere centered on the origin by projecting a subdivided cube onto it.
// Normals point outwards.
//
// Parameters:
//   - radius: the sphere radius
//   - divisions: grid points per cube edge, at least 2
//   - color: the vertex color
//
// Returns:
//   - *Builder[ColorNormalVertex]: the sphere mesh
func Sphere(radius float32, divisions int, color mgl32.Vec3) *Builder[ColorNormalVertex] {
	b := NewBuilder[ColorNormalVertex]()
	divisions = max(divisions, 2)

	faces := [][3]mgl32.Vec3{
		{unitX.Mul(-1), unitY, unitZ},
		{unitX, unitY, unitZ},
		{unitY.Mul(-1), unitX, unitZ},
		{unitY, unitX, unitZ},
		{unitZ.Mul(-1), unitX, unitY},
		{unitZ, unitX, unitY},
	}

	for _, f := range faces {
		addSphereFace(b, f[0], f[1], f[2], radius, divisions, color)
	}
	return b
}

func addSphereFace(b *Builder[ColorNormalVertex], normal, dx, dy mgl32.Vec3, radius float32, divisions int, color mgl32.Vec3) {
	corner := normal.Sub(dx).Sub(dy).Mul(0.5)
	step := 1 / float32(divisions-1)

	point := func(i, j int) ColorNormalVertex {
		p := corner.Add(dx.Mul(float32(i) * step)).Add(dy.Mul(float32(j) * step))
		n := p.Normalize()
		return NewColorNormalVertex(n.Mul(radius), color, n)
	}

	for i := range divisions - 1 {
		for j := range divisions - 1 {
			b.AddQuadFacing(point(i, j), point(i+1, j), point(i+1, j+1), point(i, j+1), normal)
		}
	}
}
