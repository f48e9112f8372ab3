package common

import "github.com/go-gl/mathgl/mgl32"

// Transform places an object in the world with a translation, a rotation and a uniform scale.
type Transform struct {
	// Translation is the world-space position.
	Translation mgl32.Vec3
	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat
	// Scale is applied uniformly on all three axes.
	Scale float32
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    1,
	}
}

// NewTransform creates a Transform from its three components.
//
// Parameters:
//   - translation: world-space position
//   - rotation: orientation quaternion
//   - scale: uniform scale factor
//
// Returns:
//   - Transform: the assembled transform
func NewTransform(translation mgl32.Vec3, rotation mgl32.Quat, scale float32) Transform {
	return Transform{
		Translation: translation,
		Rotation:    rotation,
		Scale:       scale,
	}
}

// TransformFromTranslation creates an unrotated, unit-scale Transform at translation.
//
// Parameters:
//   - translation: world-space position
//
// Returns:
//   - Transform: the translated transform
func TransformFromTranslation(translation mgl32.Vec3) Transform {
	t := IdentityTransform()
	t.Translation = translation
	return t
}

// Model returns the model matrix translation * rotation * scale,
// so a point is scaled first, then rotated, then translated.
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func (t Transform) Model() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale, t.Scale, t.Scale))
}

// RotationMatrix returns the rotation-only 3x3 matrix used to transform normals.
//
// Returns:
//   - mgl32.Mat3: the column-major rotation matrix
func (t Transform) RotationMatrix() mgl32.Mat3 {
	return t.Rotation.Mat4().Mat3()
}
