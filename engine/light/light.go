// Package light holds the scene lighting: one directional light and one ambient term.
package light

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLight is a light with no position, only a direction, such as the sun.
// It affects every fragment uniformly with no distance attenuation.
type DirectionalLight struct {
	// Direction is the direction the light travels in. It need not be normalized.
	Direction mgl32.Vec3
	// Color is the linear RGB color.
	Color mgl32.Vec3
	// Intensity scales Color.
	Intensity float32
}

// AmbientLight is a constant light added to every fragment.
type AmbientLight struct {
	// Color is the linear RGB color.
	Color mgl32.Vec3
	// Intensity scales Color.
	Intensity float32
}

// NewDirectionalLight creates a white directional light shining straight down at full intensity.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - DirectionalLight: the light
func NewDirectionalLight(options ...LightBuilderOption) DirectionalLight {
	l := DirectionalLight{
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}
	for _, option := range options {
		option(&l)
	}
	return l
}

// NewAmbientLight creates an ambient light.
//
// Parameters:
//   - color: linear RGB color
//   - intensity: scale applied to color
//
// Returns:
//   - AmbientLight: the light
func NewAmbientLight(color mgl32.Vec3, intensity float32) AmbientLight {
	return AmbientLight{Color: color, Intensity: intensity}
}

// Radiance returns the light color scaled by its intensity.
func (l DirectionalLight) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// Radiance returns the light color scaled by its intensity.
func (l AmbientLight) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}
