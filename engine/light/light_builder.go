package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a DirectionalLight during construction.
type LightBuilderOption func(*DirectionalLight)

// WithDirection sets the direction the light travels in.
//
// Parameters:
//   - direction: the light direction
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option
func WithDirection(direction mgl32.Vec3) LightBuilderOption {
	return func(l *DirectionalLight) {
		l.Direction = direction
	}
}

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - color: linear RGB color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *DirectionalLight) {
		l.Color = color
	}
}

// WithIntensity sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *DirectionalLight) {
		l.Intensity = intensity
	}
}
