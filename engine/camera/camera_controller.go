package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns a camera's position and target and moves them in response to input.
// Orbit controls move the position on a sphere around the target using spherical coordinates
// (radius, azimuth, elevation). Panning shifts position and target together along the camera's
// local axes, preserving the orbit relationship. World up is +Y.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at/pivot point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget moves the pivot point and recomputes position from the spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Radius returns the distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians, 0 on the +Z axis.
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// Orbit rotates the camera around the target. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: change in azimuth in radians
	//   - dElevation: change in elevation in radians
	Orbit(dAzimuth, dElevation float32)

	// OrbitStep orbits by one keyboard step of the orbit speed in each given direction.
	// Each argument is -1, 0 or 1.
	//
	// Parameters:
	//   - horizontal: azimuth steps
	//   - vertical: elevation steps
	OrbitStep(horizontal, vertical float32)

	// Drag orbits the camera by a mouse movement, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels
	Drag(dx, dy float32)

	// Zoom moves the camera towards the target, scaled by the zoom speed.
	// The radius is clamped to its bounds. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount, typically a scroll offset
	Zoom(delta float32)

	// Pan translates position and target along the camera's local right, up and forward axes,
	// scaled by the pan speed.
	//
	// Parameters:
	//   - right, up, forward: distances along each local axis
	Pan(right, up, forward float32)
}
