package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d: want %v, got %v", i, want, got)
	}
}

func TestPixelToRayCenterIsViewDirection(t *testing.T) {
	c := NewCamera(
		WithEye(mgl32.Vec3{0, 0, 0}),
		WithTarget(mgl32.Vec3{0, 1, 0}),
		WithUp(mgl32.Vec3{0, 0, 1}),
		WithFovy(math.Pi/4),
	)

	ray := c.PixelToRay(400, 300, 200, 150)

	assertVecNear(t, mgl32.Vec3{0, 0, 0}, ray.Origin)
	assertVecNear(t, mgl32.Vec3{0, 1, 0}, ray.Direction)
}

func TestPixelToRayCorners(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 0, 5}), WithFovy(math.Pi/2))

	right := c.PixelToRay(300, 300, 300, 150)
	top := c.PixelToRay(300, 300, 150, 0)

	// a 90 degree field of view puts the frame edges at 45 degrees
	assertVecNear(t, mgl32.Vec3{1, 0, -1}.Normalize(), right.Direction)
	assertVecNear(t, mgl32.Vec3{0, 1, -1}.Normalize(), top.Direction)
	assert.InDelta(t, 1, right.Direction.Len(), 1e-5)
}

func TestViewProjectionMapsDepthToWebGPURange(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 0, 5}), WithClipPlanes(1, 10))
	vp := c.ViewProjectionMatrix()

	near := vp.Mul4x1(mgl32.Vec4{0, 0, 4, 1})
	far := vp.Mul4x1(mgl32.Vec4{0, 0, -5, 1})

	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestResizeUpdatesAspect(t *testing.T) {
	c := NewCamera()

	c.Resize(800, 400)
	assert.Equal(t, float32(2), c.Aspect())

	c.Resize(0, 400)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestControllerDrivesCamera(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithAngles(0, 0))
	c := NewCamera(WithController(ctrl))

	assertVecNear(t, mgl32.Vec3{0, 0, 10}, c.Eye())

	ctrl.Orbit(math.Pi/2, 0)
	assertVecNear(t, mgl32.Vec3{0, 0, 10}, c.Eye())
	c.Update()
	assertVecNear(t, mgl32.Vec3{10, 0, 0}, c.Eye())
}

func TestControllerClampsZoomAndElevation(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithRadiusBounds(5, 20), WithElevationBounds(-1, 1))

	ctrl.Zoom(100)
	assert.Equal(t, float32(5), ctrl.Radius())
	ctrl.Zoom(-100)
	assert.Equal(t, float32(20), ctrl.Radius())

	ctrl.Orbit(0, 10)
	assert.Equal(t, float32(1), ctrl.Elevation())
}

func TestControllerPanKeepsOrbit(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithAngles(0, 0))
	before := ctrl.Position().Sub(ctrl.Target())

	ctrl.Pan(2, 0, 0)

	assertVecNear(t, mgl32.Vec3{2, 0, 0}, ctrl.Target())
	assertVecNear(t, before, ctrl.Position().Sub(ctrl.Target()))
}

func TestUniformLayout(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{1, 2, 3}))
	u := Uniform(c)
	b := u.Marshal()

	assert.Equal(t, uint64(80), GPUCameraUniformSize)
	assert.Len(t, b, 80)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, u.Position)
}
