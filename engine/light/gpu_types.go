package light

import (
	"unsafe"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPULightUniform is the light uniform as laid out in WGSL:
//
//	struct Light { direction: vec3<f32>, color: vec3<f32>, ambient: vec3<f32> }
//
// Every vec3 is padded to 16 bytes. Size: 48 bytes.
type GPULightUniform struct {
	Direction mgl32.Vec3 // offset  0: normalized light direction
	_         float32
	Color     mgl32.Vec3 // offset 16: directional color * intensity
	_         float32
	Ambient   mgl32.Vec3 // offset 32: ambient color * intensity
	_         float32
}

// GPULightUniformSize is the byte size of GPULightUniform.
const GPULightUniformSize = uint64(unsafe.Sizeof(GPULightUniform{}))

// Uniform packs a directional and an ambient light into their GPU representation.
// A zero direction is kept as zero.
//
// Parameters:
//   - directional: the directional light
//   - ambient: the ambient light
//
// Returns:
//   - GPULightUniform: the uniform data
func Uniform(directional DirectionalLight, ambient AmbientLight) GPULightUniform {
	dir := directional.Direction
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return GPULightUniform{
		Direction: dir,
		Color:     directional.Radiance(),
		Ambient:   ambient.Radiance(),
	}
}

// Marshal returns the uniform bytes for upload.
//
// Returns:
//   - []byte: a copy of the 48 uniform bytes
func (g *GPULightUniform) Marshal() []byte {
	return append([]byte(nil), common.StructToBytes(g)...)
}
