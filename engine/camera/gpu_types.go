package camera

import (
	"unsafe"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniform is the camera uniform as laid out in WGSL:
//
//	struct Camera { position: vec4<f32>, view_proj: mat4x4<f32> }
//
// Size: 80 bytes.
type GPUCameraUniform struct {
	Position mgl32.Vec4 // offset  0: homogeneous eye position, w = 1
	ViewProj mgl32.Mat4 // offset 16: column-major view-projection matrix
}

// GPUCameraUniformSize is the byte size of GPUCameraUniform.
const GPUCameraUniformSize = uint64(unsafe.Sizeof(GPUCameraUniform{}))

// Uniform snapshots the camera into its GPU representation.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - GPUCameraUniform: the uniform data
func Uniform(c Camera) GPUCameraUniform {
	return GPUCameraUniform{
		Position: c.Eye().Vec4(1),
		ViewProj: c.ViewProjectionMatrix(),
	}
}

// Marshal returns the uniform bytes for upload.
//
// Returns:
//   - []byte: a copy of the 80 uniform bytes
func (g *GPUCameraUniform) Marshal() []byte {
	return append([]byte(nil), common.StructToBytes(g)...)
}
