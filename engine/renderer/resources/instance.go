package resources

import (
	"unsafe"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Instance is one placed occurrence of a mesh. Inactive instances stay in their list but are not drawn.
type Instance struct {
	Transform common.Transform
	Active    bool
}

// InstanceData is the per-instance vertex data: the model matrix and the rotation-only
// normal matrix, both column-major.
type InstanceData struct {
	Model  mgl32.Mat4
	Normal mgl32.Mat3
}

// InstanceDataSize is the byte size and vertex stride of InstanceData.
const InstanceDataSize = uint64(unsafe.Sizeof(InstanceData{}))

// ToData computes the packed instance data for the instance's current transform.
func (i Instance) ToData() InstanceData {
	return InstanceData{
		Model:  i.Transform.Model(),
		Normal: i.Transform.RotationMatrix(),
	}
}

// InstanceLayout returns the instance-stepped vertex buffer layout of InstanceData.
// The model matrix columns occupy shader locations 5 to 8 and the normal matrix columns 9 to 11.
func InstanceLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, 7)
	for col := range 4 {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(col * 16),
			ShaderLocation: uint32(5 + col),
		})
	}
	for col := range 3 {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         uint64(64 + col*12),
			ShaderLocation: uint32(9 + col),
		})
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceDataSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

// InstanceRef addresses one instance: the list that owns it and its handle within that list.
type InstanceRef struct {
	List     handle.Handle[InstanceList]
	Instance handle.Handle[Instance]
}
