package resources

import (
	"fmt"

	"github.com/Carmen-Shannon/echoes/engine/camera"
	"github.com/Carmen-Shannon/echoes/engine/light"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformBuffer is a fixed-size uniform buffer rewritten whole on every update.
type uniformBuffer struct {
	device gpu.Device
	buffer gpu.Buffer
}

func newUniformBuffer(device gpu.Device, label string, size uint64) (*uniformBuffer, error) {
	buf, err := device.CreateBuffer(label, size, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return &uniformBuffer{device: device, buffer: buf}, nil
}

func (u *uniformBuffer) write(data []byte) error {
	return u.device.WriteBuffer(u.buffer, 0, data)
}

// cameraResource holds the camera uniform: eye position and view-projection matrix.
type cameraResource struct {
	*uniformBuffer
}

func newCameraResource(device gpu.Device, label string) (*cameraResource, error) {
	u, err := newUniformBuffer(device, label+" camera", camera.GPUCameraUniformSize)
	if err != nil {
		return nil, err
	}
	return &cameraResource{u}, nil
}

func (c *cameraResource) update(cam camera.Camera) error {
	data := camera.Uniform(cam)
	return c.write(data.Marshal())
}

// lightResource holds the light uniform: one directional light and the ambient term.
type lightResource struct {
	*uniformBuffer
}

func newLightResource(device gpu.Device, label string) (*lightResource, error) {
	u, err := newUniformBuffer(device, label+" light", light.GPULightUniformSize)
	if err != nil {
		return nil, err
	}
	return &lightResource{u}, nil
}

func (l *lightResource) update(directional light.DirectionalLight, ambient light.AmbientLight) error {
	data := light.Uniform(directional, ambient)
	return l.write(data.Marshal())
}
