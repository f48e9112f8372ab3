package resources

import (
	"fmt"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshSource is CPU-side mesh data ready for upload. mesh.Builder satisfies it.
type MeshSource interface {
	// VertexData returns the packed vertex bytes.
	VertexData() []byte
	// Indices returns the triangle indices.
	Indices() []uint32
}

// Mesh is an immutable vertex and index buffer pair on the GPU.
// There is no update operation: to change geometry, add a new mesh and create new instance lists for it.
type Mesh struct {
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
}

func newMesh(device gpu.Device, label string, src MeshSource) (*Mesh, error) {
	indices := src.Indices()
	if len(indices) == 0 {
		return nil, ErrEmptyMesh
	}

	vertices := src.VertexData()
	vb, err := uploadStatic(device, label+" vertices", vertices, wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	ib, err := uploadStatic(device, label+" indices", common.SliceToBytes(indices), wgpu.BufferUsageIndex)
	if err != nil {
		vb.Release()
		return nil, err
	}

	return &Mesh{
		vertexBuffer: vb,
		indexBuffer:  ib,
		indexCount:   uint32(len(indices)),
	}, nil
}

// uploadStatic creates a buffer sized for data and writes data into it.
func uploadStatic(device gpu.Device, label string, data []byte, usage wgpu.BufferUsage) (gpu.Buffer, error) {
	size := max(common.AlignUp(uint64(len(data)), gpu.CopyBufferAlignment), gpu.CopyBufferAlignment)
	buf, err := device.CreateBuffer(label, size, usage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
	}
	if len(data) == 0 {
		return buf, nil
	}

	if pad := size - uint64(len(data)); pad > 0 {
		data = append(append([]byte(nil), data...), make([]byte, pad)...)
	}
	if err := device.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("failed to write %s buffer: %w", label, err)
	}
	return buf, nil
}

// VertexBuffer returns the vertex buffer.
func (m *Mesh) VertexBuffer() gpu.Buffer {
	return m.vertexBuffer
}

// IndexBuffer returns the uint32 index buffer.
func (m *Mesh) IndexBuffer() gpu.Buffer {
	return m.indexBuffer
}

// IndexCount returns the number of indices drawn per instance.
func (m *Mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *Mesh) release() {
	m.vertexBuffer.Release()
	m.indexBuffer.Release()
}
