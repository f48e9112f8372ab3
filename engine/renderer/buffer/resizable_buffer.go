package buffer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBufferGrowth is returned when a buffer cannot be reallocated to hold new data.
var ErrBufferGrowth = errors.New("failed to grow buffer")

// ResizableBuffer is a GPU buffer that reallocates to a larger backing buffer when asked to
// hold more bytes than its capacity. It tracks the logical size of the last update separately
// from the physical capacity.
type ResizableBuffer interface {
	// Update replaces the buffer contents with data, growing the allocation if needed.
	// Bytes past len(data) are unspecified.
	//
	// Parameters:
	//   - data: the new contents
	//
	// Returns:
	//   - error: an error wrapping ErrBufferGrowth if reallocation fails, or the write error
	Update(data []byte) error

	// Size returns the logical size in bytes set by the last Update.
	Size() uint64

	// Capacity returns the physical size of the current allocation in bytes.
	Capacity() uint64

	// Usage returns the usage flags every allocation is created with.
	Usage() wgpu.BufferUsage

	// Buffer returns the current GPU buffer. It changes when the buffer grows.
	Buffer() gpu.Buffer

	// Release frees the GPU allocation.
	Release()
}

type resizableBuffer struct {
	device  gpu.Device
	label   string
	usage   wgpu.BufferUsage
	buffer  gpu.Buffer
	size    uint64
	scratch []byte
}

var _ ResizableBuffer = &resizableBuffer{}

// NewResizableBuffer allocates a buffer of at least capacity bytes.
// The capacity is rounded up to gpu.CopyBufferAlignment and CopyDst is always added to usage.
//
// Parameters:
//   - device: the device that allocates and writes the buffer
//   - label: debug label for every allocation
//   - capacity: the initial capacity in bytes
//   - usage: the usage flags
//
// Returns:
//   - ResizableBuffer: the new buffer, with size 0
//   - error: an error if the initial allocation fails
func NewResizableBuffer(device gpu.Device, label string, capacity uint64, usage wgpu.BufferUsage) (ResizableBuffer, error) {
	rb := &resizableBuffer{
		device: device,
		label:  label,
		usage:  usage | wgpu.BufferUsageCopyDst,
	}

	buf, err := device.CreateBuffer(label, alignedCapacity(capacity), rb.usage)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	rb.buffer = buf
	return rb, nil
}

func (b *resizableBuffer) Update(data []byte) error {
	n := uint64(len(data))
	if n == 0 {
		b.size = 0
		return nil
	}

	if n > b.buffer.Size() {
		grown, err := b.device.CreateBuffer(b.label, GrowthCapacity(n), b.usage)
		if err != nil {
			return fmt.Errorf("%w %q to %d bytes: %w", ErrBufferGrowth, b.label, GrowthCapacity(n), err)
		}
		b.buffer.Release()
		b.buffer = grown
	}

	if err := b.device.WriteBuffer(b.buffer, 0, b.padded(data)); err != nil {
		return fmt.Errorf("failed to write buffer %q: %w", b.label, err)
	}
	b.size = n
	return nil
}

// padded returns data, or a zero-padded copy when its length is not write aligned.
func (b *resizableBuffer) padded(data []byte) []byte {
	n := uint64(len(data))
	aligned := common.AlignUp(n, gpu.CopyBufferAlignment)
	if aligned == n {
		return data
	}

	if uint64(cap(b.scratch)) < aligned {
		b.scratch = make([]byte, aligned)
	}
	b.scratch = b.scratch[:aligned]
	copy(b.scratch, data)
	clear(b.scratch[n:])
	return b.scratch
}

func (b *resizableBuffer) Size() uint64 {
	return b.size
}

func (b *resizableBuffer) Capacity() uint64 {
	return b.buffer.Size()
}

func (b *resizableBuffer) Usage() wgpu.BufferUsage {
	return b.usage
}

func (b *resizableBuffer) Buffer() gpu.Buffer {
	return b.buffer
}

func (b *resizableBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// GrowthCapacity returns the capacity a buffer grows to when asked to hold n bytes:
// n plus a quarter, rounded up to gpu.CopyBufferAlignment.
//
// Parameters:
//   - n: the requested size in bytes
//
// Returns:
//   - uint64: the new capacity
func GrowthCapacity(n uint64) uint64 {
	return common.AlignUp(n+n/4, gpu.CopyBufferAlignment)
}

func alignedCapacity(n uint64) uint64 {
	return max(common.AlignUp(n, gpu.CopyBufferAlignment), gpu.CopyBufferAlignment)
}
