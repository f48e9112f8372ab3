package resources

import (
	"fmt"
	"iter"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/Carmen-Shannon/echoes/engine/renderer/buffer"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// InstanceList holds every instance of one mesh drawn with one pipeline, plus the GPU buffer
// of packed data for the active ones. The drawn instance count is the number of active instances
// at the last rebuild; changes made after it are invisible until the next one.
type InstanceList struct {
	mesh     handle.Handle[Mesh]
	pipeline handle.Handle[Pipeline]

	instances *handle.Arena[Instance]
	active    int

	staging  []InstanceData
	buffer   buffer.ResizableBuffer
	buffered uint32
}

func newInstanceList(device gpu.Device, label string, p handle.Handle[Pipeline], m handle.Handle[Mesh], capacity uint64) (*InstanceList, error) {
	buf, err := buffer.NewResizableBuffer(device, label, capacity, wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	return &InstanceList{
		mesh:      m,
		pipeline:  p,
		instances: handle.NewArena[Instance](0),
		buffer:    buf,
	}, nil
}

// Mesh returns the mesh the list draws.
func (l *InstanceList) Mesh() handle.Handle[Mesh] {
	return l.mesh
}

// Pipeline returns the pipeline the list is drawn with.
func (l *InstanceList) Pipeline() handle.Handle[Pipeline] {
	return l.pipeline
}

// AddInstance adds an active instance.
//
// Parameters:
//   - t: the instance transform
//
// Returns:
//   - handle.Handle[Instance]: the new instance's handle within this list
func (l *InstanceList) AddInstance(t common.Transform) handle.Handle[Instance] {
	l.active++
	return l.instances.Insert(Instance{Transform: t, Active: true})
}

// UpdateInstance replaces an instance's transform.
//
// Parameters:
//   - h: the instance
//   - t: the new transform
//
// Returns:
//   - error: ErrStaleHandle if h does not address a live instance
func (l *InstanceList) UpdateInstance(h handle.Handle[Instance], t common.Transform) error {
	inst, err := l.lookup(h)
	if err != nil {
		return err
	}
	inst.Transform = t
	return nil
}

// SetInstanceActive shows or hides an instance without removing it.
//
// Parameters:
//   - h: the instance
//   - active: whether the instance is drawn
//
// Returns:
//   - error: ErrStaleHandle if h does not address a live instance
func (l *InstanceList) SetInstanceActive(h handle.Handle[Instance], active bool) error {
	inst, err := l.lookup(h)
	if err != nil {
		return err
	}
	if inst.Active != active {
		inst.Active = active
		if active {
			l.active++
		} else {
			l.active--
		}
	}
	return nil
}

// RemoveInstance removes an instance. Its handle, and any copy of it, is stale afterwards.
//
// Parameters:
//   - h: the instance
//
// Returns:
//   - error: ErrStaleHandle if h does not address a live instance
func (l *InstanceList) RemoveInstance(h handle.Handle[Instance]) error {
	inst, ok := l.instances.Remove(h)
	if !ok {
		return fmt.Errorf("%w: instance %v", ErrStaleHandle, h)
	}
	if inst.Active {
		l.active--
	}
	return nil
}

// Instance returns a copy of an instance.
//
// Parameters:
//   - h: the instance
//
// Returns:
//   - Instance: the instance
//   - error: ErrStaleHandle if h does not address a live instance
func (l *InstanceList) Instance(h handle.Handle[Instance]) (Instance, error) {
	inst, err := l.lookup(h)
	if err != nil {
		return Instance{}, err
	}
	return *inst, nil
}

// Instances iterates the live instances in slot order.
func (l *InstanceList) Instances() iter.Seq2[handle.Handle[Instance], *Instance] {
	return l.instances.All()
}

// InstanceCount returns the number of live instances, active or not.
func (l *InstanceList) InstanceCount() int {
	return l.instances.Len()
}

// ActiveInstanceCount returns the number of live active instances.
func (l *InstanceList) ActiveInstanceCount() int {
	return l.active
}

// Pack refills the CPU staging data with the active instances in slot order.
// It touches nothing but this list's staging data.
func (l *InstanceList) Pack() {
	l.staging = l.staging[:0]
	for _, inst := range l.instances.All() {
		if inst.Active {
			l.staging = append(l.staging, inst.ToData())
		}
	}
}

// Upload writes the staged data to the instance buffer and records the drawn instance count.
//
// Returns:
//   - error: an error if the buffer cannot grow or be written
func (l *InstanceList) Upload() error {
	if err := l.buffer.Update(common.SliceToBytes(l.staging)); err != nil {
		return err
	}
	l.buffered = uint32(len(l.staging))
	return nil
}

// BuildAndUploadInstanceBuffer packs the active instances and uploads them.
// It must run once per rendered frame before the list is drawn.
//
// Returns:
//   - error: an error if the upload fails
func (l *InstanceList) BuildAndUploadInstanceBuffer() error {
	l.Pack()
	return l.Upload()
}

// Staged returns the instance data produced by the last Pack.
func (l *InstanceList) Staged() []InstanceData {
	return l.staging
}

// BufferedInstanceCount returns the number of instances in the GPU buffer as of the last upload.
func (l *InstanceList) BufferedInstanceCount() uint32 {
	return l.buffered
}

// InstanceBuffer returns the GPU buffer of packed instance data.
func (l *InstanceList) InstanceBuffer() gpu.Buffer {
	return l.buffer.Buffer()
}

// InstanceBufferSize returns the number of valid bytes in the instance buffer.
func (l *InstanceList) InstanceBufferSize() uint64 {
	return l.buffer.Size()
}

func (l *InstanceList) lookup(h handle.Handle[Instance]) (*Instance, error) {
	inst, ok := l.instances.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: instance %v", ErrStaleHandle, h)
	}
	return inst, nil
}

func (l *InstanceList) release() {
	l.buffer.Release()
}
