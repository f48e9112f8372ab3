package resources

import (
	"iter"

	"github.com/Carmen-Shannon/echoes/engine/handle"
)

// dependents is an ordered set of instance lists. Iteration follows insertion order
// until a removal, which moves the last member into the vacated position.
type dependents struct {
	lists []handle.Handle[InstanceList]
	index map[handle.Handle[InstanceList]]int
}

func newDependents() *dependents {
	return &dependents{index: make(map[handle.Handle[InstanceList]]int)}
}

func (d *dependents) add(h handle.Handle[InstanceList]) {
	if _, ok := d.index[h]; ok {
		return
	}
	d.index[h] = len(d.lists)
	d.lists = append(d.lists, h)
}

func (d *dependents) remove(h handle.Handle[InstanceList]) bool {
	i, ok := d.index[h]
	if !ok {
		return false
	}
	last := len(d.lists) - 1
	if i != last {
		d.lists[i] = d.lists[last]
		d.index[d.lists[i]] = i
	}
	d.lists = d.lists[:last]
	delete(d.index, h)
	return true
}

func (d *dependents) contains(h handle.Handle[InstanceList]) bool {
	_, ok := d.index[h]
	return ok
}

func (d *dependents) len() int {
	return len(d.lists)
}

func (d *dependents) all() iter.Seq[handle.Handle[InstanceList]] {
	return func(yield func(handle.Handle[InstanceList]) bool) {
		for _, h := range d.lists {
			if !yield(h) {
				return
			}
		}
	}
}
