package handle

import (
	"fmt"
	"iter"
)

type slot[T any] struct {
	value      *T
	generation uint32
}

// Arena owns a collection of values addressable by generational handles.
// It is not safe for concurrent mutation.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	len   int
}

// NewArena creates an empty Arena with room for capacity values before growing.
//
// Parameters:
//   - capacity: the initial slot capacity
//
// Returns:
//   - *Arena[T]: the new arena
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores value and returns a fresh handle for it. A reused slot carries a
// generation newer than any handle previously issued for it.
//
// Parameters:
//   - value: the value to store
//
// Returns:
//   - Handle[T]: the handle addressing the stored value
func (a *Arena[T]) Insert(value T) Handle[T] {
	v := new(T)
	*v = value
	a.len++

	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[index]
		s.value = v
		return Handle[T]{index: index, generation: s.generation}
	}

	a.slots = append(a.slots, slot[T]{value: v, generation: 1})
	return Handle[T]{index: uint32(len(a.slots) - 1), generation: 1}
}

// Get returns a pointer to the value addressed by h.
// The pointer stays valid until the value is removed.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *T: the stored value, or nil if h is stale
//   - bool: false if h is stale, zero, or was issued by another arena layout
func (a *Arena[T]) Get(h Handle[T]) (*T, bool) {
	if h.generation == 0 || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.value == nil || s.generation != h.generation {
		return nil, false
	}
	return s.value, true
}

// MustGet is like Get but panics if h does not resolve.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *T: the stored value
func (a *Arena[T]) MustGet(h Handle[T]) *T {
	v, ok := a.Get(h)
	if !ok {
		panic(fmt.Sprintf("stale or unknown handle %v", h))
	}
	return v
}

// Contains reports whether h currently resolves.
func (a *Arena[T]) Contains(h Handle[T]) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove frees the slot addressed by h and returns its value.
// Every outstanding handle to the slot becomes stale.
//
// Parameters:
//   - h: the handle of the value to remove
//
// Returns:
//   - T: the removed value, or the zero value if h was stale
//   - bool: false if h did not resolve
func (a *Arena[T]) Remove(h Handle[T]) (T, bool) {
	v, ok := a.Get(h)
	if !ok {
		var zero T
		return zero, false
	}
	s := &a.slots[h.index]
	s.value = nil
	s.generation++
	a.len--
	if s.generation == 0 {
		// generations exhausted; the slot is retired so no old handle can match again
		return *v, true
	}
	a.free = append(a.free, h.index)
	return *v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.len
}

// All iterates live values in slot order.
//
// Returns:
//   - iter.Seq2[Handle[T], *T]: handle and value pairs
func (a *Arena[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range a.slots {
			s := a.slots[i]
			if s.value == nil {
				continue
			}
			if !yield(Handle[T]{index: uint32(i), generation: s.generation}, s.value) {
				return
			}
		}
	}
}

// Handles returns the handles of all live values in slot order.
//
// Returns:
//   - []Handle[T]: a snapshot of live handles
func (a *Arena[T]) Handles() []Handle[T] {
	out := make([]Handle[T], 0, a.len)
	for h := range a.All() {
		out = append(out, h)
	}
	return out
}
