// Package handle provides generational handles and the arena that issues them.
//
// A Handle names a slot in an Arena together with the generation the slot had when the
// value was inserted. Removing a value bumps the slot's generation, so every handle issued
// before the removal stops resolving, even after the slot is reused for a new value.
package handle

import "fmt"

// Handle is an opaque, comparable reference to a value of type T stored in an Arena[T].
// The zero Handle is never issued by an arena and never resolves.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero handle.
//
// Returns:
//   - bool: true if h was never issued by an arena
func (h Handle[T]) IsZero() bool {
	return h.generation == 0
}

// Index returns the slot index of the handle.
//
// Returns:
//   - uint32: the slot index
func (h Handle[T]) Index() uint32 {
	return h.index
}

// Generation returns the generation the slot had when the handle was issued.
//
// Returns:
//   - uint32: the generation counter
func (h Handle[T]) Generation() uint32 {
	return h.generation
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("Handle[%T](%d:%d)", *new(T), h.index, h.generation)
}
