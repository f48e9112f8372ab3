package gputest

import "github.com/Carmen-Shannon/echoes/engine/renderer/gpu"

// Backend is a recording gpu.Backend combining a Device and a Surface.
type Backend struct {
	*Device
	*Surface
	Released bool
}

var _ gpu.Backend = &Backend{}

// NewBackend creates a recording backend with an unconfigured surface.
//
// Returns:
//   - *Backend: the backend
func NewBackend() *Backend {
	return &Backend{Device: NewDevice(), Surface: &Surface{}}
}

func (b *Backend) Release() {
	b.Released = true
}
