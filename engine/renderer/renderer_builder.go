package renderer

import (
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/resources"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode gpu.PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.backendOptions = append(r.backendOptions, gpu.WithPresentMode(mode))
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. MSAA is off unless set.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count gpu.MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.backendOptions = append(r.backendOptions, gpu.WithMSAA(count))
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.backendOptions = append(r.backendOptions, gpu.WithForceSoftwareRenderer(force))
	}
}

// WithClearColor overrides DefaultClearColor.
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithResourceOptions forwards options to the resource registry, such as
// resources.WithPackWorkers.
//
// Parameters:
//   - options: the registry options
//
// Returns:
//   - RendererBuilderOption: a function that applies the registry options to a renderer
func WithResourceOptions(options ...resources.ResourcesBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.resourceOptions = append(r.resourceOptions, options...)
	}
}
