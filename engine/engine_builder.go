package engine

import (
	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/loop"
	"github.com/Carmen-Shannon/echoes/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions configures the window the engine creates. Ignored with WithWindow.
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithLoopOptions configures the game loop, for example its update and render rates.
func WithLoopOptions(options ...loop.GameLoopBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.loopOptions = append(e.loopOptions, options...)
	}
}

// WithClock sets the clock shared by the engine and its game loop.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(clock common.Clock) EngineBuilderOption {
	return func(e *engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithQuitOnEscape sets whether the escape key closes the window. Enabled by default.
func WithQuitOnEscape(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.quitOnEscape = enabled
	}
}
