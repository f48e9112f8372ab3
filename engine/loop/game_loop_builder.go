package loop

import (
	"time"

	"github.com/Carmen-Shannon/echoes/common"
)

// GameLoopBuilderOption is a functional option applied to a game loop during construction via NewGameLoop.
type GameLoopBuilderOption func(*gameLoop)

// WithUpdateRate sets the number of simulation updates per second.
// Non-positive rates fall back to DefaultUpdateRate.
//
// Parameters:
//   - ups: updates per second
//
// Returns:
//   - GameLoopBuilderOption: a function that applies the update rate
func WithUpdateRate(ups float64) GameLoopBuilderOption {
	return func(l *gameLoop) {
		l.updateRate = ups
	}
}

// WithRenderRate sets the number of rendered frames per second.
// Non-positive rates fall back to DefaultRenderRate.
//
// Parameters:
//   - fps: frames per second
//
// Returns:
//   - GameLoopBuilderOption: a function that applies the render rate
func WithRenderRate(fps float64) GameLoopBuilderOption {
	return func(l *gameLoop) {
		l.renderRate = fps
	}
}

// WithClock replaces the system clock, for example with a common.ManualClock in tests.
func WithClock(clock common.Clock) GameLoopBuilderOption {
	return func(l *gameLoop) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithStatsWindow sets the length of a timing statistics window.
func WithStatsWindow(window time.Duration) GameLoopBuilderOption {
	return func(l *gameLoop) {
		l.statsWindow = window
	}
}

// WithStatsReporter replaces the default statistics logging.
//
// Parameters:
//   - reporter: called once per completed statistics window
//
// Returns:
//   - GameLoopBuilderOption: a function that applies the reporter
func WithStatsReporter(reporter func(Stats)) GameLoopBuilderOption {
	return func(l *gameLoop) {
		l.statsReporter = reporter
	}
}
