// Package loop schedules fixed-rate simulation updates and renders on a single thread.
// The host calls Tick on every wake-up and waits as the returned ControlFlow says.
package loop

import (
	"time"

	"github.com/Carmen-Shannon/echoes/common"
)

const (
	// DefaultUpdateRate is the default number of simulation updates per second.
	DefaultUpdateRate = 15.0
	// DefaultRenderRate is the default number of rendered frames per second.
	DefaultRenderRate = 60.0
)

// Game receives the callbacks dispatched by a GameLoop.
type Game interface {
	// Update advances the simulation by one fixed step.
	Update()

	// Render draws one frame.
	//
	// Parameters:
	//   - sinceRender: the time since the previous render started
	//   - sinceUpdate: the time since the latest update started, for interpolation
	Render(sinceRender, sinceUpdate time.Duration)
}

type gameLoop struct {
	clock common.Clock
	stats *TimingStats

	updatePeriod time.Duration
	renderPeriod time.Duration

	updateAccumulator time.Duration
	renderAccumulator time.Duration

	lastTick   time.Time
	lastUpdate time.Time
	lastRender time.Time

	updateNext bool
	renderNext bool

	// builder state
	updateRate    float64
	renderRate    float64
	statsWindow   time.Duration
	statsReporter func(Stats)
}

// GameLoop decouples the simulation rate from the presentation rate.
//
// Each Tick adds the wall time since the previous tick to an update and a render accumulator,
// clamps each to twice its period, runs the callbacks scheduled by the previous tick, and
// decides when the next tick is needed. Renders are dispatched before updates.
//
// A GameLoop is not safe for concurrent use.
type GameLoop interface {
	// Tick runs the due callbacks and returns when to tick next.
	//
	// Parameters:
	//   - game: the receiver of the update and render callbacks
	//
	// Returns:
	//   - ControlFlow: Poll if a callback is already due, otherwise WaitUntil the nearer deadline
	Tick(game Game) ControlFlow

	// Reset clears the accumulators, the due flags and the statistics and restarts every
	// timestamp at the current time. The periods are kept.
	Reset()

	// SinceUpdate returns the time since the latest update started.
	SinceUpdate() time.Duration

	// SinceRender returns the time since the latest render started.
	SinceRender() time.Duration

	UpdatePeriod() time.Duration
	RenderPeriod() time.Duration
	UpdateAccumulator() time.Duration
	RenderAccumulator() time.Duration

	// Stats returns the timing statistics of the loop.
	Stats() *TimingStats
}

var _ GameLoop = &gameLoop{}

// NewGameLoop creates a game loop at DefaultUpdateRate and DefaultRenderRate on the system
// clock unless configured otherwise. Every timestamp starts at construction time.
//
// Parameters:
//   - options: functional options for rates, clock and statistics
//
// Returns:
//   - GameLoop: the new loop
func NewGameLoop(options ...GameLoopBuilderOption) GameLoop {
	l := &gameLoop{
		clock:       common.SystemClock(),
		updateRate:  DefaultUpdateRate,
		renderRate:  DefaultRenderRate,
		statsWindow: DefaultStatsWindow,
	}
	for _, opt := range options {
		opt(l)
	}

	l.updatePeriod = periodOf(l.updateRate, DefaultUpdateRate)
	l.renderPeriod = periodOf(l.renderRate, DefaultRenderRate)
	l.stats = NewTimingStats(l.clock, l.statsWindow, l.statsReporter)
	l.Reset()
	return l
}

func periodOf(rate, fallback float64) time.Duration {
	if rate <= 0 {
		rate = fallback
	}
	return time.Duration(float64(time.Second) / rate)
}

func (l *gameLoop) Reset() {
	now := l.clock.Now()
	l.updateAccumulator = 0
	l.renderAccumulator = 0
	l.lastTick = now
	l.lastUpdate = now
	l.lastRender = now
	l.updateNext = false
	l.renderNext = false
	l.stats.Reset()
}

func (l *gameLoop) Tick(game Game) ControlFlow {
	now := l.clock.Now()
	delta := now.Sub(l.lastTick)
	l.lastTick = now
	l.updateAccumulator = min(l.updateAccumulator+delta, 2*l.updatePeriod)
	l.renderAccumulator = min(l.renderAccumulator+delta, 2*l.renderPeriod)

	if l.renderNext {
		l.renderAccumulator -= l.renderPeriod
		start := l.clock.Now()
		sinceRender := start.Sub(l.lastRender)
		l.lastRender = start
		game.Render(sinceRender, l.SinceUpdate())
		l.stats.Render()
	}

	if l.updateNext {
		l.updateAccumulator -= l.updatePeriod
		// Update starts stay evenly spaced, so the timestamp is taken before the call.
		l.lastUpdate = l.clock.Now()
		game.Update()
		l.stats.Update()
	}

	return l.reschedule(now)
}

func (l *gameLoop) reschedule(now time.Time) ControlFlow {
	renderDue := l.renderAccumulator >= l.renderPeriod
	updateDue := l.updateAccumulator >= l.updatePeriod
	if renderDue || updateDue {
		l.renderNext = renderDue
		l.updateNext = updateDue
		return ControlFlow{Kind: Poll}
	}

	untilRender := l.renderPeriod - l.renderAccumulator
	untilUpdate := l.updatePeriod - l.updateAccumulator
	switch {
	case untilRender < untilUpdate:
		l.renderNext, l.updateNext = true, false
		return ControlFlow{Kind: WaitUntil, Deadline: now.Add(untilRender)}
	case untilUpdate < untilRender:
		l.renderNext, l.updateNext = false, true
		return ControlFlow{Kind: WaitUntil, Deadline: now.Add(untilUpdate)}
	default:
		l.renderNext, l.updateNext = true, true
		return ControlFlow{Kind: WaitUntil, Deadline: now.Add(untilUpdate)}
	}
}

func (l *gameLoop) SinceUpdate() time.Duration {
	return l.clock.Now().Sub(l.lastUpdate)
}

func (l *gameLoop) SinceRender() time.Duration {
	return l.clock.Now().Sub(l.lastRender)
}

func (l *gameLoop) UpdatePeriod() time.Duration {
	return l.updatePeriod
}

func (l *gameLoop) RenderPeriod() time.Duration {
	return l.renderPeriod
}

func (l *gameLoop) UpdateAccumulator() time.Duration {
	return l.updateAccumulator
}

func (l *gameLoop) RenderAccumulator() time.Duration {
	return l.renderAccumulator
}

func (l *gameLoop) Stats() *TimingStats {
	return l.stats
}
