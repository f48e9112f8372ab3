// Package engine hosts a Game: it owns the window and the game loop, forwards window events
// to the game and waits between ticks as the loop asks.
package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/loop"
	"github.com/Carmen-Shannon/echoes/engine/window"
)

// WaitTimeout caps how long Run waits for events between ticks.
const WaitTimeout = time.Second

// Game is the program an Engine runs.
type Game interface {
	loop.Game

	// Resize is called with the new framebuffer size in pixels.
	Resize(width, height int)
}

// InputHandler is implemented by games that want input events.
type InputHandler interface {
	KeyDown(keyCode uint32)
	KeyUp(keyCode uint32)
	MouseButton(button uint32, pressed bool, x, y float32)
	MouseMove(x, y float32)
	Scroll(delta float32)
}

type engine struct {
	window        window.Window
	windowOptions []window.WindowBuilderOption

	loop        loop.GameLoop
	loopOptions []loop.GameLoopBuilderOption
	clock       common.Clock

	quitOnEscape bool
}

// Engine drives a Game on the calling thread, which must be the main thread on platforms
// that require it for windowing.
type Engine interface {
	// Window returns the engine's window.
	Window() window.Window

	// Loop returns the game loop.
	Loop() loop.GameLoop

	// Run wires the window events to game, then ticks the loop until the window is asked to
	// close. The window is closed before Run returns.
	//
	// Parameters:
	//   - game: the game to run
	//
	// Returns:
	//   - error: an error if the window cannot be closed cleanly
	Run(game Game) error

	// Quit asks the window to close; Run returns after the current tick.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates the engine and, unless WithWindow is given, its window.
//
// Parameters:
//   - options: functional options for the window, the loop and input handling
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		clock:        common.SystemClock(),
		quitOnEscape: true,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window == nil {
		e.window = window.NewWindow(e.windowOptions...)
	}
	loopOptions := append([]loop.GameLoopBuilderOption{loop.WithClock(e.clock)}, e.loopOptions...)
	e.loop = loop.NewGameLoop(loopOptions...)
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Loop() loop.GameLoop {
	return e.loop
}

func (e *engine) Quit() {
	e.window.RequestClose()
}

func (e *engine) Run(game Game) error {
	e.bind(game)
	e.loop.Reset()
	log.Printf("[Engine] running at %v per update, %v per frame", e.loop.UpdatePeriod(), e.loop.RenderPeriod())

	for !e.window.ShouldClose() {
		cf := e.loop.Tick(game)
		if cf.Kind == loop.Poll {
			e.window.PollEvents()
			continue
		}
		e.window.WaitEvents(min(cf.Timeout(e.clock.Now()), WaitTimeout))
	}

	log.Printf("[Engine] stopped, last window: %.2f FPS, %.2f UPS", e.loop.Stats().FPS(), e.loop.Stats().UPS())
	return e.window.Close()
}

// bind routes window events to game.
func (e *engine) bind(game Game) {
	input, _ := game.(InputHandler)

	e.window.SetResizeCallback(func(width, height int) {
		game.Resize(width, height)
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if e.quitOnEscape && keyCode == common.KeyEsc {
			e.Quit()
			return
		}
		if input != nil {
			input.KeyDown(keyCode)
		}
	})

	if input == nil {
		e.window.SetKeyUpCallback(nil)
		e.window.SetMouseButtonCallback(nil)
		e.window.SetMouseMoveCallback(nil)
		e.window.SetScrollCallback(nil)
		return
	}
	e.window.SetKeyUpCallback(input.KeyUp)
	e.window.SetMouseButtonCallback(input.MouseButton)
	e.window.SetMouseMoveCallback(input.MouseMove)
	e.window.SetScrollCallback(input.Scroll)
}
