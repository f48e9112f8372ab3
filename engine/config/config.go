// Package config reads the optional TOML file that configures the window, the game loop and
// the renderer, and turns it into builder options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/echoes/engine/loop"
	"github.com/Carmen-Shannon/echoes/engine/renderer"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/resources"
	"github.com/Carmen-Shannon/echoes/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned when a decoded configuration holds an unusable value.
var ErrInvalidConfig = errors.New("invalid config")

const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Loop     LoopConfig     `toml:"loop"`
	Renderer RendererConfig `toml:"renderer"`
}

// WindowConfig is the [window] table.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
	Resizable bool   `toml:"resizable"`
}

// LoopConfig is the [loop] table.
type LoopConfig struct {
	UpdateRate         float64 `toml:"update_rate"`
	RenderRate         float64 `toml:"render_rate"`
	StatsWindowSeconds float64 `toml:"stats_window_seconds"`
}

// RendererConfig is the [renderer] table.
type RendererConfig struct {
	PresentMode      string     `toml:"present_mode"`
	MSAA             int        `toml:"msaa"`
	SoftwareRenderer bool       `toml:"software_renderer"`
	PackWorkers      int        `toml:"pack_workers"`
	ClearColor       [4]float64 `toml:"clear_color"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "echoes",
			Width:     640,
			Height:    512,
			Resizable: true,
		},
		Loop: LoopConfig{
			UpdateRate:         loop.DefaultUpdateRate,
			RenderRate:         loop.DefaultRenderRate,
			StatsWindowSeconds: loop.DefaultStatsWindow.Seconds(),
		},
		Renderer: RendererConfig{
			PresentMode: PresentModeVSync,
			MSAA:        1,
			PackWorkers: 1,
			ClearColor: [4]float64{
				renderer.DefaultClearColor.R,
				renderer.DefaultClearColor.G,
				renderer.DefaultClearColor.B,
				renderer.DefaultClearColor.A,
			},
		},
	}
}

// Load reads the file at path over the defaults.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes c as TOML to w.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig for the first bad value
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Loop.UpdateRate <= 0:
		return fmt.Errorf("%w: update_rate %v", ErrInvalidConfig, c.Loop.UpdateRate)
	case c.Loop.RenderRate <= 0:
		return fmt.Errorf("%w: render_rate %v", ErrInvalidConfig, c.Loop.RenderRate)
	case c.Loop.StatsWindowSeconds <= 0:
		return fmt.Errorf("%w: stats_window_seconds %v", ErrInvalidConfig, c.Loop.StatsWindowSeconds)
	case c.Renderer.PresentMode != PresentModeVSync && c.Renderer.PresentMode != PresentModeUncapped:
		return fmt.Errorf("%w: present_mode %q", ErrInvalidConfig, c.Renderer.PresentMode)
	case c.Renderer.MSAA != int(gpu.MSAAOff) && c.Renderer.MSAA != int(gpu.MSAA4x):
		return fmt.Errorf("%w: msaa %d", ErrInvalidConfig, c.Renderer.MSAA)
	case c.Renderer.PackWorkers < 1:
		return fmt.Errorf("%w: pack_workers %d", ErrInvalidConfig, c.Renderer.PackWorkers)
	}
	return nil
}

// WindowOptions translates the [window] table.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	w := c.Window
	return []window.WindowBuilderOption{
		window.WithTitle(w.Title),
		window.WithSize(w.Width, w.Height),
		window.WithMinSize(w.MinWidth, w.MinHeight),
		window.WithMaxSize(w.MaxWidth, w.MaxHeight),
		window.WithResizable(w.Resizable),
	}
}

// LoopOptions translates the [loop] table.
func (c Config) LoopOptions() []loop.GameLoopBuilderOption {
	return []loop.GameLoopBuilderOption{
		loop.WithUpdateRate(c.Loop.UpdateRate),
		loop.WithRenderRate(c.Loop.RenderRate),
		loop.WithStatsWindow(time.Duration(c.Loop.StatsWindowSeconds * float64(time.Second))),
	}
}

// RendererOptions translates the [renderer] table.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	r := c.Renderer
	mode := gpu.PresentModeVSync
	if r.PresentMode == PresentModeUncapped {
		mode = gpu.PresentModeUncapped
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(gpu.MSAASampleCount(r.MSAA)),
		renderer.WithForceSoftwareRenderer(r.SoftwareRenderer),
		renderer.WithClearColor(wgpu.Color{R: r.ClearColor[0], G: r.ClearColor[1], B: r.ClearColor[2], A: r.ClearColor[3]}),
		renderer.WithResourceOptions(resources.WithPackWorkers(r.PackWorkers)),
	}
}
