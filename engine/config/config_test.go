package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/echoes/engine/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15.0, cfg.Loop.UpdateRate)
	assert.Equal(t, 60.0, cfg.Loop.RenderRate)
	assert.Equal(t, 20.0, cfg.Loop.StatsWindowSeconds)
	assert.Equal(t, [4]float64{0.01, 0.01, 0.01, 1}, cfg.Renderer.ClearColor)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
[window]
title = "instances"
width = 1280

[loop]
update_rate = 30.0

[renderer]
present_mode = "uncapped"
pack_workers = 4
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "instances", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 512, cfg.Window.Height)
	assert.True(t, cfg.Window.Resizable)
	assert.Equal(t, 30.0, cfg.Loop.UpdateRate)
	assert.Equal(t, 60.0, cfg.Loop.RenderRate)
	assert.Equal(t, PresentModeUncapped, cfg.Renderer.PresentMode)
	assert.Equal(t, 4, cfg.Renderer.PackWorkers)
	assert.Equal(t, 1, cfg.Renderer.MSAA)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[window]\nfullscreen = true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestDecodeRejectsMalformedToml(t *testing.T) {
	_, err := Decode(strings.NewReader("[window\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"zero update rate", func(c *Config) { c.Loop.UpdateRate = 0 }},
		{"negative render rate", func(c *Config) { c.Loop.RenderRate = -1 }},
		{"zero stats window", func(c *Config) { c.Loop.StatsWindowSeconds = 0 }},
		{"unknown present mode", func(c *Config) { c.Renderer.PresentMode = "mailbox" }},
		{"unsupported msaa", func(c *Config) { c.Renderer.MSAA = 8 }},
		{"no pack workers", func(c *Config) { c.Renderer.PackWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoes.toml")
	require.NoError(t, os.WriteFile(path, []byte("[loop]\nrender_rate = 144.0\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 144.0, cfg.Loop.RenderRate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeDecodes(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "round trip"

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestLoopOptions(t *testing.T) {
	cfg := Default()
	cfg.Loop.UpdateRate = 20
	cfg.Loop.RenderRate = 50

	l := loop.NewGameLoop(cfg.LoopOptions()...)
	assert.Equal(t, 50*time.Millisecond, l.UpdatePeriod())
	assert.Equal(t, 20*time.Millisecond, l.RenderPeriod())
}

func TestOptionLists(t *testing.T) {
	cfg := Default()

	assert.Len(t, cfg.WindowOptions(), 5)
	assert.Len(t, cfg.RendererOptions(), 5)
}
