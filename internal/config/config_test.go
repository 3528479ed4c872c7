package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
	"github.com/g-s-k-zoro/gsk-man-page/internal/layout"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.Default().Server, cfg.Server)
	assert.Equal(t, layout.DefaultConfig(), cfg.Layout)
	assert.Equal(t, 100*time.Millisecond, cfg.Viewport.Debounce)
	assert.Equal(t, 5*time.Minute, cfg.Visitor.CacheTTL)
	assert.Equal(t, uint32(5), cfg.Visitor.Breaker.MinRequests)
	assert.Equal(t, 3, cfg.Render.Labels.MaxLines)
	assert.Equal(t, time.Second/60, cfg.Render.FrameInterval())
	assert.Equal(t, "development", cfg.Tracing.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := writeFile(t, "portfolio.yaml", `
environment: production
server:
  address: ":9000"
layout:
  link_distance: 180
viewport:
  debounce: 250ms
`)
	t.Setenv("PORTFOLIO_LAYOUT_CHARGE_STRENGTH", "-600")
	t.Setenv("PORTFOLIO_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 180.0, cfg.Layout.LinkDistance)
	assert.Equal(t, -600.0, cfg.Layout.ChargeStrength)
	assert.Equal(t, 0.4, cfg.Layout.LinkStrengthScale)
	assert.Equal(t, 250*time.Millisecond, cfg.Viewport.Debounce)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Tracing.Environment)
}

func TestLoadConfig_RadialFactorReachesGeometry(t *testing.T) {
	path := writeFile(t, "portfolio.yaml", `
viewport:
  radial_factor: 0.25
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Viewport.RadialFactor)
	geo := viewport.Compute(cfg.Viewport, viewport.Size{Width: 1000, Height: 800})
	assert.InDelta(t, 200.0, geo.TargetRadius, 1e-9)
}

func TestLoadConfig_ClassicServerAddress(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7070")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "render:\n  frame_rate: 0\n")
	_, err = config.LoadConfig(bad)
	assert.ErrorContains(t, err, "render.frame_rate must be positive")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"no definition", func(c *config.Config) { c.Graph.DefinitionPath = "" }, "graph.definition_path"},
		{"no min viewport", func(c *config.Config) { c.Viewport.MinWidth = 0 }, "viewport minimum size"},
		{"inverted scale", func(c *config.Config) { c.Interaction.MinScale = 3 }, "scale range"},
		{"no positions dir", func(c *config.Config) { c.Positions.Directory = "" }, "positions.directory"},
		{"bad layout", func(c *config.Config) { c.Layout.LinkDistance = 0 }, "invalid configuration"},
		{"no label lines", func(c *config.Config) { c.Render.Labels.MaxLines = 0 }, "render.labels"},
		{"radial factor too big", func(c *config.Config) { c.Viewport.RadialFactor = 0.9 }, "viewport.radial_factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
}

func TestSampleConfigFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join("..", "..", "configs", "portfolio.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Graph.Watch)
	assert.Equal(t, "sketch", cfg.Render.Visual)
}
