package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	def, err := os.ReadFile(filepath.Join("..", "..", "data", "site-structure.json"))
	require.NoError(t, err)
	path := filepath.Join(dir, "site-structure.json")
	require.NoError(t, os.WriteFile(path, def, 0o644))

	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Graph.DefinitionPath = path
	cfg.Search.ContentPath = filepath.Join("..", "..", "data", "content.yaml")
	cfg.Positions.Directory = filepath.Join(dir, "positions")
	return &cfg
}

func TestInitializeContainer(t *testing.T) {
	cfg := testConfig(t)

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	t.Cleanup(func() { assert.NoError(t, c.Shutdown(context.Background())) })

	assert.Nil(t, c.Watcher)
	assert.Equal(t, cfg.Server.Address, c.Server.Addr)

	tests := []struct {
		path   string
		status int
	}{
		{"/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/graph", http.StatusOK},
		{"/api/v1/search?q=puzzles", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestInitializeContainer_MissingDefinition(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.DefinitionPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeContainer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeContainer_WatchReload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.Watch = true

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c.Watcher)
	c.Watcher.SetDebounce(10 * time.Millisecond)
	require.NoError(t, c.Start())
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	before := c.Site.Graph().Len()
	results, err := c.Search.Search("zebra")
	require.NoError(t, err)
	require.Empty(t, results)

	next := `{"nodes":[{"id":"zebra","title":"Zebra Crossing","color":"#fff","size":"small"},{"id":"home","title":"Home","size":"large"}],
	          "links":[{"source":"home","target":"zebra"}]}`
	require.NoError(t, os.WriteFile(cfg.Graph.DefinitionPath, []byte(next), 0o644))

	require.Eventually(t, func() bool {
		results, err := c.Search.Search("zebra")
		return err == nil && len(results) == 1 && c.Site.Graph().Len() == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.NotEqual(t, before, c.Site.Graph().Len())
}
