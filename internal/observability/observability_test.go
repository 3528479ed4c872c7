package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantLevel   zapcore.Level
		wantErr     bool
	}{
		{"development default", "development", "", zapcore.DebugLevel, false},
		{"production default", "production", "", zapcore.InfoLevel, false},
		{"override", "production", "warn", zapcore.WarnLevel, false},
		{"bad level", "development", "loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := observability.NewLogger(tt.environment, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
		})
	}
}

func TestCollector_Records(t *testing.T) {
	c := observability.NewCollector("portfolio")

	c.RecordLayoutStep()
	c.RecordLayoutStep()
	c.RecordFrame()
	c.RecordPositionSave()
	c.RecordNavigation("career")
	c.RecordConfigErrors(3)
	c.RecordVisitorFetch("hit")
	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.LayoutSteps))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FramesRendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PositionSaves))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Navigations.WithLabelValues("career")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.ConfigErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.VisitorFetches.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ActiveSessions))

	// independent registries
	other := observability.NewCollector("portfolio")
	assert.Zero(t, testutil.ToFloat64(other.LayoutSteps))
}

func TestMiddleware(t *testing.T) {
	c := observability.NewCollector("portfolio")
	core, logs := observer.New(zap.InfoLevel)

	r := chi.NewRouter()
	r.Use(observability.RequestLogger(zap.New(core)))
	r.Use(observability.MetricsMiddleware(c))
	r.Use(observability.TracingMiddleware("test"))
	r.Get("/graph/nodes/{nodeID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/metrics", c.Handler())

	for _, path := range []string{"/graph/nodes/a", "/graph/nodes/b", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/graph/nodes/{nodeID}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/health", "200")))
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "/graph/nodes/a", logs.All()[0].ContextMap()["path"])
	assert.Equal(t, int64(404), logs.All()[0].ContextMap()["status"])

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_requests_total")
	assert.Contains(t, rec.Body.String(), "portfolio_layout_steps_total")
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := observability.InitTracing(context.Background(), observability.TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, observability.Tracer())
}
