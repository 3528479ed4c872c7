package visitor_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-s-k-zoro/gsk-man-page/internal/visitor"
)

type counterAPI struct {
	calls  atomic.Int32
	value  atomic.Int64
	failed atomic.Bool
	path   atomic.Value
}

func (c *counterAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.calls.Add(1)
	c.path.Store(r.URL.Path)
	if c.failed.Load() {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	fmt.Fprintf(w, `{"value": %d}`, c.value.Add(1))
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newCounter(t *testing.T, api *counterAPI, results *[]string) (*visitor.Counter, *clock) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := visitor.DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts := []visitor.Option{visitor.WithClock(clk.now)}
	if results != nil {
		opts = append(opts, visitor.WithResultHook(func(r string) { *results = append(*results, r) }))
	}
	return visitor.NewCounter(cfg, srv.Client(), nil, opts...), clk
}

func TestHit_CachesPerProfile(t *testing.T) {
	api := &counterAPI{}
	api.value.Store(1233)
	var results []string
	c, clk := newCounter(t, api, &results)
	ctx := context.Background()

	first := c.Hit(ctx, "alice")
	assert.Equal(t, visitor.Count{Value: 1234, Available: true, Tagline: visitor.Tagline}, first)
	assert.Equal(t, "/hit/gsk-portfolio/visitor-count", api.path.Load())

	clk.advance(4 * time.Minute)
	assert.Equal(t, int64(1234), c.Hit(ctx, "alice").Value)
	assert.Equal(t, int32(1), api.calls.Load())

	assert.Equal(t, int64(1235), c.Hit(ctx, "bob").Value)

	clk.advance(time.Minute)
	assert.Equal(t, int64(1236), c.Hit(ctx, "alice").Value)
	assert.Equal(t, int32(3), api.calls.Load())

	assert.Equal(t, []string{visitor.ResultHit, visitor.ResultCached, visitor.ResultHit, visitor.ResultHit}, results)
}

func TestHit_Fallbacks(t *testing.T) {
	api := &counterAPI{}
	api.value.Store(41)
	var results []string
	c, clk := newCounter(t, api, &results)
	ctx := context.Background()

	require.Equal(t, int64(42), c.Hit(ctx, "alice").Value)
	api.failed.Store(true)
	clk.advance(10 * time.Minute)

	stale := c.Hit(ctx, "alice")
	assert.True(t, stale.Available)
	assert.True(t, stale.Stale)
	assert.Equal(t, int64(42), stale.Value)

	fresh := c.Hit(ctx, "bob")
	assert.False(t, fresh.Available)
	assert.Equal(t, visitor.WelcomeMessage, fresh.Message)
	assert.Zero(t, fresh.Value)

	assert.Equal(t, []string{visitor.ResultHit, visitor.ResultStale, visitor.ResultUnavailable}, results)
}

func TestHit_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing value", `{"count": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			cfg := visitor.DefaultConfig()
			cfg.BaseURL = srv.URL
			got := visitor.NewCounter(cfg, srv.Client(), nil).Hit(context.Background(), "p")
			assert.False(t, got.Available)
		})
	}
}

func TestHit_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	api := &counterAPI{}
	api.failed.Store(true)
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := visitor.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureThreshold = 1
	c := visitor.NewCounter(cfg, srv.Client(), nil)

	for range 4 {
		c.Hit(context.Background(), "p")
	}
	assert.Equal(t, int32(2), api.calls.Load())
	assert.Equal(t, gobreaker.StateOpen, c.State())
}
