// Package visitor fronts the third-party hit counter shown in the corner of
// every page.
package visitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// WelcomeMessage is shown instead of a number when no count is known.
const WelcomeMessage = "Welcome!"

// Tagline accompanies the counter on hover.
const Tagline = "Need for validation plagues everyone, still, better than Instagram!"

// Fetch outcomes reported to the result hook.
const (
	ResultHit         = "hit"
	ResultCached      = "cached"
	ResultStale       = "stale"
	ResultUnavailable = "unavailable"
)

// BreakerConfig tunes the circuit breaker around the counter API.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests" yaml:"min_requests"`
}

// Config locates the counter and bounds how often it is called.
type Config struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Namespace string        `mapstructure:"namespace" yaml:"namespace"`
	Key       string        `mapstructure:"key" yaml:"key"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Breaker   BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

// DefaultConfig points at CountAPI with a five minute cache.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.countapi.xyz",
		Namespace: "gsk-portfolio",
		Key:       "visitor-count",
		CacheTTL:  5 * time.Minute,
		Timeout:   5 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
	}
}

// Count is what the page displays.
type Count struct {
	Value     int64  `json:"value"`
	Available bool   `json:"available"`
	Stale     bool   `json:"stale"`
	Message   string `json:"message,omitempty"`
	Tagline   string `json:"tagline"`
}

type entry struct {
	value int64
	at    time.Time
}

// maxProfiles bounds the cache; past it, expired entries are dropped.
const maxProfiles = 10000

// Counter increments and reads the visitor count, once per profile per
// cache period.
type Counter struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string]entry

	now    func() time.Time
	report func(result string)
}

// Option customizes a Counter.
type Option func(*Counter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) { c.now = now }
}

// WithResultHook is called with the outcome of every Hit.
func WithResultHook(fn func(result string)) Option {
	return func(c *Counter) { c.report = fn }
}

// NewCounter builds a Counter. A nil client gets one with cfg.Timeout.
func NewCounter(cfg Config, client *http.Client, logger *zap.Logger, opts ...Option) *Counter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Counter{
		cfg:    cfg,
		client: client,
		logger: logger,
		cache:  make(map[string]entry),
		now:    time.Now,
		report: func(string) {},
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "visitor-counter",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hit counts a visit from profile and returns the current total. A
// profile seen within the cache period gets the cached total without a new
// hit. When the counter cannot be reached the last known total for the
// profile is returned as stale, or a welcome message if there is none.
func (c *Counter) Hit(ctx context.Context, profile string) Count {
	now := c.now()

	c.mu.Lock()
	cached, ok := c.cache[profile]
	c.mu.Unlock()

	if ok && now.Sub(cached.at) < c.cfg.CacheTTL {
		c.report(ResultCached)
		return Count{Value: cached.value, Available: true, Tagline: Tagline}
	}

	value, err := c.fetch(ctx)
	if err == nil {
		c.remember(profile, entry{value: value, at: now})
		c.report(ResultHit)
		return Count{Value: value, Available: true, Tagline: Tagline}
	}

	c.logger.Warn("Failed to fetch visitor count", zap.Error(err))
	if ok {
		c.report(ResultStale)
		return Count{Value: cached.value, Available: true, Stale: true, Tagline: Tagline}
	}
	c.report(ResultUnavailable)
	return Count{Message: WelcomeMessage, Tagline: Tagline}
}

func (c *Counter) remember(profile string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxProfiles {
		for p, old := range c.cache {
			if e.at.Sub(old.at) >= c.cfg.CacheTTL {
				delete(c.cache, p)
			}
		}
	}
	c.cache[profile] = e
}

func (c *Counter) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/hit/" +
		url.PathEscape(c.cfg.Namespace) + "/" + url.PathEscape(c.cfg.Key)
}

func (c *Counter) fetch(ctx context.Context) (int64, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("counter responded %d", resp.StatusCode)
		}
		var body struct {
			Value *int64 `json:"value"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode counter response: %w", err)
		}
		if body.Value == nil {
			return nil, fmt.Errorf("counter response has no value")
		}
		return *body.Value, nil
	})
	if err != nil {
		return 0, appErrors.NewUnavailable("visitor counter unavailable", err)
	}
	return out.(int64), nil
}

// State reports the breaker state, for readiness checks.
func (c *Counter) State() gobreaker.State {
	return c.breaker.State()
}
