package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
)

// maxWindows bounds the limiter; past it, idle windows are pruned.
const maxWindows = 10000

// SlidingWindowLimiter allows at most limit requests per key in any window.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	now        func() time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit. When it is not, it also returns how long until a slot frees up.
func (l *SlidingWindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= maxWindows {
		l.prune(now)
	}

	requests := l.live(l.windows[key], now)
	if len(requests) >= l.limit {
		l.windows[key] = requests
		return false, requests[0].Add(l.windowSize).Sub(now)
	}
	l.windows[key] = append(requests, now)
	return true, 0
}

// live drops requests that have left the window. requests is sorted.
func (l *SlidingWindowLimiter) live(requests []time.Time, now time.Time) []time.Time {
	start := now.Add(-l.windowSize)
	i := 0
	for i < len(requests) && !requests[i].After(start) {
		i++
	}
	return requests[i:]
}

func (l *SlidingWindowLimiter) prune(now time.Time) {
	for key, requests := range l.windows {
		if len(l.live(requests, now)) == 0 {
			delete(l.windows, key)
		}
	}
}

// RateLimit rejects requests beyond the limiter's budget per client IP with
// 429 and a Retry-After header. It expects chi's RealIP to have run.
func RateLimit(l *SlidingWindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Allow("ip:" + clientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				api.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
