// Package viewport tracks the drawing area's size and derives the layout
// center and target radius from it.
package viewport

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/g-s-k-zoro/gsk-man-page/internal/layout"
)

// Size is a container's measured width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry is everything derived from a size.
type Geometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Center       r2.Vec  `json:"center"`
	TargetRadius float64 `json:"targetRadius"`
}

// Bounds converts the geometry for the layout solver.
func (g Geometry) Bounds() layout.Bounds {
	return layout.Bounds{Center: g.Center, TargetRadius: g.TargetRadius}
}

// Config tunes resize handling.
type Config struct {
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
	MinWidth     float64       `mapstructure:"min_width" yaml:"min_width"`
	MinHeight    float64       `mapstructure:"min_height" yaml:"min_height"`
	RadialFactor float64       `mapstructure:"radial_factor" yaml:"radial_factor"`
}

// DefaultConfig returns the standard resize handling.
func DefaultConfig() Config {
	return Config{
		Debounce:     100 * time.Millisecond,
		MinWidth:     320,
		MinHeight:    240,
		RadialFactor: 0.38,
	}
}

// Compute derives geometry from a size. Sizes below the minimum, including
// zero-area and non-finite ones, are raised to the minimum.
func Compute(cfg Config, s Size) Geometry {
	w, h := guard(s.Width, cfg.MinWidth), guard(s.Height, cfg.MinHeight)
	return Geometry{
		Width:        w,
		Height:       h,
		Center:       r2.Vec{X: w / 2, Y: h / 2},
		TargetRadius: cfg.RadialFactor * math.Min(w, h),
	}
}

func guard(v, minimum float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < minimum {
		return minimum
	}
	return v
}

// Manager debounces container resizes and notifies subscribers once the
// size settles. Listeners run on the manager's timer goroutine and must not
// block.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	current   Geometry
	pending   *Size
	timer     *time.Timer
	listeners map[int]func(Geometry)
	nextID    int
	closed    bool
}

// NewManager starts with the geometry of initial.
func NewManager(cfg Config, initial Size, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:       cfg,
		logger:    logger,
		current:   Compute(cfg, initial),
		listeners: make(map[int]func(Geometry)),
	}
}

// Geometry returns the current geometry.
func (m *Manager) Geometry() Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Resize records a new container size. Bursts of resizes collapse into a
// single notification after the debounce interval.
func (m *Manager) Resize(s Size) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.pending = &s
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.cfg.Debounce, m.Flush)
}

// Flush applies a pending resize immediately.
func (m *Manager) Flush() {
	m.mu.Lock()
	if m.closed || m.pending == nil {
		m.mu.Unlock()
		return
	}
	next := Compute(m.cfg, *m.pending)
	m.pending = nil
	if next == m.current {
		m.mu.Unlock()
		return
	}
	m.current = next

	listeners := make([]func(Geometry), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	m.logger.Debug("Viewport resized",
		zap.Float64("width", next.Width),
		zap.Float64("height", next.Height),
		zap.Float64("targetRadius", next.TargetRadius))
	for _, fn := range listeners {
		fn(next)
	}
}

// Subscribe registers fn for geometry changes and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (m *Manager) Subscribe(fn func(Geometry)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return func() {}
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Listeners returns how many subscribers are registered.
func (m *Manager) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// Close cancels any pending resize and drops every listener.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.closed = true
	m.pending = nil
	m.listeners = make(map[int]func(Geometry))
}
