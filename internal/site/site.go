// Package site is the application layer over the navigation graph: it holds
// the current definition, swaps it on reload, and runs headless layouts for
// the REST surface and the CLI.
package site

import (
	"context"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/layout"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/scene"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// Options tunes headless layouts.
type Options struct {
	Layout         layout.Config
	Labels         scene.LabelConfig
	Viewport       viewport.Config
	Measurer       scene.Measurer
	Visual         string
	MaxSettleSteps int
	Seed           int64
	// CacheTTL is how long layouts without saved positions are reused.
	// Zero disables the cache.
	CacheTTL time.Duration
}

// DefaultOptions returns the standard tuning with a fixed seed so headless
// layouts are reproducible.
func DefaultOptions() Options {
	return Options{
		Layout:         layout.DefaultConfig(),
		Labels:         scene.DefaultLabelConfig(),
		Viewport:       viewport.DefaultConfig(),
		Visual:         "sketch",
		MaxSettleSteps: 2000,
		Seed:           1,
		CacheTTL:       10 * time.Minute,
	}
}

// Site owns the current graph.
type Site struct {
	opts    Options
	labeler *scene.Labeler
	logger  *zap.Logger

	mu        sync.RWMutex
	graph     *graph.Graph
	issues    []error
	listeners []func(*graph.Graph)

	cacheMu sync.Mutex
	cache   map[layoutKey]cachedLayout
	now     func() time.Time
}

// maxCachedLayouts bounds the layout cache; past it, the cache is emptied.
const maxCachedLayouts = 64

type layoutKey struct {
	graph *graph.Graph
	size  viewport.Size
}

type cachedLayout struct {
	layout    Layout
	expiresAt time.Time
}

// New wraps g and the configuration issues found while loading it.
func New(g *graph.Graph, issues []error, opts Options, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Measurer == nil {
		opts.Measurer = scene.DefaultMeasurer()
	}
	if opts.MaxSettleSteps <= 0 {
		opts.MaxSettleSteps = DefaultOptions().MaxSettleSteps
	}
	return &Site{
		opts:    opts,
		labeler: scene.NewLabeler(opts.Measurer, opts.Labels),
		logger:  logger,
		graph:   g,
		issues:  issues,
		cache:   make(map[layoutKey]cachedLayout),
		now:     time.Now,
	}
}

// Graph returns the current graph.
func (s *Site) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Issues returns the configuration problems of the current graph.
func (s *Site) Issues() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]error(nil), s.issues...)
}

// Replace installs a reloaded graph and notifies listeners.
func (s *Site) Replace(g *graph.Graph, issues []error) {
	s.mu.Lock()
	s.graph, s.issues = g, issues
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.cacheMu.Lock()
	clear(s.cache)
	s.cacheMu.Unlock()

	for _, fn := range listeners {
		fn(g)
	}
	s.logger.Info("Graph replaced", zap.Int("nodes", g.Len()), zap.Int("listeners", len(listeners)))
}

// OnReplace registers fn to run after every Replace.
func (s *Site) OnReplace(fn func(*graph.Graph)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// NodeDetail is what the side panel shows for a node.
type NodeDetail struct {
	graph.Node
	Section   string       `json:"section"`
	Path      string       `json:"path"`
	Degree    int          `json:"degree"`
	Neighbors []graph.Node `json:"neighbors"`
}

// Node looks up a node and its neighbourhood.
func (s *Site) Node(id string) (NodeDetail, error) {
	g := s.Graph()
	n, err := g.Node(id)
	if err != nil {
		return NodeDetail{}, err
	}
	return NodeDetail{
		Node:      n,
		Section:   n.Size.SectionLabel(),
		Path:      n.Path(),
		Degree:    g.Degree(id),
		Neighbors: g.Neighbors(id),
	}, nil
}

// Placement is one node of a settled layout.
type Placement struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Saved  bool    `json:"saved"`
}

// Layout is the result of a headless settle.
type Layout struct {
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Nodes   []Placement  `json:"nodes"`
	Stats   layout.Stats `json:"stats"`
	Settled bool         `json:"settled"`

	scene scene.Scene
}

// Scene returns the rendered scene of the settled layout.
func (l Layout) Scene() scene.Scene { return l.scene }

// Settle lays the current graph out for size, seeded from saved, and runs
// the simulation until it cools or the step budget runs out. Layouts without
// saved positions are deterministic and cached per graph and geometry; the
// returned Layout must be treated as read-only.
func (s *Site) Settle(ctx context.Context, size viewport.Size, saved map[string]positions.Point) (Layout, error) {
	ctx, span := observability.Tracer().Start(ctx, "site.Settle",
		trace.WithAttributes(
			attribute.Float64("viewport.width", size.Width),
			attribute.Float64("viewport.height", size.Height),
			attribute.Int("positions.saved", len(saved)),
		))
	defer span.End()

	g := s.Graph()
	geo := viewport.Compute(s.opts.Viewport, size)
	key := layoutKey{graph: g, size: viewport.Size{Width: geo.Width, Height: geo.Height}}
	if len(saved) == 0 {
		if l, ok := s.cached(key); ok {
			span.SetAttributes(attribute.Bool("layout.cached", true))
			return l, nil
		}
	}
	renderer := scene.NewRenderer(g, s.labeler)

	nodes := make([]layout.NodeSpec, g.Len())
	for i, n := range g.Nodes() {
		nodes[i] = layout.NodeSpec{ID: n.ID, Radius: renderer.Radius(i)}
	}
	links := make([]layout.LinkSpec, 0, len(g.Edges()))
	for _, e := range g.Edges() {
		links = append(links, layout.LinkSpec{Source: e.Source, Target: e.Target, Strength: e.Strength})
	}

	rng := rand.New(rand.NewSource(s.opts.Seed))
	sim := layout.New(s.opts.Layout, nodes, links, geo.Bounds(), positions.Vecs(saved), rng)

	steps, err := sim.Settle(ctx, s.opts.MaxSettleSteps)
	if err != nil {
		span.RecordError(err)
		return Layout{}, err
	}
	span.SetAttributes(attribute.Int("layout.steps", steps))

	out := Layout{
		Width:   geo.Width,
		Height:  geo.Height,
		Nodes:   make([]Placement, g.Len()),
		Stats:   sim.Stats(),
		Settled: !sim.Active(),
	}
	for i, n := range g.Nodes() {
		p := sim.Position(i)
		_, ok := saved[n.ID]
		out.Nodes[i] = Placement{ID: n.ID, X: p.X, Y: p.Y, Radius: renderer.Radius(i), Saved: ok}
	}
	out.scene = renderer.Render(scene.Frame{
		Width:     geo.Width,
		Height:    geo.Height,
		Transform: interaction.Identity().String(),
		Positions: sim.Positions(),
		Hovered:   -1,
		Dragging:  -1,
	})

	s.logger.Debug("Layout settled",
		zap.Int("steps", steps),
		zap.Float64("linkErrorMean", out.Stats.LinkErrorMean))
	if len(saved) == 0 {
		s.remember(key, out)
	}
	return out, nil
}

func (s *Site) cached(key layoutKey) (Layout, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	c, ok := s.cache[key]
	if !ok || s.now().After(c.expiresAt) {
		return Layout{}, false
	}
	return c.layout, true
}

func (s *Site) remember(key layoutKey, l Layout) {
	if s.opts.CacheTTL <= 0 {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if len(s.cache) >= maxCachedLayouts {
		clear(s.cache)
	}
	s.cache[key] = cachedLayout{layout: l, expiresAt: s.now().Add(s.opts.CacheTTL)}
}

// RenderSVG settles a layout and writes it as a standalone SVG document.
// An empty visual name uses the configured one.
func (s *Site) RenderSVG(ctx context.Context, w io.Writer, size viewport.Size, saved map[string]positions.Point, visual string) error {
	l, err := s.Settle(ctx, size, saved)
	if err != nil {
		return err
	}
	if visual == "" {
		visual = s.opts.Visual
	}
	return scene.WriteSVG(w, l.Scene(), scene.VisualByName(visual))
}
