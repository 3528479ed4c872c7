// Package view mounts one live graph: it owns the layout solver, the
// pointer controller, the renderer and the viewport for a single session,
// and runs them from one event loop.
package view

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/layout"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/scene"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
)

// Recorder receives usage counters. observability.Collector satisfies it.
type Recorder interface {
	RecordLayoutStep()
	RecordFrame()
	RecordNavigation(nodeID string)
	RecordPositionSave()
}

type nopRecorder struct{}

func (nopRecorder) RecordLayoutStep()       {}
func (nopRecorder) RecordFrame()            {}
func (nopRecorder) RecordNavigation(string) {}
func (nopRecorder) RecordPositionSave()     {}

// Options configures a GraphView. Zero values fall back to defaults.
type Options struct {
	Layout        layout.Config
	Interaction   interaction.Config
	Viewport      viewport.Config
	Labels        scene.LabelConfig
	Measurer      scene.Measurer
	FrameInterval time.Duration
	Rand          *rand.Rand
	Recorder      Recorder
	Logger        *zap.Logger
}

// DefaultOptions returns the standard tuning at 60 frames per second.
func DefaultOptions() Options {
	return Options{
		Layout:        layout.DefaultConfig(),
		Interaction:   interaction.DefaultConfig(),
		Viewport:      viewport.DefaultConfig(),
		Labels:        scene.DefaultLabelConfig(),
		FrameInterval: time.Second / 60,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Layout == (layout.Config{}) {
		o.Layout = d.Layout
	}
	if o.Interaction == (interaction.Config{}) {
		o.Interaction = d.Interaction
	}
	if o.Viewport == (viewport.Config{}) {
		o.Viewport = d.Viewport
	}
	if o.Labels == (scene.LabelConfig{}) {
		o.Labels = d.Labels
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.Measurer == nil {
		o.Measurer = scene.DefaultMeasurer()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// GraphView is one mounted graph. Apart from the viewport's resize timer,
// which only hands geometry over a channel, every method must be called
// from the same goroutine.
type GraphView struct {
	opts   Options
	logger *zap.Logger

	graph    *graph.Graph
	store    *recordingStore
	sim      *layout.Simulation
	renderer *scene.Renderer
	ctrl     *interaction.Controller

	viewport    *viewport.Manager
	geometry    viewport.Geometry
	pending     chan viewport.Geometry
	unsubscribe func()

	outbox []Output
	dirty  bool
	closed bool
}

// New mounts g at the given container size. The store is read exactly once,
// here; later re-seeds use what was read plus what this view has saved.
func New(g *graph.Graph, store positions.Store, size viewport.Size, opts Options) *GraphView {
	opts = opts.withDefaults()

	v := &GraphView{
		opts:     opts,
		logger:   opts.Logger,
		store:    newRecordingStore(store, opts.Recorder),
		viewport: viewport.NewManager(opts.Viewport, size, opts.Logger),
		pending:  make(chan viewport.Geometry, 1),
	}
	v.geometry = v.viewport.Geometry()
	v.unsubscribe = v.viewport.Subscribe(v.offerGeometry)
	v.mount(g)

	v.logger.Debug("Graph view mounted",
		zap.Int("nodes", g.Len()),
		zap.Float64("width", v.geometry.Width),
		zap.Float64("height", v.geometry.Height))
	return v
}

// mount builds the per-graph machinery, keeping pan/zoom across reloads.
func (v *GraphView) mount(g *graph.Graph) {
	transform := interaction.Identity()
	if v.ctrl != nil {
		transform = v.ctrl.Transform()
	}

	v.graph = g
	v.renderer = scene.NewRenderer(g, scene.NewLabeler(v.opts.Measurer, v.opts.Labels))

	nodes := make([]layout.NodeSpec, g.Len())
	for i, n := range g.Nodes() {
		nodes[i] = layout.NodeSpec{ID: n.ID, Radius: v.renderer.Radius(i)}
	}
	links := make([]layout.LinkSpec, 0, len(g.Edges()))
	for _, e := range g.Edges() {
		links = append(links, layout.LinkSpec{Source: e.Source, Target: e.Target, Strength: e.Strength})
	}

	v.sim = layout.New(v.opts.Layout, nodes, links, v.geometry.Bounds(), v.store.seeds(), v.opts.Rand)
	v.ctrl = interaction.NewController(v.opts.Interaction, g, v.renderer.Radii(), v.sim, v.store, v, v.logger)
	v.ctrl.SetTransform(transform)
	v.dirty = true
}

// offerGeometry runs on the viewport's timer goroutine. It keeps only the
// latest geometry for the event loop to pick up.
func (v *GraphView) offerGeometry(g viewport.Geometry) {
	for {
		select {
		case v.pending <- g:
			return
		default:
		}
		select {
		case <-v.pending:
		default:
		}
	}
}

// OnNodeHover implements interaction.Host.
func (v *GraphView) OnNodeHover(n *graph.Node) {
	v.outbox = append(v.outbox, Output{Type: OutputHover, Node: n})
}

// OnNodeClick implements interaction.Host.
func (v *GraphView) OnNodeClick(n graph.Node) {
	v.opts.Recorder.RecordNavigation(n.ID)
	v.outbox = append(v.outbox, Output{Type: OutputNavigate, Node: &n, Path: n.Path()})
}

// HandlePointer feeds one pointer event to the controller.
func (v *GraphView) HandlePointer(ev interaction.PointerEvent) {
	if v.closed {
		return
	}
	v.ctrl.Handle(ev)
	v.dirty = true
}

// Resize reports a new container size. It takes effect once the viewport's
// debounce settles and the next frame runs.
func (v *GraphView) Resize(s viewport.Size) {
	if v.closed {
		return
	}
	v.viewport.Resize(s)
}

// ApplyGeometry re-seeds the layout for new dimensions, preferring saved
// coordinates and discarding velocities.
func (v *GraphView) ApplyGeometry(g viewport.Geometry) {
	if v.closed {
		return
	}
	v.geometry = g
	v.sim.Reset(g.Bounds(), v.store.seeds())
	v.dirty = true
}

// Reload swaps in a new graph definition and re-seeds from saved positions.
func (v *GraphView) Reload(g *graph.Graph) {
	if v.closed {
		return
	}
	v.mount(g)
	v.outbox = append(v.outbox, Output{Type: OutputReloaded})
}

// Tick advances one frame. It returns the scene to draw and whether it
// changed since the last frame. Ticks after Close do nothing.
func (v *GraphView) Tick() (scene.Scene, bool) {
	if v.closed {
		return scene.Scene{}, false
	}

	select {
	case g := <-v.pending:
		v.ApplyGeometry(g)
	default:
	}

	if v.sim.Step() {
		v.opts.Recorder.RecordLayoutStep()
		v.dirty = true
	}
	if !v.dirty {
		return scene.Scene{}, false
	}
	v.dirty = false
	v.opts.Recorder.RecordFrame()
	return v.Scene(), true
}

// Scene renders the current state without advancing the simulation.
func (v *GraphView) Scene() scene.Scene {
	return v.renderer.Render(scene.Frame{
		Width:     v.geometry.Width,
		Height:    v.geometry.Height,
		Transform: v.ctrl.Transform().String(),
		Positions: v.sim.Positions(),
		Hovered:   v.ctrl.Hovered(),
		Dragging:  v.ctrl.Dragging(),
	})
}

// Drain returns and clears the host events raised since the last call.
func (v *GraphView) Drain() []Output {
	out := v.outbox
	v.outbox = nil
	return out
}

// Close tears the view down: the viewport stops, listeners are removed and
// every later call becomes a no-op.
func (v *GraphView) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.unsubscribe()
	v.viewport.Close()
	v.logger.Debug("Graph view closed")
}

// Closed reports whether Close has been called.
func (v *GraphView) Closed() bool { return v.closed }

// Graph returns the mounted graph.
func (v *GraphView) Graph() *graph.Graph { return v.graph }

// Simulation exposes the layout solver.
func (v *GraphView) Simulation() *layout.Simulation { return v.sim }

// Controller exposes the pointer controller.
func (v *GraphView) Controller() *interaction.Controller { return v.ctrl }

// Geometry returns the geometry the layout was last seeded for.
func (v *GraphView) Geometry() viewport.Geometry { return v.geometry }

// Viewport exposes the resize manager.
func (v *GraphView) Viewport() *viewport.Manager { return v.viewport }

// recordingStore counts saves and remembers them so re-seeding never needs
// to read the backing store again.
type recordingStore struct {
	positions.Store
	rec   Recorder
	saved map[string]positions.Point
}

func newRecordingStore(s positions.Store, rec Recorder) *recordingStore {
	return &recordingStore{Store: s, rec: rec, saved: s.Load()}
}

func (s *recordingStore) Save(id string, p positions.Point) error {
	if err := s.Store.Save(id, p); err != nil {
		return err
	}
	s.saved[id] = p
	s.rec.RecordPositionSave()
	return nil
}

func (s *recordingStore) seeds() map[string]r2.Vec {
	return positions.Vecs(s.saved)
}
