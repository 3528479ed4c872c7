package layout

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// NodeSpec is what the solver needs to know about a node.
type NodeSpec struct {
	ID     string
	Radius float64
}

// LinkSpec joins two nodes by index. Strength is in [0,1].
type LinkSpec struct {
	Source   int
	Target   int
	Strength float64
}

// Bounds is the drawing area the layout gravitates to.
type Bounds struct {
	Center       r2.Vec
	TargetRadius float64
}

// Axis selects a coordinate for per-axis pinning.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

type pin struct {
	x, y       float64
	hasX, hasY bool
}

func (p pin) any() bool { return p.hasX || p.hasY }

// Simulation owns the mutable per-frame state of one layout. It is not safe
// for concurrent use; a single event loop drives it.
type Simulation struct {
	cfg    Config
	ids    []string
	index  map[string]int
	radii  []float64
	links  []LinkSpec
	bias   []float64
	forces []force

	pos  []r2.Vec
	vel  []r2.Vec
	acc  []r2.Vec
	pins []pin

	bounds      Bounds
	alpha       float64
	alphaTarget float64
	steps       int

	rng *rand.Rand
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithForces replaces the default force set. Intended for diagnostics and
// tests that isolate a single force.
func WithForces(names ...string) Option {
	return func(s *Simulation) {
		s.forces = s.forces[:0]
		for _, n := range names {
			if f, ok := forceRegistry[n]; ok {
				s.forces = append(s.forces, f)
			}
		}
	}
}

// Force names accepted by WithForces.
const (
	ForceLink    = "link"
	ForceCharge  = "charge"
	ForceCenter  = "center"
	ForceCollide = "collide"
	ForceRadial  = "radial"
)

var forceRegistry = map[string]force{
	ForceLink:    linkForce,
	ForceCharge:  chargeForce,
	ForceCenter:  centerForce,
	ForceCollide: collideForce,
	ForceRadial:  radialForce,
}

// New builds a simulation and seeds node positions. Saved coordinates are
// used verbatim; nodes without one are placed on the target circle by index
// with a little jitter. Links with out-of-range endpoints are ignored.
func New(cfg Config, nodes []NodeSpec, links []LinkSpec, bounds Bounds, saved map[string]r2.Vec, rng *rand.Rand, opts ...Option) *Simulation {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	s := &Simulation{
		cfg:   cfg,
		ids:   make([]string, len(nodes)),
		index: make(map[string]int, len(nodes)),
		radii: make([]float64, len(nodes)),
		pos:   make([]r2.Vec, len(nodes)),
		vel:   make([]r2.Vec, len(nodes)),
		acc:   make([]r2.Vec, len(nodes)),
		pins:  make([]pin, len(nodes)),
		rng:   rng,
		forces: []force{
			linkForce, chargeForce, centerForce, collideForce, radialForce,
		},
	}
	for i, n := range nodes {
		s.ids[i] = n.ID
		s.index[n.ID] = i
		s.radii[i] = n.Radius
	}

	count := make([]int, len(nodes))
	for _, l := range links {
		if l.Source < 0 || l.Source >= len(nodes) || l.Target < 0 || l.Target >= len(nodes) || l.Source == l.Target {
			continue
		}
		s.links = append(s.links, l)
		count[l.Source]++
		count[l.Target]++
	}
	s.bias = make([]float64, len(s.links))
	for k, l := range s.links {
		s.bias[k] = float64(count[l.Source]) / float64(count[l.Source]+count[l.Target])
	}

	for _, opt := range opts {
		opt(s)
	}

	s.Reset(bounds, saved)
	return s
}

// Reset re-seeds positions for new bounds, discarding velocities and
// restarting the temperature. Pins survive a reset.
func (s *Simulation) Reset(bounds Bounds, saved map[string]r2.Vec) {
	s.bounds = bounds
	s.alpha = s.cfg.AlphaStart

	n := float64(len(s.ids))
	for i, id := range s.ids {
		s.vel[i] = r2.Vec{}
		if p, ok := saved[id]; ok && finite(p) {
			s.pos[i] = p
		} else {
			angle := float64(i)/n*2*math.Pi - math.Pi/2 + (s.rng.Float64()-0.5)*2*s.cfg.SeedAngleJitter
			r := bounds.TargetRadius + (s.rng.Float64()-0.5)*2*s.cfg.SeedRadiusJitter
			s.pos[i] = r2.Add(bounds.Center, r2.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
		}
		s.applyPin(i)
	}
}

// Step advances the simulation by one frame. It reports whether anything
// moved; a cooled simulation is a no-op.
func (s *Simulation) Step() bool {
	if !s.Active() {
		return false
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	for i := range s.acc {
		s.acc[i] = r2.Vec{}
	}
	for _, f := range s.forces {
		f(s, s.pos, s.acc, s.alpha)
	}

	keep := 1 - s.cfg.VelocityDecay
	for i := range s.pos {
		s.vel[i] = r2.Scale(keep, r2.Add(s.vel[i], s.acc[i]))
		s.pos[i] = r2.Add(s.pos[i], s.vel[i])
		s.applyPin(i)
	}
	s.steps++
	return true
}

// Active reports whether the simulation still has energy or is being held
// warm by a non-zero alpha target.
func (s *Simulation) Active() bool {
	return s.alpha >= s.cfg.AlphaMin || s.alphaTarget >= s.cfg.AlphaMin
}

// Settle steps until the simulation cools or maxSteps is reached.
func (s *Simulation) Settle(ctx context.Context, maxSteps int) (int, error) {
	n := 0
	for n < maxSteps && s.Step() {
		n++
		if n%64 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// SetAlphaTarget sets the temperature the simulation relaxes toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Reheat keeps the layout warm while a node is being dragged.
func (s *Simulation) Reheat() { s.alphaTarget = s.cfg.DragAlphaTarget }

// Cool lets the layout settle back to rest.
func (s *Simulation) Cool() { s.alphaTarget = 0 }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the temperature alpha is relaxing toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Steps returns how many steps have been integrated.
func (s *Simulation) Steps() int { return s.steps }

// Pin fixes node i at p on both axes. The position is applied immediately
// and the node's velocity is dropped.
func (s *Simulation) Pin(i int, p r2.Vec) {
	s.pins[i] = pin{x: p.X, y: p.Y, hasX: true, hasY: true}
	s.applyPin(i)
}

// PinAxis fixes a single coordinate of node i.
func (s *Simulation) PinAxis(i int, axis Axis, v float64) {
	switch axis {
	case AxisX:
		s.pins[i].x, s.pins[i].hasX = v, true
	case AxisY:
		s.pins[i].y, s.pins[i].hasY = v, true
	}
	s.applyPin(i)
}

// Unpin returns node i to force-driven movement.
func (s *Simulation) Unpin(i int) { s.pins[i] = pin{} }

// Pinned returns the indices of nodes with at least one pinned axis.
func (s *Simulation) Pinned() []int {
	var out []int
	for i, p := range s.pins {
		if p.any() {
			out = append(out, i)
		}
	}
	return out
}

func (s *Simulation) applyPin(i int) {
	p := s.pins[i]
	if p.hasX {
		s.pos[i].X, s.vel[i].X = p.x, 0
	}
	if p.hasY {
		s.pos[i].Y, s.vel[i].Y = p.y, 0
	}
}

// Len returns the number of nodes.
func (s *Simulation) Len() int { return len(s.ids) }

// Index returns the index of the node with the given id.
func (s *Simulation) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// ID returns the id of node i.
func (s *Simulation) ID(i int) string { return s.ids[i] }

// Position returns the current position of node i.
func (s *Simulation) Position(i int) r2.Vec { return s.pos[i] }

// Velocity returns the current velocity of node i.
func (s *Simulation) Velocity(i int) r2.Vec { return s.vel[i] }

// Positions returns a copy of all positions in node order.
func (s *Simulation) Positions() []r2.Vec {
	out := make([]r2.Vec, len(s.pos))
	copy(out, s.pos)
	return out
}

// Bounds returns the area the layout was last seeded for.
func (s *Simulation) Bounds() Bounds { return s.bounds }

// Links returns the links the solver is using.
func (s *Simulation) Links() []LinkSpec { return s.links }

// Config returns the force tuning.
func (s *Simulation) Config() Config { return s.cfg }

func finite(p r2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
