package interaction

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
)

// Physics is the part of the layout solver the controller drives.
type Physics interface {
	Position(i int) r2.Vec
	Pin(i int, p r2.Vec)
	Unpin(i int)
	Reheat()
	Cool()
}

// maxWheelDoublings caps the zoom of a single wheel event at 2^10 either way.
const maxWheelDoublings = 10

// Config tunes gesture recognition.
type Config struct {
	// DragThreshold is how far, in screen pixels, the pointer must travel
	// after pressing a node before the press becomes a drag.
	DragThreshold    float64 `mapstructure:"drag_threshold" yaml:"drag_threshold"`
	MinScale         float64 `mapstructure:"min_scale" yaml:"min_scale"`
	MaxScale         float64 `mapstructure:"max_scale" yaml:"max_scale"`
	WheelSensitivity float64 `mapstructure:"wheel_sensitivity" yaml:"wheel_sensitivity"`
}

// DefaultConfig returns the standard gesture tuning.
func DefaultConfig() Config {
	return Config{
		DragThreshold:    3,
		MinScale:         0.5,
		MaxScale:         2,
		WheelSensitivity: 0.002,
	}
}

// Controller is the pointer state machine for one mounted graph. It is
// driven from a single event loop and is not safe for concurrent use.
type Controller struct {
	cfg     Config
	graph   *graph.Graph
	radii   []float64
	physics Physics
	store   positions.Store
	host    Host
	logger  *zap.Logger

	transform Transform
	hovered   int

	pressed  int
	dragging bool
	panning  bool
	downAt   r2.Vec
	last     r2.Vec
	grab     r2.Vec
}

// NewController wires a controller. radii must be in graph node order.
func NewController(cfg Config, g *graph.Graph, radii []float64, physics Physics, store positions.Store, host Host, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:       cfg,
		graph:     g,
		radii:     radii,
		physics:   physics,
		store:     store,
		host:      host,
		logger:    logger,
		transform: Identity(),
		hovered:   -1,
		pressed:   -1,
	}
}

// Handle applies one pointer event.
func (c *Controller) Handle(ev PointerEvent) {
	p := r2.Vec{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case PointerDown:
		c.down(p)
	case PointerMove:
		c.move(p)
	case PointerUp:
		c.up(p)
	case PointerLeave:
		c.leave()
	case PointerWheel:
		steps := math.Max(-maxWheelDoublings, math.Min(maxWheelDoublings, -ev.DeltaY*c.cfg.WheelSensitivity))
		c.ZoomBy(math.Pow(2, steps), p)
	}
}

func (c *Controller) down(p r2.Vec) {
	c.pressed = c.HitTest(p)
	c.dragging = false
	c.panning = c.pressed < 0
	c.downAt, c.last = p, p
}

func (c *Controller) move(p r2.Vec) {
	defer func() { c.last = p }()

	switch {
	case c.pressed >= 0:
		if !c.dragging {
			if r2.Norm(r2.Sub(p, c.downAt)) <= c.cfg.DragThreshold {
				return
			}
			c.dragging = true
			c.grab = r2.Sub(c.physics.Position(c.pressed), c.transform.Invert(c.downAt))
			c.physics.Reheat()
			c.logger.Debug("Drag started", zap.String("nodeID", c.graph.NodeAt(c.pressed).ID))
		}
		c.physics.Pin(c.pressed, r2.Add(c.transform.Invert(p), c.grab))

	case c.panning:
		c.transform = c.transform.Translate(r2.Sub(p, c.last))

	default:
		c.setHover(c.HitTest(p))
	}
}

func (c *Controller) up(p r2.Vec) {
	i := c.pressed
	switch {
	case i >= 0 && c.dragging:
		c.endDrag(i)
	case i >= 0:
		c.host.OnNodeClick(c.graph.NodeAt(i))
	}

	c.pressed, c.dragging, c.panning = -1, false, false
	c.setHover(c.HitTest(p))
}

func (c *Controller) leave() {
	if c.pressed >= 0 && c.dragging {
		c.endDrag(c.pressed)
	}
	c.pressed, c.dragging, c.panning = -1, false, false
	c.setHover(-1)
}

// endDrag releases node i back to the solver and persists where it was left.
func (c *Controller) endDrag(i int) {
	pos := c.physics.Position(i)
	c.physics.Unpin(i)
	c.physics.Cool()

	id := c.graph.NodeAt(i).ID
	if err := c.store.Save(id, positions.FromVec(pos)); err != nil {
		c.logger.Warn("Failed to persist node position", zap.String("nodeID", id), zap.Error(err))
		return
	}
	c.logger.Debug("Drag ended", zap.String("nodeID", id), zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
}

func (c *Controller) setHover(i int) {
	if i == c.hovered {
		return
	}
	if c.hovered >= 0 {
		c.host.OnNodeHover(nil)
	}
	c.hovered = i
	if i >= 0 {
		n := c.graph.NodeAt(i)
		c.host.OnNodeHover(&n)
	}
}

// ZoomBy multiplies the scale by factor about a screen anchor, clamped to
// the configured range.
func (c *Controller) ZoomBy(factor float64, anchor r2.Vec) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	k := math.Max(c.cfg.MinScale, math.Min(c.cfg.MaxScale, c.transform.K*factor))
	c.transform = c.transform.ScaleAt(k, anchor)
}

// HitTest returns the topmost node under a screen point, or -1.
func (c *Controller) HitTest(p r2.Vec) int {
	w := c.transform.Invert(p)
	for i := len(c.radii) - 1; i >= 0; i-- {
		if r2.Norm(r2.Sub(w, c.physics.Position(i))) <= c.radii[i] {
			return i
		}
	}
	return -1
}

// Transform returns the current pan/zoom.
func (c *Controller) Transform() Transform { return c.transform }

// SetTransform replaces the pan/zoom, clamping the scale.
func (c *Controller) SetTransform(t Transform) {
	t.K = math.Max(c.cfg.MinScale, math.Min(c.cfg.MaxScale, t.K))
	c.transform = t
}

// Hovered returns the hovered node index, or -1.
func (c *Controller) Hovered() int { return c.hovered }

// Dragging returns the index of the node being dragged, or -1.
func (c *Controller) Dragging() int {
	if c.dragging {
		return c.pressed
	}
	return -1
}

// State returns the interaction state of node i.
func (c *Controller) State(i int) NodeState {
	switch {
	case c.dragging && c.pressed == i:
		return StateDragging
	case c.hovered == i:
		return StateHovered
	default:
		return StateIdle
	}
}
