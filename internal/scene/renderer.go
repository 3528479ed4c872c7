package scene

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/g-s-k-zoro/gsk-man-page/internal/graph"
)

// Node is one drawn node.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Label    Label   `json:"label"`
	Hovered  bool    `json:"hovered,omitempty"`
	Dragging bool    `json:"dragging,omitempty"`
}

// Edge is one drawn link.
type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Path   string    `json:"path"`
	State  EdgeState `json:"state"`
	Style  EdgeStyle `json:"style"`
}

// Scene is everything needed to draw one frame.
type Scene struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Transform string  `json:"transform"`
	Nodes     []Node  `json:"nodes"`
	Edges     []Edge  `json:"edges"`
}

// Frame is the live state a scene is rendered from. Hovered and Dragging are
// node indices, or -1.
type Frame struct {
	Width     float64
	Height    float64
	Transform string
	Positions []r2.Vec
	Hovered   int
	Dragging  int
}

// Renderer maps frames of one graph to scenes. Labels and radii depend only
// on the graph, so they are resolved once.
type Renderer struct {
	graph  *graph.Graph
	edges  []graph.Edge
	labels []Label
	radii  []float64
}

// NewRenderer resolves every node's label and radius.
func NewRenderer(g *graph.Graph, labeler *Labeler) *Renderer {
	r := &Renderer{
		graph:  g,
		edges:  g.Edges(),
		labels: make([]Label, g.Len()),
		radii:  make([]float64, g.Len()),
	}
	for i, n := range g.Nodes() {
		r.labels[i], r.radii[i] = labeler.Layout(n.Title, n.Size.Radius())
	}
	return r
}

// Radius returns the resolved radius of node i.
func (r *Renderer) Radius(i int) float64 { return r.radii[i] }

// Radii returns all resolved radii in node order.
func (r *Renderer) Radii() []float64 {
	out := make([]float64, len(r.radii))
	copy(out, r.radii)
	return out
}

// Label returns the resolved label of node i.
func (r *Renderer) Label(i int) Label { return r.labels[i] }

// EdgeStates returns the state of every edge given the hovered node index.
// With nothing hovered every edge is normal; otherwise edges incident to the
// hovered node are highlighted and all others dimmed.
func (r *Renderer) EdgeStates(hovered int) []EdgeState {
	out := make([]EdgeState, len(r.edges))
	if hovered < 0 {
		return out
	}
	for k, e := range r.edges {
		if e.Touches(hovered) {
			out[k] = EdgeHighlighted
		} else {
			out[k] = EdgeDimmed
		}
	}
	return out
}

// Render builds the scene for f.
func (r *Renderer) Render(f Frame) Scene {
	s := Scene{
		Width:     f.Width,
		Height:    f.Height,
		Transform: f.Transform,
		Nodes:     make([]Node, r.graph.Len()),
		Edges:     make([]Edge, len(r.edges)),
	}

	states := r.EdgeStates(f.Hovered)
	for k, e := range r.edges {
		src, tgt := r.graph.NodeAt(e.Source), r.graph.NodeAt(e.Target)
		s.Edges[k] = Edge{
			Source: src.ID,
			Target: tgt.ID,
			Path:   ArcPath(f.Positions[e.Source], f.Positions[e.Target]),
			State:  states[k],
			Style:  StyleFor(states[k], e.Strength),
		}
	}

	for i, n := range r.graph.Nodes() {
		p := f.Positions[i]
		s.Nodes[i] = Node{
			ID:       n.ID,
			Title:    n.Title,
			Color:    n.Color,
			X:        p.X,
			Y:        p.Y,
			Radius:   r.radii[i],
			Label:    r.labels[i],
			Hovered:  i == f.Hovered,
			Dragging: i == f.Dragging,
		}
	}
	return s
}
