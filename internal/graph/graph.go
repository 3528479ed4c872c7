package graph

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/simple"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

const (
	// DefaultStrength applies to links that omit a strength.
	DefaultStrength = 0.5
	// DefaultColor applies to nodes that omit a fill color.
	DefaultColor = "#4a5568"
)

// Graph is an immutable, validated navigation graph. Node order is the
// authoring order and is significant: it drives the initial circular layout.
type Graph struct {
	nodes    []Node
	edges    []Edge
	index    map[string]int
	incident [][]int
	topology *simple.UndirectedGraph
}

// Normalize validates a definition. Problems never abort: offending nodes and
// links are dropped or repaired, and each one is logged and returned as a
// CONFIGURATION error so content authors can find them.
func Normalize(def Definition, logger *zap.Logger) (*Graph, []error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var issues []error
	report := func(msg string, fields ...zap.Field) {
		logger.Warn("graph configuration error: "+msg, fields...)
		issues = append(issues, apperrors.NewConfiguration(msg))
	}

	g := &Graph{
		index:    make(map[string]int, len(def.Nodes)),
		topology: simple.NewUndirectedGraph(),
	}

	for _, n := range def.Nodes {
		switch {
		case n.ID == "":
			report(fmt.Sprintf("node %q has no id", n.Title), zap.String("title", n.Title))
			continue
		case g.has(n.ID):
			report(fmt.Sprintf("duplicate node id %q", n.ID), zap.String("nodeID", n.ID))
			continue
		}
		if n.Title == "" {
			n.Title = n.ID
		}
		if n.Color == "" {
			n.Color = DefaultColor
		}
		if n.Size != "" && !n.Size.valid() {
			report(fmt.Sprintf("node %q has unknown size %q", n.ID, n.Size),
				zap.String("nodeID", n.ID), zap.String("size", string(n.Size)))
		}
		g.index[n.ID] = len(g.nodes)
		g.topology.AddNode(simple.Node(len(g.nodes)))
		g.nodes = append(g.nodes, n)
	}
	g.incident = make([][]int, len(g.nodes))

	seen := make(map[[2]int]bool, len(def.Links))
	for _, l := range def.Links {
		src, okSrc := g.index[l.Source]
		tgt, okTgt := g.index[l.Target]
		fields := []zap.Field{zap.String("source", l.Source), zap.String("target", l.Target)}
		switch {
		case !okSrc || !okTgt:
			report(fmt.Sprintf("link %s-%s references a missing node", l.Source, l.Target), fields...)
			continue
		case src == tgt:
			report(fmt.Sprintf("link %s-%s is a self-loop", l.Source, l.Target), fields...)
			continue
		}

		key := [2]int{min(src, tgt), max(src, tgt)}
		if seen[key] {
			report(fmt.Sprintf("duplicate link %s-%s", l.Source, l.Target), fields...)
			continue
		}
		seen[key] = true

		strength := DefaultStrength
		if l.Strength != nil {
			strength = *l.Strength
			switch {
			case math.IsNaN(strength):
				report(fmt.Sprintf("link %s-%s has a NaN strength", l.Source, l.Target), fields...)
				strength = DefaultStrength
			case strength < 0 || strength > 1:
				report(fmt.Sprintf("link %s-%s strength %g outside [0,1]", l.Source, l.Target, strength), fields...)
				strength = math.Max(0, math.Min(1, strength))
			}
		}

		i := len(g.edges)
		g.edges = append(g.edges, Edge{Source: src, Target: tgt, Strength: strength})
		g.incident[src] = append(g.incident[src], i)
		g.incident[tgt] = append(g.incident[tgt], i)
		g.topology.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(tgt)})
	}

	return g, issues
}

func (g *Graph) has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in authoring order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeAt returns the node at index i.
func (g *Graph) NodeAt(i int) Node { return g.nodes[i] }

// Edges returns the validated links.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Index returns the position of id in authoring order.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, error) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, apperrors.NewNotFound(fmt.Sprintf("node %q not found", id))
	}
	return g.nodes[i], nil
}

// Incident returns the indices of edges touching node i.
func (g *Graph) Incident(i int) []int {
	return g.incident[i]
}

// Degree is the number of distinct neighbours of id.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return g.topology.From(int64(i)).Len()
}

// Neighbors returns the nodes directly linked to id, in authoring order.
func (g *Graph) Neighbors(id string) []Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}

	var idx []int
	it := g.topology.From(int64(i))
	for it.Next() {
		idx = append(idx, int(it.Node().ID()))
	}
	sort.Ints(idx)

	out := make([]Node, 0, len(idx))
	for _, j := range idx {
		out = append(out, g.nodes[j])
	}
	return out
}

// Definition renders the validated graph back into its authoring shape.
func (g *Graph) Definition() Definition {
	def := Definition{Nodes: g.Nodes(), Links: make([]Link, 0, len(g.edges))}
	for _, e := range g.edges {
		s := e.Strength
		def.Links = append(def.Links, Link{
			Source:   g.nodes[e.Source].ID,
			Target:   g.nodes[e.Target].ID,
			Strength: &s,
		})
	}
	return def
}
