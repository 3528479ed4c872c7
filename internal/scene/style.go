// Package scene turns layout state into a drawable scene: styled edges,
// sized nodes with wrapped labels, and an SVG rendition of both.
package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// EdgeState is how an edge relates to the hovered node, if any.
type EdgeState int

const (
	EdgeNormal EdgeState = iota
	EdgeHighlighted
	EdgeDimmed
)

func (s EdgeState) String() string {
	switch s {
	case EdgeHighlighted:
		return "highlighted"
	case EdgeDimmed:
		return "dimmed"
	default:
		return "normal"
	}
}

// MarshalText lets scenes serialize edge states by name.
func (s EdgeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *EdgeState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*s = EdgeNormal
	case "highlighted":
		*s = EdgeHighlighted
	case "dimmed":
		*s = EdgeDimmed
	default:
		return fmt.Errorf("unknown edge state %q", b)
	}
	return nil
}

// EdgeStyle is the stroke of an edge.
type EdgeStyle struct {
	Opacity float64 `json:"opacity"`
	Width   float64 `json:"width"`
}

var (
	highlightedEdge = EdgeStyle{Opacity: 0.8, Width: 3}
	dimmedEdge      = EdgeStyle{Opacity: 0.1, Width: 1}
)

// StyleFor returns the stroke for an edge. Unhovered edges encode their
// strength in both opacity and width.
func StyleFor(state EdgeState, strength float64) EdgeStyle {
	switch state {
	case EdgeHighlighted:
		return highlightedEdge
	case EdgeDimmed:
		return dimmedEdge
	default:
		return EdgeStyle{Opacity: 0.3 + 0.4*strength, Width: 1.5 + 1.5*strength}
	}
}

// ArcPath draws a clockwise circular arc between two centers whose radius is
// half the straight-line distance, so longer edges bow more.
func ArcPath(src, tgt r2.Vec) string {
	dr := r2.Norm(r2.Sub(tgt, src)) * 0.5

	var b strings.Builder
	b.WriteString("M")
	b.WriteString(num(src.X))
	b.WriteString(",")
	b.WriteString(num(src.Y))
	b.WriteString("A")
	b.WriteString(num(dr))
	b.WriteString(",")
	b.WriteString(num(dr))
	b.WriteString(" 0 0,1 ")
	b.WriteString(num(tgt.X))
	b.WriteString(",")
	b.WriteString(num(tgt.Y))
	return b.String()
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
