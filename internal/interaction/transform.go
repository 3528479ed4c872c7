// Package interaction turns raw pointer input into graph gestures: hover,
// click-to-navigate, node drag, and pan/zoom of the whole scene.
package interaction

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform with no pan and unit scale.
func Identity() Transform { return Transform{K: 1} }

// Apply maps a world point to the screen.
func (t Transform) Apply(w r2.Vec) r2.Vec {
	return r2.Vec{X: w.X*t.K + t.X, Y: w.Y*t.K + t.Y}
}

// Invert maps a screen point into the world.
func (t Transform) Invert(s r2.Vec) r2.Vec {
	return r2.Vec{X: (s.X - t.X) / t.K, Y: (s.Y - t.Y) / t.K}
}

// Translate pans by a screen-space delta.
func (t Transform) Translate(d r2.Vec) Transform {
	t.X += d.X
	t.Y += d.Y
	return t
}

// ScaleAt rescales to k while keeping the world point under anchor fixed.
func (t Transform) ScaleAt(k float64, anchor r2.Vec) Transform {
	w := t.Invert(anchor)
	return Transform{X: anchor.X - w.X*k, Y: anchor.Y - w.Y*k, K: k}
}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return "translate(" + f(t.X) + "," + f(t.Y) + ") scale(" + f(t.K) + ")"
}

func f(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
