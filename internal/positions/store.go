// Package positions persists user-arranged node coordinates per browser
// profile. Stores are tolerant: missing or damaged data reads as empty.
package positions

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// StorageKey names the single record holding every saved coordinate.
const StorageKey = "nodePositions"

// Point is a saved node coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Vec converts the point for the layout solver.
func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// FromVec converts a solver position into a storable point.
func FromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Vecs converts a loaded map for seeding the layout solver.
func Vecs(m map[string]Point) map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(m))
	for id, p := range m {
		out[id] = p.Vec()
	}
	return out
}

// Store reads and writes the saved-position map. Load never fails; Save
// upserts one entry and persists the whole map before returning.
type Store interface {
	Load() map[string]Point
	Save(id string, p Point) error
}
