package scene

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// NodeVisual draws a node body centered on the origin. Implementations only
// decide appearance; position, hover state and labels are handled by the
// SVG writer.
type NodeVisual interface {
	Name() string
	Draw(buf *bytes.Buffer, n Node)
}

// VisualByName resolves a configured visual style. Unknown names fall back
// to the sketch style.
func VisualByName(name string) NodeVisual {
	switch name {
	case "plain":
		return PlainVisual{}
	default:
		return SketchVisual{Roughness: 1.5, StrokeWidth: 2}
	}
}

// PlainVisual is a filled circle with an outline.
type PlainVisual struct{}

func (PlainVisual) Name() string { return "plain" }

func (PlainVisual) Draw(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `<circle r="%s" fill="%s" fill-opacity="0.85" stroke="%s" stroke-width="2"/>`,
		num(n.Radius), escape(n.Color), escape(n.Color))
}

// SketchVisual imitates a hand-drawn circle: a filled wobbly outline plus a
// second, differently wobbled stroke. The wobble is seeded from the node id
// so a node looks the same on every frame.
type SketchVisual struct {
	Roughness   float64
	StrokeWidth float64
}

func (SketchVisual) Name() string { return "sketch" }

func (v SketchVisual) Draw(buf *bytes.Buffer, n Node) {
	rng := rand.New(rand.NewSource(seedFor(n.ID)))

	fmt.Fprintf(buf, `<path d="%s" fill="%s" stroke="none"/>`,
		v.outline(rng, n.Radius), escape(n.Color))
	for pass := 0; pass < 2; pass++ {
		fmt.Fprintf(buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round"/>`,
			v.outline(rng, n.Radius), escape(n.Color), num(v.StrokeWidth))
	}
}

// outline returns a closed smooth path through jittered points on a circle.
func (v SketchVisual) outline(rng *rand.Rand, r float64) string {
	const segments = 18
	wobble := r * 0.03 * v.Roughness
	start := rng.Float64() * 2 * math.Pi

	xs := make([]float64, segments)
	ys := make([]float64, segments)
	for i := 0; i < segments; i++ {
		a := start + float64(i)/segments*2*math.Pi
		rr := r + (rng.Float64()-0.5)*2*wobble
		xs[i] = rr * math.Cos(a)
		ys[i] = rr * math.Sin(a)
	}

	// quadratic segments through midpoints keep the outline smooth
	mid := func(i int) (float64, float64) {
		j := (i + 1) % segments
		return (xs[i] + xs[j]) / 2, (ys[i] + ys[j]) / 2
	}

	var b bytes.Buffer
	mx, my := mid(0)
	fmt.Fprintf(&b, "M%s,%s", num(mx), num(my))
	for i := 1; i <= segments; i++ {
		k := i % segments
		nx, ny := mid(k)
		fmt.Fprintf(&b, " Q%s,%s %s,%s", num(xs[k]), num(ys[k]), num(nx), num(ny))
	}
	b.WriteString("Z")
	return b.String()
}

func seedFor(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}
