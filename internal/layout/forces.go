package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// force adds its velocity contribution for every node into acc. Positions
// are the snapshot taken at the start of the step and must not be written.
type force func(s *Simulation, pos []r2.Vec, acc []r2.Vec, alpha float64)

// jiggle returns a tiny non-zero offset so coincident nodes have a direction.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) nonZero(d r2.Vec) r2.Vec {
	if d.X == 0 {
		d.X = s.jiggle()
	}
	if d.Y == 0 {
		d.Y = s.jiggle()
	}
	return d
}

// linkForce pulls linked pairs toward the configured separation. Each end
// moves in proportion to the other end's share of the pair's degree, so hubs
// move less than leaves.
func linkForce(s *Simulation, pos []r2.Vec, acc []r2.Vec, alpha float64) {
	for k, l := range s.links {
		d := s.nonZero(r2.Sub(pos[l.Target], pos[l.Source]))
		n := r2.Norm(d)
		d = r2.Scale((n-s.cfg.LinkDistance)/n*alpha*l.Strength*s.cfg.LinkStrengthScale, d)

		b := s.bias[k]
		acc[l.Target] = r2.Sub(acc[l.Target], r2.Scale(b, d))
		acc[l.Source] = r2.Add(acc[l.Source], r2.Scale(1-b, d))
	}
}

// chargeForce is an exact pairwise many-body repulsion, ignored beyond
// ChargeDistanceMax.
func chargeForce(s *Simulation, pos []r2.Vec, acc []r2.Vec, alpha float64) {
	maxSq := s.cfg.ChargeDistanceMax * s.cfg.ChargeDistanceMax
	minSq := s.cfg.ChargeDistanceMin * s.cfg.ChargeDistanceMin
	for i := range pos {
		for j := range pos {
			if i == j {
				continue
			}
			d := s.nonZero(r2.Sub(pos[j], pos[i]))
			l2 := r2.Norm2(d)
			if l2 >= maxSq {
				continue
			}
			if l2 < minSq {
				l2 = math.Sqrt(minSq * l2)
			}
			acc[i] = r2.Add(acc[i], r2.Scale(s.cfg.ChargeStrength*alpha/l2, d))
		}
	}
}

// centerForce nudges the whole layout so its centroid drifts to the center.
// It is not scaled by alpha.
func centerForce(s *Simulation, pos []r2.Vec, acc []r2.Vec, _ float64) {
	if len(pos) == 0 {
		return
	}
	var mean r2.Vec
	for _, p := range pos {
		mean = r2.Add(mean, p)
	}
	mean = r2.Scale(1/float64(len(pos)), mean)

	shift := r2.Scale(s.cfg.CenterStrength, r2.Sub(s.bounds.Center, mean))
	for i := range acc {
		acc[i] = r2.Add(acc[i], shift)
	}
}

// collideForce separates overlapping collision circles (node radius plus
// margin). The smaller node of a pair takes the larger share of the push.
func collideForce(s *Simulation, pos []r2.Vec, acc []r2.Vec, _ float64) {
	for i := range pos {
		ri := s.radii[i] + s.cfg.CollideMargin
		for j := i + 1; j < len(pos); j++ {
			rj := s.radii[j] + s.cfg.CollideMargin
			r := ri + rj

			d := r2.Sub(pos[i], pos[j])
			if r2.Norm2(d) >= r*r {
				continue
			}
			d = s.nonZero(d)
			l := r2.Norm(d)
			d = r2.Scale((r-l)/l*s.cfg.CollideStrength, d)

			w := rj * rj / (ri*ri + rj*rj)
			acc[i] = r2.Add(acc[i], r2.Scale(w, d))
			acc[j] = r2.Sub(acc[j], r2.Scale(1-w, d))
		}
	}
}

// radialForce pulls every node toward the target circle around the center.
func radialForce(s *Simulation, pos []r2.Vec, acc []r2.Vec, alpha float64) {
	for i, p := range pos {
		d := r2.Sub(p, s.bounds.Center)
		if d.X == 0 {
			d.X = 1e-6
		}
		if d.Y == 0 {
			d.Y = 1e-6
		}
		r := r2.Norm(d)
		k := (s.bounds.TargetRadius - r) * s.cfg.RadialStrength * alpha / r
		acc[i] = r2.Add(acc[i], r2.Scale(k, d))
	}
}
