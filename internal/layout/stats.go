package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes how far a layout is from its ideal.
type Stats struct {
	Steps         int     `json:"steps"`
	Alpha         float64 `json:"alpha"`
	LinkErrorMean float64 `json:"linkErrorMean"`
	LinkLengthVar float64 `json:"linkLengthVariance"`
	KineticEnergy float64 `json:"kineticEnergy"`
	MinClearance  float64 `json:"minClearance"`
}

// LinkStress returns the mean absolute deviation of link lengths from the
// configured distance, and the variance of the lengths themselves.
func (s *Simulation) LinkStress() (mean, variance float64) {
	if len(s.links) == 0 {
		return 0, 0
	}
	lengths := make([]float64, len(s.links))
	errs := make([]float64, len(s.links))
	for k, l := range s.links {
		lengths[k] = r2.Norm(r2.Sub(s.pos[l.Target], s.pos[l.Source]))
		errs[k] = math.Abs(lengths[k] - s.cfg.LinkDistance)
	}
	_, variance = stat.PopMeanVariance(lengths, nil)
	return stat.Mean(errs, nil), variance
}

// KineticEnergy is the sum of squared speeds.
func (s *Simulation) KineticEnergy() float64 {
	var e float64
	for _, v := range s.vel {
		e += r2.Norm2(v)
	}
	return e
}

// MinClearance is the smallest gap between two node circles; negative means
// an overlap. It is +Inf for fewer than two nodes.
func (s *Simulation) MinClearance() float64 {
	best := math.Inf(1)
	for i := range s.pos {
		for j := i + 1; j < len(s.pos); j++ {
			gap := r2.Norm(r2.Sub(s.pos[i], s.pos[j])) - s.radii[i] - s.radii[j]
			best = math.Min(best, gap)
		}
	}
	return best
}

// Stats collects all diagnostics at once.
func (s *Simulation) Stats() Stats {
	mean, variance := s.LinkStress()
	clearance := s.MinClearance()
	if math.IsInf(clearance, 1) {
		clearance = 0
	}
	return Stats{
		Steps:         s.steps,
		Alpha:         s.alpha,
		LinkErrorMean: mean,
		LinkLengthVar: variance,
		KineticEnergy: s.KineticEnergy(),
		MinClearance:  clearance,
	}
}
