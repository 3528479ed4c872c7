// Package layout is a force-directed layout solver. Forces are accumulated
// against the previous step's positions and integrated with semi-implicit
// Euler under a decaying temperature (alpha).
package layout

import (
	"fmt"
	"math"
)

// Config holds every tunable of the force model.
type Config struct {
	LinkDistance      float64 `mapstructure:"link_distance" yaml:"link_distance"`
	LinkStrengthScale float64 `mapstructure:"link_strength_scale" yaml:"link_strength_scale"`

	ChargeStrength    float64 `mapstructure:"charge_strength" yaml:"charge_strength"`
	ChargeDistanceMin float64 `mapstructure:"charge_distance_min" yaml:"charge_distance_min"`
	ChargeDistanceMax float64 `mapstructure:"charge_distance_max" yaml:"charge_distance_max"`

	CenterStrength float64 `mapstructure:"center_strength" yaml:"center_strength"`

	CollideMargin   float64 `mapstructure:"collide_margin" yaml:"collide_margin"`
	CollideStrength float64 `mapstructure:"collide_strength" yaml:"collide_strength"`

	// RadialStrength pulls nodes toward the viewport target circle, whose
	// radius is set by viewport.Config.RadialFactor.
	RadialStrength float64 `mapstructure:"radial_strength" yaml:"radial_strength"`

	VelocityDecay   float64 `mapstructure:"velocity_decay" yaml:"velocity_decay"`
	AlphaStart      float64 `mapstructure:"alpha_start" yaml:"alpha_start"`
	AlphaMin        float64 `mapstructure:"alpha_min" yaml:"alpha_min"`
	AlphaDecay      float64 `mapstructure:"alpha_decay" yaml:"alpha_decay"`
	DragAlphaTarget float64 `mapstructure:"drag_alpha_target" yaml:"drag_alpha_target"`

	// Initial placement jitter: radius in units, angle in radians (each ±).
	SeedRadiusJitter float64 `mapstructure:"seed_radius_jitter" yaml:"seed_radius_jitter"`
	SeedAngleJitter  float64 `mapstructure:"seed_angle_jitter" yaml:"seed_angle_jitter"`
}

// DefaultConfig returns the tuning used by the portfolio navigation graph.
func DefaultConfig() Config {
	return Config{
		LinkDistance:      220,
		LinkStrengthScale: 0.4,
		ChargeStrength:    -800,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: 500,
		CenterStrength:    0.05,
		CollideMargin:     35,
		CollideStrength:   0.9,
		RadialStrength:    0.08,
		VelocityDecay:     0.4,
		AlphaStart:        0.5,
		AlphaMin:          0.001,
		AlphaDecay:        1 - math.Pow(0.001, 1.0/300),
		DragAlphaTarget:   0.3,
		SeedRadiusJitter:  30,
		SeedAngleJitter:   0.075,
	}
}

// Validate rejects settings that make the integrator diverge or stall.
func (c Config) Validate() error {
	switch {
	case c.LinkDistance <= 0:
		return fmt.Errorf("link distance must be positive, got %g", c.LinkDistance)
	case c.ChargeDistanceMax <= c.ChargeDistanceMin:
		return fmt.Errorf("charge max distance %g must exceed min distance %g", c.ChargeDistanceMax, c.ChargeDistanceMin)
	case c.VelocityDecay <= 0 || c.VelocityDecay >= 1:
		return fmt.Errorf("velocity decay must be in (0,1), got %g", c.VelocityDecay)
	case c.AlphaDecay <= 0 || c.AlphaDecay >= 1:
		return fmt.Errorf("alpha decay must be in (0,1), got %g", c.AlphaDecay)
	case c.AlphaMin <= 0:
		return fmt.Errorf("alpha min must be positive, got %g", c.AlphaMin)
	}
	return nil
}
