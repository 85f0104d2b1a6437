package hand

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/spatial/r1"
)

// ClampPolicy determines the legal range of every joint angle
type ClampPolicy string

const (
	// Flexion keeps joints in [0, π/2]: fingers may only curl one way
	Flexion ClampPolicy = "flexion"

	// Bidirectional keeps joints in [-π/2, π/2]
	Bidirectional ClampPolicy = "bidirectional"
)

// Interval returns the closed range joint angles are clamped to
func (c ClampPolicy) Interval() r1.Interval {
	if c == Bidirectional {
		return r1.Interval{Min: -math.Pi / 2, Max: math.Pi / 2}
	}
	return r1.Interval{Min: 0, Max: math.Pi / 2}
}

// TargetMode selects how targets are sampled at the start of an episode
type TargetMode string

const (
	// PolarTargets samples a reach distance and an angle per finger
	PolarTargets TargetMode = "polar"

	// BoxTargets samples x and y uniformly from a fixed rectangle
	BoxTargets TargetMode = "box"
)

// ShapingName selects the per-finger reward shaping function
type ShapingName string

const (
	// SaturatingShaping gives 1 - min(d, 1)
	SaturatingShaping ShapingName = "saturating"

	// NegativeDistanceShaping gives -d
	NegativeDistanceShaping ShapingName = "negative-distance"
)

// Config holds every fixed parameter of a World. Configs are JSON and
// YAML serializable.
type Config struct {
	Fingers       int         `json:"fingers" yaml:"fingers"`
	Joints        int         `json:"joints" yaml:"joints"`
	SegmentLength float64     `json:"segment_length" yaml:"segment_length"`
	FingerWidth   float64     `json:"finger_width" yaml:"finger_width"`
	SpacingRatio  float64     `json:"spacing_ratio" yaml:"spacing_ratio"`
	MaxSteps      int         `json:"max_steps" yaml:"max_steps"`
	Scale         float64     `json:"scale" yaml:"scale"` // Renderer only
	Clamp         ClampPolicy `json:"clamp" yaml:"clamp"`
	Targets       TargetMode  `json:"targets" yaml:"targets"`
	Shaping       ShapingName `json:"shaping" yaml:"shaping"`
}

// DefaultConfig returns the configuration of a single three-jointed
// finger with bidirectional joints reaching for polar targets
func DefaultConfig() Config {
	return Config{
		Fingers:       1,
		Joints:        3,
		SegmentLength: 0.2,
		FingerWidth:   0.05,
		SpacingRatio:  1.5,
		MaxSteps:      500,
		Scale:         15.0,
		Clamp:         Bidirectional,
		Targets:       PolarTargets,
		Shaping:       SaturatingShaping,
	}
}

// Validate returns an error wrapping environment.ErrInvalidArgument if
// any field of the Config is illegal
func (c Config) Validate() error {
	if c.Fingers <= 0 {
		return invalid("fingers", c.Fingers)
	}
	if c.Joints <= 0 {
		return invalid("joints", c.Joints)
	}
	if c.SegmentLength <= 0 {
		return invalid("segment length", c.SegmentLength)
	}
	if c.FingerWidth < 0 {
		return invalid("finger width", c.FingerWidth)
	}
	if c.SpacingRatio < 0 {
		return invalid("spacing ratio", c.SpacingRatio)
	}
	if c.MaxSteps < 0 {
		return invalid("max steps", c.MaxSteps)
	}
	switch c.Clamp {
	case Flexion, Bidirectional:
	default:
		return invalid("clamp policy", c.Clamp)
	}
	switch c.Targets {
	case PolarTargets, BoxTargets:
	default:
		return invalid("target mode", c.Targets)
	}
	if _, err := ShapingFor(c.Shaping); err != nil {
		return err
	}
	return nil
}

// LateralOffset returns the third coordinate of finger i's base
func (c Config) LateralOffset(i int) float64 {
	return float64(i) * c.SpacingRatio * c.FingerWidth
}

// Reach returns the length of a fully extended finger
func (c Config) Reach() float64 {
	return c.SegmentLength * float64(c.Joints)
}

func invalid(field string, value interface{}) error {
	return fmt.Errorf("validate: %w: illegal %v %v",
		environment.ErrInvalidArgument, field, value)
}
