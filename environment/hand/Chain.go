// Package hand implements the Hand environment. In this environment,
// an agent controls a hand of fingers, each a planar chain of
// equal-length segments, and must bring every fingertip (effector) to
// a target point that is resampled every episode.
//
// Fingers are modelled geometrically: there are no forces, collisions
// or joint limits other than clamping angles into a fixed range. Each
// finger lives in its own plane, offset from the others along the third
// coordinate so that fingers never overlap.
package hand

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/samuelfneumann/handreach/environment"
	"github.com/samuelfneumann/handreach/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// StepGain scales actions into angular deltas
	StepGain float64 = 0.01

	// Joint angles are sampled uniformly from [0, MaxStartAngle] when a
	// finger is created
	MaxStartAngle float64 = math.Pi / 4
)

// JointChain implements a single finger: a planar chain of joints
// connected by segments of a fixed length.
//
// Every joint angle is an absolute angle measured in the finger's plane
// from the positive x-axis. Angles are not relative to the previous
// segment, so the direction of segment i depends only on angle i:
//
//	p₀ = base
//	pᵢ = pᵢ₋₁ + l·(cos θᵢ, sin θᵢ)
//
// A JointChain with n joints therefore has n+1 points, the last of which
// is the effector.
type JointChain struct {
	base          r3.Vec
	segmentLength float64
	angles        *mat.VecDense
	bounds        r1.Interval
}

// NewJointChain returns a new finger with joints joints attached at
// base. The starting angles are drawn from src.
func NewJointChain(base r3.Vec, joints int, segmentLength float64,
	clamp ClampPolicy, src rand.Source) (*JointChain, error) {
	if joints <= 0 {
		return nil, fmt.Errorf("newJointChain: %w: joints must be positive "+
			"\n\thave(%v)", environment.ErrInvalidArgument, joints)
	}
	if segmentLength <= 0 {
		return nil, fmt.Errorf("newJointChain: %w: segment length must be "+
			"positive \n\thave(%v)", environment.ErrInvalidArgument,
			segmentLength)
	}

	bounds := make([]r1.Interval, joints)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: 0, Max: MaxStartAngle}
	}
	var starter environment.Starter = environment.NewUniformStarter(bounds, src)

	return &JointChain{
		base:          base,
		segmentLength: segmentLength,
		angles:        starter.Start(),
		bounds:        clamp.Interval(),
	}, nil
}

// Joints returns the number of joints in the chain
func (c *JointChain) Joints() int {
	return c.angles.Len()
}

// Base returns the anchor point of the chain
func (c *JointChain) Base() r3.Vec {
	return c.base
}

// Bounds returns the range that joint angles are clamped to
func (c *JointChain) Bounds() r1.Interval {
	return c.bounds
}

// Angles returns a copy of the current joint angles
func (c *JointChain) Angles() []float64 {
	angles := make([]float64, c.angles.Len())
	copy(angles, c.angles.RawVector().Data)
	return angles
}

// SetAngles overwrites the joint angles. Every angle must lie within
// the chain's clamp range.
func (c *JointChain) SetAngles(angles []float64) error {
	if len(angles) != c.Joints() {
		return fmt.Errorf("setAngles: %w: illegal number of angles "+
			"\n\twant(%v) \n\thave(%v)", environment.ErrInvalidArgument,
			c.Joints(), len(angles))
	}
	for i, angle := range angles {
		if !floatutils.InInterval(angle, c.bounds) {
			return fmt.Errorf("setAngles: %w: angle %v = %v outside [%v, %v]",
				environment.ErrInvalidArgument, i, angle, c.bounds.Min,
				c.bounds.Max)
		}
	}
	for i, angle := range angles {
		c.angles.SetVec(i, angle)
	}
	return nil
}

// Move applies an action to the chain. Each joint is rotated by
// delta[i] * StepGain and then clamped back into the chain's range.
// Infinite components saturate the joint at a bound; NaN components
// are rejected and leave the chain unchanged.
func (c *JointChain) Move(delta mat.Vector) error {
	if err := c.validate(delta); err != nil {
		return fmt.Errorf("move: %w", err)
	}

	c.angles.AddScaledVec(c.angles, StepGain, delta)
	floatutils.ClipSliceInterval(c.angles.RawVector().Data, c.bounds)
	return nil
}

// validate returns an error if delta cannot be applied to the chain
func (c *JointChain) validate(delta mat.Vector) error {
	if delta.Len() != c.Joints() {
		return fmt.Errorf("%w: illegal action length \n\twant(%v) "+
			"\n\thave(%v)", environment.ErrInvalidArgument, c.Joints(),
			delta.Len())
	}
	for i := 0; i < delta.Len(); i++ {
		if math.IsNaN(delta.AtVec(i)) {
			return fmt.Errorf("%w: action component %v is NaN",
				environment.ErrInvalidArgument, i)
		}
	}
	return nil
}

// Positions returns the points of the chain, from the base to the
// effector. Positions is a pure function of the joint angles.
func (c *JointChain) Positions() []r3.Vec {
	positions := make([]r3.Vec, c.Joints()+1)
	positions[0] = c.base

	for i := 0; i < c.Joints(); i++ {
		theta := c.angles.AtVec(i)
		segment := r3.Scale(c.segmentLength, r3.Vec{
			X: math.Cos(theta),
			Y: math.Sin(theta),
		})
		positions[i+1] = r3.Add(positions[i], segment)
	}

	return positions
}

// Effector returns the tip of the chain
func (c *JointChain) Effector() r3.Vec {
	positions := c.Positions()
	return positions[len(positions)-1]
}
