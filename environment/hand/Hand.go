package hand

import (
	"fmt"
	"math/rand/v2"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hand is an ordered collection of fingers. Finger i is anchored at
// (0, 0, i * SpacingRatio * FingerWidth) so that fingers are parallel
// and never overlap. Fingers share no state.
type Hand struct {
	fingers []*JointChain
}

// NewHand returns a new Hand described by c, whose starting joint
// angles are drawn from src
func NewHand(c Config, src rand.Source) (*Hand, error) {
	if c.Fingers <= 0 {
		return nil, fmt.Errorf("newHand: %w: fingers must be positive "+
			"\n\thave(%v)", environment.ErrInvalidArgument, c.Fingers)
	}

	fingers := make([]*JointChain, c.Fingers)
	for i := range fingers {
		base := r3.Vec{Z: c.LateralOffset(i)}
		finger, err := NewJointChain(base, c.Joints, c.SegmentLength,
			c.Clamp, src)
		if err != nil {
			return nil, fmt.Errorf("newHand: finger %v: %w", i, err)
		}
		fingers[i] = finger
	}

	return &Hand{fingers}, nil
}

// Len returns the number of fingers
func (h *Hand) Len() int {
	return len(h.fingers)
}

// Fingers returns the fingers of the hand in order
func (h *Hand) Fingers() []*JointChain {
	return h.fingers
}

// Move applies actions[i] to finger i. Every action is validated before
// any finger moves, so a failed Move leaves the hand untouched.
func (h *Hand) Move(actions []mat.Vector) error {
	if len(actions) != len(h.fingers) {
		return fmt.Errorf("move: %w: illegal number of finger actions "+
			"\n\twant(%v) \n\thave(%v)", environment.ErrInvalidArgument,
			len(h.fingers), len(actions))
	}
	for i, a := range actions {
		if err := h.fingers[i].validate(a); err != nil {
			return fmt.Errorf("move: finger %v: %w", i, err)
		}
	}

	for i, f := range h.fingers {
		if err := f.Move(actions[i]); err != nil {
			// Unreachable: actions were validated above
			panic(fmt.Sprintf("move: finger %v: %v", i, err))
		}
	}
	return nil
}

// Positions returns the points of every finger, in finger order
func (h *Hand) Positions() [][]r3.Vec {
	positions := make([][]r3.Vec, len(h.fingers))
	for i, f := range h.fingers {
		positions[i] = f.Positions()
	}
	return positions
}

// Effectors returns the tip of every finger, in finger order
func (h *Hand) Effectors() []r3.Vec {
	effectors := make([]r3.Vec, len(h.fingers))
	for i, f := range h.fingers {
		effectors[i] = f.Effector()
	}
	return effectors
}
