// Package random implements agents which act without learning
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/samuelfneumann/handreach/environment"
	"github.com/samuelfneumann/handreach/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Hold is a random agent that repeats each action for a fixed number
// of steps before sampling the next one uniformly from the action
// space. If an initial action is given, it is held for the first
// period of every episode instead of a sampled one.
//
// Hold does not learn: its Learner methods only check their inputs.
type Hold struct {
	rng        *distmv.Uniform
	actionDims int
	hold       int

	initial *mat.VecDense
	current *mat.VecDense
	held    int

	eval bool
}

// NewHold returns a new Hold agent acting in an environment with
// action specification spec. Each action is held for hold steps.
// initial may be nil.
func NewHold(spec environment.Spec, hold int, initial *mat.VecDense,
	seed uint64) (*Hold, error) {
	if hold <= 0 {
		return nil, fmt.Errorf("newHold: %w: hold must be positive, have %v",
			environment.ErrInvalidArgument, hold)
	}
	if spec.Type != environment.Action {
		return nil, fmt.Errorf("newHold: %w: cannot act with a %v spec",
			environment.ErrInvalidArgument, spec.Type)
	}

	dims := spec.Shape.Len()
	if initial != nil {
		if initial.Len() != dims {
			return nil, fmt.Errorf("newHold: %w: illegal initial action "+
				"length \n\twant(%v) \n\thave(%v)",
				environment.ErrInvalidArgument, dims, initial.Len())
		}
		if !spec.Contains(initial) {
			return nil, fmt.Errorf("newHold: %w: initial action outside "+
				"action bounds", environment.ErrInvalidArgument)
		}
		initial = mat.VecDenseCopyOf(initial)
	}

	bounds := make([]r1.Interval, dims)
	for i := range bounds {
		bounds[i] = r1.Interval{
			Min: spec.LowerBound.AtVec(i),
			Max: spec.UpperBound.AtVec(i),
		}
	}

	return &Hold{
		rng:        distmv.NewUniform(bounds, Source(seed)),
		actionDims: dims,
		hold:       hold,
		initial:    initial,
	}, nil
}

// Source returns the random source a Hold agent seeded with seed draws
// from. Environments seed their sources with rand.NewPCG(seed, seed);
// the agent's stream differs so that its actions are independent of the
// starting states and targets generated from the same seed.
func Source(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed+1)
}

// SelectAction returns the action to take in timestep t
func (h *Hold) SelectAction(t timestep.TimeStep) *mat.VecDense {
	if t.First() {
		h.restart()
	}

	if h.current == nil || h.held >= h.hold {
		if h.current == nil && h.initial != nil {
			h.current = mat.VecDenseCopyOf(h.initial)
		} else {
			h.current = mat.NewVecDense(h.actionDims, h.rng.Rand(nil))
		}
		h.held = 0
	}
	h.held++

	return mat.VecDenseCopyOf(h.current)
}

func (h *Hold) restart() {
	h.current = nil
	h.held = 0
}

// Hold returns the number of steps each action is held for
func (h *Hold) Hold() int {
	return h.hold
}

// Eval sets the agent to evaluation mode
func (h *Hold) Eval() {
	h.eval = true
}

// Train sets the agent to training mode
func (h *Hold) Train() {
	h.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (h *Hold) IsEval() bool {
	return h.eval
}

// ObserveFirst records the first timestep of an episode and restarts
// the hold period
func (h *Hold) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: %w: timestep is %v, not First",
			environment.ErrInvalidArgument, t.StepType)
	}
	h.restart()
	return nil
}

// Observe records the action taken and the timestep it lead to
func (h *Hold) Observe(action mat.Vector, nextObs timestep.TimeStep) error {
	if action.Len() != h.actionDims {
		return fmt.Errorf("observe: %w: illegal action length "+
			"\n\twant(%v) \n\thave(%v)", environment.ErrInvalidArgument,
			h.actionDims, action.Len())
	}
	return nil
}

// Step performs no update: Hold does not learn
func (h *Hold) Step() error {
	return nil
}

// EndEpisode performs cleanup at the end of an episode
func (h *Hold) EndEpisode() {
	h.restart()
}
