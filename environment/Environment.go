// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"errors"

	ts "github.com/samuelfneumann/handreach/timestep"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by environments. Both are programmer errors: they are
// never retried and environments never recover from them internally.
var (
	// ErrInvalidArgument is returned when an action or configuration
	// has the wrong shape or an illegal value
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an operation is called in an
	// episode state that does not allow it, for example stepping before
	// the first reset or after the episode has ended
	ErrInvalidState = errors.New("invalid state")
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If the argument TimeStep is the
// last in the episode, End marks it as such and returns true.
type Ender interface {
	End(t *ts.TimeStep) bool
}

// Environment implements a simulated environment
type Environment interface {
	// Reset begins a new episode and returns its first timestep
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step and returns the next timestep
	// as well as whether the episode has ended
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the most recent timestep
	CurrentTimeStep() ts.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
