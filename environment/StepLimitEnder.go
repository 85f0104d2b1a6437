package environment

import ts "github.com/samuelfneumann/handreach/timestep"

// StepLimit implements the Ender interface to end episodes once the
// number of steps taken exceeds a horizon
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit. Episodes end on
// the first timestep whose number exceeds episodeSteps, so an episode
// started from a reset lasts episodeSteps + 1 steps.
func NewStepLimit(episodeSteps int) *StepLimit {
	return &StepLimit{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is timestep.Timeout
func (s *StepLimit) End(t *ts.TimeStep) bool {
	if t.Number > s.episodeSteps {
		t.SetEnd(ts.Timeout)
		return true
	}
	return false
}

// Limit returns the horizon of the StepLimit
func (s *StepLimit) Limit() int {
	return s.episodeSteps
}
