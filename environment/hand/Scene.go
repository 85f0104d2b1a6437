package hand

import (
	"fmt"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is a read-only snapshot of a World for renderers. Scenes are
// copies: mutating one never affects the World it was taken from.
type Scene struct {
	// Fingers holds, for every finger, its Joints+1 points from base to
	// effector
	Fingers [][]r3.Vec

	// Targets holds the target of every finger
	Targets []r3.Vec

	Step     int
	MaxSteps int
	Reward   float64

	// Scale is the draw scale of the World
	Scale float64

	Info map[string]string
}

// Scene returns a snapshot of the current episode
func (w *World) Scene() (Scene, error) {
	if w.state == Uninitialized {
		return Scene{}, fmt.Errorf("scene: %w: reset must be called first",
			environment.ErrInvalidState)
	}

	info := make(map[string]string, len(w.currentTimeStep.Info))
	for k, v := range w.currentTimeStep.Info {
		info[k] = v
	}

	return Scene{
		Fingers:  w.hand.Positions(),
		Targets:  w.Targets(),
		Step:     w.currentTimeStep.Number,
		MaxSteps: w.config.MaxSteps,
		Reward:   w.currentTimeStep.Reward,
		Scale:    w.config.Scale,
		Info:     info,
	}, nil
}
