// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/handreach/agent/random"
	"github.com/samuelfneumann/handreach/environment"
	"github.com/samuelfneumann/handreach/environment/envconfig"
	"github.com/samuelfneumann/handreach/environment/hand"
	"github.com/samuelfneumann/handreach/experiment/tracker"
	"gonum.org/v1/gonum/mat"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send every environment TimeStep to their Trackers, which
// cache the data to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep limit is reached. The
// RunEpisode() function will run a single episode.
type Experiment interface {
	Run() error

	// RunEpisode returns whether the step limit of the experiment has
	// been reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Type is the kind of an experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment with a Hold agent
type Config struct {
	Type     Type             `json:"type" yaml:"type"`
	MaxSteps uint             `json:"max_steps" yaml:"max_steps"`
	EnvConf  envconfig.Config `json:"environment" yaml:"environment"`

	// Hold is the number of steps each random action is held for
	Hold int `json:"hold" yaml:"hold"`

	// InitialAction, if not empty, is held for the first Hold steps of
	// every episode
	InitialAction []float64 `json:"initial_action" yaml:"initial_action"`
}

// CreateExp returns the experiment described by the Config and its
// environment. The environment and agent are seeded by seed.
func (c Config) CreateExp(seed uint64, t ...tracker.Tracker) (*Online,
	*hand.World, error) {
	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create "+
			"environment: %w", err)
	}

	var initial *mat.VecDense
	if len(c.InitialAction) > 0 {
		initial = mat.NewVecDense(len(c.InitialAction), c.InitialAction)
	}
	agent, err := random.NewHold(env.ActionSpec(), c.Hold, initial, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create agent: %w",
			err)
	}

	switch c.Type {
	case OnlineExp, "":
		return NewOnline(env, agent, c.MaxSteps, t...), env, nil
	}

	return nil, nil, fmt.Errorf("createExp: %w: no such experiment type %v",
		environment.ErrInvalidArgument, c.Type)
}
