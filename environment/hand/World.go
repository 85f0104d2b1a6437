package hand

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/samuelfneumann/handreach/environment"
	ts "github.com/samuelfneumann/handreach/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the episode state of a World
type State int

const (
	// Uninitialized worlds have never been reset
	Uninitialized State = iota

	// Ready worlds have an episode in progress
	Ready

	// Done worlds have finished their episode and must be reset
	Done
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Done:
		return "Done"
	default:
		return "Uninitialized"
	}
}

// Keys of the Info map filled in by a World. None are required by
// consumers.
const (
	InfoReward = "reward"
	InfoSteps  = "steps"
)

// InfoFinger returns the Info key describing finger i
func InfoFinger(i int) string {
	return fmt.Sprintf("finger%d", i)
}

// World implements the Hand environment. A World owns one Hand and one
// target per finger; both are replaced on every Reset.
//
// Observations have Fingers*Joints + Fingers*3 features: the joint
// angles of every finger in order, followed by the (x, y, z)
// coordinates of every finger's target in order:
//
//	[θ₀₀ … θ₀ⱼ, θ₁₀ … θ₁ⱼ, …, x₀, y₀, z₀, x₁, y₁, z₁, …]
//
// Actions have Fingers*Joints components in [-1, 1], laid out finger
// by finger in the same order as the observed angles. Actions are not
// clipped; each component is scaled by StepGain and the resulting
// angle is clamped.
//
// Rewards are the mean over fingers of the shaped distance from each
// effector to its target. Episodes end by timeout once more than
// MaxSteps steps have been taken; there is no terminal state.
//
// World satisfies the environment.Environment interface. A World is not
// safe for concurrent use, and distinct Worlds share no state.
type World struct {
	config   Config
	src      rand.Source
	targeter Targeter
	task     *Reach
	ender    environment.Ender
	discount float64

	hand    *Hand
	targets []r3.Vec

	state           State
	currentTimeStep ts.TimeStep
}

// New returns a new, uninitialized World. Reset must be called before
// the first Step. All randomness is drawn from a source seeded with
// seed, so Worlds built with equal configs and seeds produce equal
// episodes.
func New(c Config, seed uint64) (*World, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	src := rand.NewPCG(seed, seed)
	targeter, err := NewTargeter(c, src)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	shaping, err := ShapingFor(c.Shaping)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &World{
		config:   c,
		src:      src,
		targeter: targeter,
		task:     NewReach(shaping),
		ender:    environment.NewStepLimit(c.MaxSteps),
		discount: 1.0,
		state:    Uninitialized,
	}, nil
}

// Config returns the configuration of the World
func (w *World) Config() Config {
	return w.config
}

// State returns the episode state of the World
func (w *World) State() State {
	return w.state
}

// Task returns the reaching task used to compute rewards
func (w *World) Task() *Reach {
	return w.task
}

// Targets returns a copy of the current targets
func (w *World) Targets() []r3.Vec {
	targets := make([]r3.Vec, len(w.targets))
	copy(targets, w.targets)
	return targets
}

// Reset begins a new episode with a new Hand and new targets and
// returns the first timestep. Reset may be called in any state.
func (w *World) Reset() (ts.TimeStep, error) {
	h, err := NewHand(w.config, w.src)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	w.hand = h
	w.targets = w.targeter.Targets(w.config)

	firstStep := ts.New(ts.First, 0, w.discount, w.observe(), 0)
	w.describe(&firstStep)

	w.state = Ready
	w.currentTimeStep = firstStep
	return firstStep, nil
}

// Step takes one environmental step given a flat action holding the
// action of every finger in order. On error the World is unchanged,
// the returned TimeStep is the zero value and done is false.
func (w *World) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if err := w.ready(); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	if action == nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: nil action",
			environment.ErrInvalidArgument)
	}
	if want := w.config.Fingers * w.config.Joints; action.Len() != want {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: illegal action "+
			"length \n\twant(%v) \n\thave(%v)", environment.ErrInvalidArgument,
			want, action.Len())
	}

	joints := w.config.Joints
	actions := make([]mat.Vector, w.config.Fingers)
	for i := range actions {
		actions[i] = action.SliceVec(i*joints, (i+1)*joints)
	}
	return w.step(actions)
}

// StepFingers takes one environmental step given one action per finger
func (w *World) StepFingers(actions []*mat.VecDense) (ts.TimeStep, bool,
	error) {
	if err := w.ready(); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("stepFingers: %w", err)
	}

	vecs := make([]mat.Vector, len(actions))
	for i := range actions {
		if actions[i] == nil {
			return ts.TimeStep{}, false, fmt.Errorf("stepFingers: %w: nil "+
				"action for finger %v", environment.ErrInvalidArgument, i)
		}
		vecs[i] = actions[i]
	}
	return w.step(vecs)
}

// step moves the hand and builds the next timestep
func (w *World) step(actions []mat.Vector) (ts.TimeStep, bool, error) {
	if err := w.hand.Move(actions); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	reward := w.task.GetReward(w.hand.Effectors(), w.targets)
	nextStep := ts.New(ts.Mid, reward, w.discount, w.observe(),
		w.currentTimeStep.Number+1)

	done := w.ender.End(&nextStep)
	if done {
		w.state = Done
	}
	w.describe(&nextStep)

	w.currentTimeStep = nextStep
	return nextStep, done, nil
}

// ready returns an error if the World cannot be stepped
func (w *World) ready() error {
	switch w.state {
	case Uninitialized:
		return fmt.Errorf("%w: reset must be called before step",
			environment.ErrInvalidState)
	case Done:
		return fmt.Errorf("%w: episode is done, reset must be called",
			environment.ErrInvalidState)
	}
	return nil
}

// observe returns the current observation
func (w *World) observe() *mat.VecDense {
	obs := mat.NewVecDense(w.observationLen(), nil)

	i := 0
	for _, f := range w.hand.Fingers() {
		for _, angle := range f.Angles() {
			obs.SetVec(i, angle)
			i++
		}
	}
	for _, t := range w.targets {
		obs.SetVec(i, t.X)
		obs.SetVec(i+1, t.Y)
		obs.SetVec(i+2, t.Z)
		i += 3
	}

	return obs
}

// describe fills the Info map of t with human readable diagnostics
func (w *World) describe(t *ts.TimeStep) {
	t.Info[InfoReward] = fmt.Sprintf("Reward: %.3f", t.Reward)
	t.Info[InfoSteps] = fmt.Sprintf("Steps: %v/%v", t.Number,
		w.config.MaxSteps)

	for i, effector := range w.hand.Effectors() {
		target := w.targets[i]
		t.Info[InfoFinger(i)] = fmt.Sprintf("ID: %v Effector pos: "+
			"(%.2f, %.2f) Target pos (%.2f, %.2f)", i, effector.X,
			effector.Y, target.X, target.Y)
	}
}

func (w *World) observationLen() int {
	return w.config.Fingers*w.config.Joints + w.config.Fingers*3
}

// CurrentTimeStep returns the current timestep
func (w *World) CurrentTimeStep() ts.TimeStep {
	return w.currentTimeStep
}

// ActionSpec returns the action specification of the environment
func (w *World) ActionSpec() environment.Spec {
	dims := w.config.Fingers * w.config.Joints
	return environment.NewBoxSpec(dims, environment.Action, -1.0, 1.0)
}

// ObservationSpec returns the observation specification of the
// environment. Angle features are bounded by [-π/2, π/2]. Target
// features are bounded symmetrically by the larger of π/2 and the
// furthest a target can be sampled from the origin.
func (w *World) ObservationSpec() environment.Spec {
	dims := w.observationLen()
	angles := w.config.Fingers * w.config.Joints
	targetBound := w.targetBound()

	lower := mat.NewVecDense(dims, nil)
	upper := mat.NewVecDense(dims, nil)
	for i := 0; i < dims; i++ {
		bound := math.Pi / 2
		if i >= angles {
			bound = targetBound
		}
		lower.SetVec(i, -bound)
		upper.SetVec(i, bound)
	}

	return environment.NewSpec(mat.NewVecDense(dims, nil),
		environment.Observation, lower, upper, environment.Continuous)
}

func (w *World) targetBound() float64 {
	lateral := w.config.LateralOffset(w.config.Fingers - 1)
	planar := w.config.Reach()
	if w.config.Targets == BoxTargets {
		planar = math.Max(math.Abs(BoxTargetX.Max), math.Abs(BoxTargetY.Min))
	}
	return math.Max(math.Pi/2, planar+lateral)
}

// RewardSpec returns the reward specification of the environment
func (w *World) RewardSpec() environment.Spec {
	return w.task.RewardSpec()
}

// DiscountSpec returns the discounting specification of the environment
func (w *World) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{w.discount})
	upperBound := mat.NewVecDense(1, []float64{w.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// String implements the fmt.Stringer interface
func (w *World) String() string {
	if w.hand == nil {
		return fmt.Sprintf("Hand  |  %v", w.state)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hand  |  %v  |  step: %v", w.state,
		w.currentTimeStep.Number)
	for i, f := range w.hand.Fingers() {
		fmt.Fprintf(&b, "  |  θ%v: %.2f", i, f.Angles())
	}
	return b.String()
}
