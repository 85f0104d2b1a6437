package hand

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shaping converts the distance between an effector and its target
// into a per-finger reward
type Shaping struct {
	Name     ShapingName
	Fn       func(distance float64) float64
	Min, Max float64
}

// Saturating gives 1 - min(d, 1). Rewards lie in [0, 1], are 1 only at
// the target and 0 once the effector is a unit or more away.
var Saturating = Shaping{
	Name: SaturatingShaping,
	Fn: func(d float64) float64 {
		return 1 - math.Min(d, 1.0)
	},
	Min: 0.0,
	Max: 1.0,
}

// NegativeDistance gives -d, as in the reacher task
var NegativeDistance = Shaping{
	Name: NegativeDistanceShaping,
	Fn: func(d float64) float64 {
		return -d
	},
	Min: math.Inf(-1),
	Max: 0.0,
}

// ShapingFor returns the Shaping called name
func ShapingFor(name ShapingName) (Shaping, error) {
	switch name {
	case SaturatingShaping:
		return Saturating, nil
	case NegativeDistanceShaping:
		return NegativeDistance, nil
	}
	return Shaping{}, fmt.Errorf("shapingFor: %w: no such shaping %v",
		environment.ErrInvalidArgument, name)
}

// Reach implements the reaching task: every finger is rewarded by the
// shaped distance from its effector to its own target, and the reward
// on a timestep is the unweighted mean over fingers.
type Reach struct {
	shaping Shaping
}

// NewReach returns a new Reach task using the argument shaping
func NewReach(shaping Shaping) *Reach {
	return &Reach{shaping}
}

// Shaping returns the task's shaping
func (r *Reach) Shaping() Shaping {
	return r.shaping
}

// FingerReward returns the reward of a single effector for its target
func (r *Reach) FingerReward(effector, target r3.Vec) float64 {
	return r.shaping.Fn(r3.Norm(r3.Sub(effector, target)))
}

// FingerRewards returns the reward of each effector for its target
func (r *Reach) FingerRewards(effectors, targets []r3.Vec) []float64 {
	if len(effectors) != len(targets) {
		panic(fmt.Sprintf("fingerRewards: %v effectors for %v targets",
			len(effectors), len(targets)))
	}

	rewards := make([]float64, len(effectors))
	for i := range effectors {
		rewards[i] = r.FingerReward(effectors[i], targets[i])
	}
	return rewards
}

// GetReward returns the mean per-finger reward
func (r *Reach) GetReward(effectors, targets []r3.Vec) float64 {
	rewards := r.FingerRewards(effectors, targets)
	return floats.Sum(rewards) / float64(len(rewards))
}

// AtGoal returns whether every effector is within tolerance of its
// target
func (r *Reach) AtGoal(effectors, targets []r3.Vec, tolerance float64) bool {
	for i := range effectors {
		if r3.Norm(r3.Sub(effectors[i], targets[i])) > tolerance {
			return false
		}
	}
	return true
}

// RewardSpec returns the reward specification of the task
func (r *Reach) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{r.shaping.Min})
	upperBound := mat.NewVecDense(1, []float64{r.shaping.Max})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}
