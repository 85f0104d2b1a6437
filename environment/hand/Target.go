package hand

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampling ranges for targets
const (
	// Polar targets are sampled at a fraction of the finger's reach
	MinReachFraction float64 = 0.4
	MaxReachFraction float64 = 0.9

	// Polar targets are sampled in this arc, measured from the x-axis
	MinTargetAngle float64 = -math.Pi / 2
	MaxTargetAngle float64 = math.Pi / 6
)

// Box targets are sampled in this rectangle of the finger's plane
var (
	BoxTargetX = r1.Interval{Min: 0.3, Max: 0.7}
	BoxTargetY = r1.Interval{Min: -0.5, Max: 0.3}
)

// Targeter samples one target per finger at the start of an episode.
// Target i must lie in the plane of finger i.
type Targeter interface {
	Targets(c Config) []r3.Vec
}

// NewTargeter returns the Targeter selected by c.Targets, drawing from src
func NewTargeter(c Config, src rand.Source) (Targeter, error) {
	switch c.Targets {
	case PolarTargets:
		return &Polar{src: src}, nil
	case BoxTargets:
		return &Box{
			rng: distmv.NewUniform([]r1.Interval{BoxTargetX, BoxTargetY}, src),
		}, nil
	}
	return nil, fmt.Errorf("newTargeter: %w: no such target mode %v",
		environment.ErrInvalidArgument, c.Targets)
}

// Polar samples a reach distance uniformly in
// [MinReachFraction, MaxReachFraction] times the finger's full reach
// and an angle uniformly in [MinTargetAngle, MaxTargetAngle]. Targets
// lie within the finger's geometric envelope but are not guaranteed to
// be exactly reachable.
type Polar struct {
	src rand.Source
}

// Targets returns a new target for each finger described by c
func (p *Polar) Targets(c Config) []r3.Vec {
	reach := c.Reach()
	distance := distuv.Uniform{
		Min: MinReachFraction * reach,
		Max: MaxReachFraction * reach,
		Src: p.src,
	}
	angle := distuv.Uniform{Min: MinTargetAngle, Max: MaxTargetAngle,
		Src: p.src}

	targets := make([]r3.Vec, c.Fingers)
	for i := range targets {
		d, a := distance.Rand(), angle.Rand()
		targets[i] = r3.Vec{
			X: d * math.Cos(a),
			Y: d * math.Sin(a),
			Z: c.LateralOffset(i),
		}
	}
	return targets
}

// Box samples targets uniformly from the rectangle BoxTargetX ×
// BoxTargetY, independently of the finger's reach
type Box struct {
	rng *distmv.Uniform
}

// Targets returns a new target for each finger described by c
func (b *Box) Targets(c Config) []r3.Vec {
	targets := make([]r3.Vec, c.Fingers)
	for i := range targets {
		xy := b.rng.Rand(nil)
		targets[i] = r3.Vec{X: xy[0], Y: xy[1], Z: c.LateralOffset(i)}
	}
	return targets
}
