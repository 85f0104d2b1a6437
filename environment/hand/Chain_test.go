package hand

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/samuelfneumann/handreach/environment"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const tolerance = 1e-12

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < tolerance
}

func newTestChain(t *testing.T, base r3.Vec, joints int, length float64,
	clamp ClampPolicy) *JointChain {
	t.Helper()
	c, err := NewJointChain(base, joints, length, clamp, rand.NewPCG(1, 1))
	if err != nil {
		t.Fatalf("newJointChain: %v", err)
	}
	return c
}

func TestPositions(t *testing.T) {
	tests := []struct {
		name   string
		angles []float64
		want   []r3.Vec
	}{
		{
			name:   "straight",
			angles: []float64{0, 0},
			want:   []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		},
		{
			// Angles are absolute: the second segment points along x
			// even though the first points along y
			name:   "bent",
			angles: []float64{math.Pi / 2, 0},
			want:   []r3.Vec{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		},
	}

	for _, test := range tests {
		c := newTestChain(t, r3.Vec{}, 2, 1.0, Bidirectional)
		if err := c.SetAngles(test.angles); err != nil {
			t.Fatalf("%v: setAngles: %v", test.name, err)
		}

		have := c.Positions()
		if len(have) != len(test.want) {
			t.Fatalf("%v: positions length \n\twant(%v) \n\thave(%v)",
				test.name, len(test.want), len(have))
		}
		for i := range have {
			if !near(have[i], test.want[i]) {
				t.Errorf("%v: point %v \n\twant(%v) \n\thave(%v)", test.name,
					i, test.want[i], have[i])
			}
		}
		if !near(c.Effector(), test.want[len(test.want)-1]) {
			t.Errorf("%v: effector \n\twant(%v) \n\thave(%v)", test.name,
				test.want[len(test.want)-1], c.Effector())
		}
	}
}

func TestPositionsExactStraight(t *testing.T) {
	c := newTestChain(t, r3.Vec{}, 2, 1.0, Flexion)
	if err := c.SetAngles([]float64{0, 0}); err != nil {
		t.Fatal(err)
	}

	want := []r3.Vec{{}, {X: 1}, {X: 2}}
	for i, p := range c.Positions() {
		if p != want[i] {
			t.Errorf("point %v \n\twant(%v) \n\thave(%v)", i, want[i], p)
		}
	}
}

func TestPositionsDeterministic(t *testing.T) {
	c := newTestChain(t, r3.Vec{X: 0.1, Y: -0.2, Z: 0.3}, 4, 0.2, Flexion)

	first, second := c.Positions(), c.Positions()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("positions: point %v changed between calls: %v -> %v",
				i, first[i], second[i])
		}
	}
}

func TestPositionsLateralOffset(t *testing.T) {
	base := r3.Vec{Z: 0.15}
	c := newTestChain(t, base, 3, 0.2, Bidirectional)

	positions := c.Positions()
	if positions[0] != base {
		t.Errorf("positions: first point \n\twant(%v) \n\thave(%v)", base,
			positions[0])
	}
	for i, p := range positions {
		if p.Z != base.Z {
			t.Errorf("positions: point %v lateral offset \n\twant(%v) "+
				"\n\thave(%v)", i, base.Z, p.Z)
		}
	}
}

func TestStartAngles(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		c, err := NewJointChain(r3.Vec{}, 5, 0.2, Flexion,
			rand.NewPCG(seed, seed))
		if err != nil {
			t.Fatal(err)
		}
		for i, angle := range c.Angles() {
			if angle < 0 || angle > MaxStartAngle {
				t.Fatalf("seed %v: start angle %v = %v outside [0, π/4]", seed,
					i, angle)
			}
		}
	}
}

func TestMoveGain(t *testing.T) {
	c := newTestChain(t, r3.Vec{}, 2, 1.0, Flexion)
	if err := c.SetAngles([]float64{0.1, 0.2}); err != nil {
		t.Fatal(err)
	}

	if err := c.Move(mat.NewVecDense(2, []float64{1, -1})); err != nil {
		t.Fatal(err)
	}

	want := []float64{0.1 + StepGain, 0.2 - StepGain}
	for i, angle := range c.Angles() {
		if math.Abs(angle-want[i]) > tolerance {
			t.Errorf("move: angle %v \n\twant(%v) \n\thave(%v)", i, want[i],
				angle)
		}
	}
}

func TestMoveClamp(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for _, clamp := range []ClampPolicy{Flexion, Bidirectional} {
		c := newTestChain(t, r3.Vec{}, 4, 0.2, clamp)
		bounds := clamp.Interval()

		for i := 0; i < 1000; i++ {
			delta := mat.NewVecDense(4, nil)
			for j := 0; j < delta.Len(); j++ {
				// Mix of small and very large deltas of either sign
				magnitude := math.Pow(10, float64(rng.IntN(8)))
				delta.SetVec(j, (2*rng.Float64()-1)*magnitude)
			}
			if err := c.Move(delta); err != nil {
				t.Fatal(err)
			}

			for j, angle := range c.Angles() {
				if angle < bounds.Min || angle > bounds.Max {
					t.Fatalf("%v: angle %v = %v outside [%v, %v]", clamp, j,
						angle, bounds.Min, bounds.Max)
				}
			}
		}
	}
}

func TestMoveClampSaturates(t *testing.T) {
	c := newTestChain(t, r3.Vec{}, 2, 0.2, Flexion)

	if err := c.Move(mat.NewVecDense(2, []float64{-1e9, 1e9})); err != nil {
		t.Fatal(err)
	}
	angles := c.Angles()
	if angles[0] != 0 || angles[1] != math.Pi/2 {
		t.Errorf("move: \n\twant([0 %v]) \n\thave(%v)", math.Pi/2, angles)
	}
}

func TestMoveNonFinite(t *testing.T) {
	for _, clamp := range []ClampPolicy{Flexion, Bidirectional} {
		c := newTestChain(t, r3.Vec{}, 2, 0.2, clamp)
		bounds := clamp.Interval()

		inf := mat.NewVecDense(2, []float64{math.Inf(-1), math.Inf(1)})
		if err := c.Move(inf); err != nil {
			t.Fatalf("%v: %v", clamp, err)
		}
		angles := c.Angles()
		if angles[0] != bounds.Min || angles[1] != bounds.Max {
			t.Errorf("%v: move: \n\twant([%v %v]) \n\thave(%v)", clamp,
				bounds.Min, bounds.Max, angles)
		}

		before := c.Angles()
		nan := mat.NewVecDense(2, []float64{0.5, math.NaN()})
		if err := c.Move(nan); !errors.Is(err,
			environment.ErrInvalidArgument) {
			t.Errorf("%v: move: \n\twant(%v) \n\thave(%v)", clamp,
				environment.ErrInvalidArgument, err)
		}
		for i, angle := range c.Angles() {
			if angle != before[i] {
				t.Errorf("%v: move: rejected action changed angle %v", clamp,
					i)
			}
		}
	}
}

func TestMoveInvalidLength(t *testing.T) {
	c := newTestChain(t, r3.Vec{}, 3, 0.2, Flexion)
	before := c.Angles()

	err := c.Move(mat.NewVecDense(2, []float64{1, 1}))
	if !errors.Is(err, environment.ErrInvalidArgument) {
		t.Fatalf("move: \n\twant(%v) \n\thave(%v)",
			environment.ErrInvalidArgument, err)
	}
	for i, angle := range c.Angles() {
		if angle != before[i] {
			t.Errorf("move: failed move changed angle %v", i)
		}
	}
}

func TestNewJointChainInvalid(t *testing.T) {
	tests := []struct {
		joints int
		length float64
	}{
		{0, 1.0},
		{-2, 1.0},
		{3, 0.0},
		{3, -0.5},
	}
	for _, test := range tests {
		_, err := NewJointChain(r3.Vec{}, test.joints, test.length, Flexion,
			rand.NewPCG(1, 1))
		if !errors.Is(err, environment.ErrInvalidArgument) {
			t.Errorf("newJointChain(%v, %v) \n\twant(%v) \n\thave(%v)",
				test.joints, test.length, environment.ErrInvalidArgument, err)
		}
	}
}

func TestSetAnglesOutOfRange(t *testing.T) {
	c := newTestChain(t, r3.Vec{}, 2, 0.2, Flexion)

	err := c.SetAngles([]float64{-0.1, 0})
	if !errors.Is(err, environment.ErrInvalidArgument) {
		t.Errorf("setAngles: \n\twant(%v) \n\thave(%v)",
			environment.ErrInvalidArgument, err)
	}

	err = c.SetAngles([]float64{0})
	if !errors.Is(err, environment.ErrInvalidArgument) {
		t.Errorf("setAngles: \n\twant(%v) \n\thave(%v)",
			environment.ErrInvalidArgument, err)
	}
}
