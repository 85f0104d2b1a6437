package hand

import (
	"errors"
	"strings"
	"testing"

	"github.com/samuelfneumann/handreach/environment"
)

func TestConfigValuesLowercase(t *testing.T) {
	values := []string{
		string(Flexion), string(Bidirectional),
		string(PolarTargets), string(BoxTargets),
		string(SaturatingShaping), string(NegativeDistanceShaping),
	}

	for _, v := range values {
		if v != strings.ToLower(v) {
			t.Errorf("config value %q is not lowercase", v)
		}
	}
}

func TestValidateClamp(t *testing.T) {
	tests := []struct {
		clamp ClampPolicy
		valid bool
	}{
		{"flexion", true},
		{"bidirectional", true},
		{"Flexion", false},
		{"", false},
	}

	for _, test := range tests {
		c := DefaultConfig()
		c.Clamp = test.clamp
		err := c.Validate()

		if test.valid && err != nil {
			t.Errorf("validate %q: %v", test.clamp, err)
		}
		if !test.valid && !errors.Is(err, environment.ErrInvalidArgument) {
			t.Errorf("validate %q: \n\twant(%v) \n\thave(%v)", test.clamp,
				environment.ErrInvalidArgument, err)
		}
	}
}
