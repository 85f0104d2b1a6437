// Package envconfig provides configuration structs for configuring
// Hand environments with default geometric parameters and tasks.
// Environment configurations in this package are JSON and YAML
// serializable and may be loaded from files.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samuelfneumann/handreach/environment"
	"github.com/samuelfneumann/handreach/environment/hand"
	ts "github.com/samuelfneumann/handreach/timestep"
	"gopkg.in/yaml.v3"
)

// EnvName stores the name of the environment presets that can be
// configured with this package
type EnvName string

// Presets available for configuration
const (
	// SingleFinger is one three-jointed finger with bidirectional
	// joints reaching for polar targets
	SingleFinger EnvName = "SingleFinger"

	// Fingers is three three-jointed fingers with flexion-only joints
	// reaching for targets sampled in a box
	Fingers EnvName = "Fingers"
)

// Preset returns the hand configuration of the preset called name
func Preset(name EnvName) (hand.Config, error) {
	c := hand.DefaultConfig()

	switch name {
	case SingleFinger:
		return c, nil

	case Fingers:
		c.Fingers = 3
		c.Clamp = hand.Flexion
		c.Targets = hand.BoxTargets
		return c, nil
	}

	return hand.Config{}, fmt.Errorf("preset: %w: no such environment %v",
		environment.ErrInvalidArgument, name)
}

// Config implements a specific configuration of a Hand environment.
// Hand holds the geometry and task. When a Config is loaded, fields
// absent from the file keep the values of the preset named by
// Environment.
type Config struct {
	Environment EnvName     `json:"environment" yaml:"environment"`
	Hand        hand.Config `json:"hand" yaml:"hand"`
	Seed        uint64      `json:"seed" yaml:"seed"`
}

// NewConfig returns a new Config of the preset called name
func NewConfig(name EnvName, seed uint64) (Config, error) {
	c, err := Preset(name)
	if err != nil {
		return Config{}, fmt.Errorf("newConfig: %w", err)
	}

	return Config{
		Environment: name,
		Hand:        c,
		Seed:        seed,
	}, nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(seed uint64) (*hand.World, ts.TimeStep, error) {
	return CreateHand(c.Hand, seed)
}

// CreateHand is a factory for creating a Hand environment that has
// already been reset
func CreateHand(c hand.Config, seed uint64) (*hand.World, ts.TimeStep,
	error) {
	w, err := hand.New(c, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createHand: %w", err)
	}

	step, err := w.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createHand: %w", err)
	}
	return w, step, nil
}

// Load reads a Config from a YAML (.yaml, .yml) or JSON (.json) file.
// The file is decoded over the preset named by its environment key, so
// only the fields present in the file override the preset. Explicit
// zero values are kept. A missing environment defaults to SingleFinger.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	var unmarshal func([]byte, any) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal

	case ".json":
		unmarshal = json.Unmarshal

	default:
		return Config{}, fmt.Errorf("load: %w: unknown config format %q",
			environment.ErrInvalidArgument, ext)
	}

	// The preset must be known before the rest of the file is decoded
	var named struct {
		Environment EnvName `json:"environment" yaml:"environment"`
	}
	if err := unmarshal(data, &named); err != nil {
		return Config{}, fmt.Errorf("load: %v: %w", path, err)
	}
	if named.Environment == "" {
		named.Environment = SingleFinger
	}
	c, err := NewConfig(named.Environment, 0)
	if err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	if err := unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: %v: %w", path, err)
	}
	c.Environment = named.Environment
	if err := c.Hand.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// Save writes the Config to path, as YAML or JSON by file extension
func (c Config) Save(path string) error {
	var data []byte
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)

	case ".json":
		data, err = json.MarshalIndent(c, "", "\t")

	default:
		return fmt.Errorf("save: %w: unknown config format %q",
			environment.ErrInvalidArgument, ext)
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
