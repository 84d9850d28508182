package model

import (
	"fmt"
	"math/rand/v2"
)

// Space bounds the architectures a search samples from.
type Space struct {
	MinUnits  int `mapstructure:"min_units" json:"min_units" yaml:"min_units"`
	MaxUnits  int `mapstructure:"max_units" json:"max_units" yaml:"max_units"`
	Step      int `mapstructure:"step" json:"step" yaml:"step"`
	MinLayers int `mapstructure:"min_layers" json:"min_layers" yaml:"min_layers"`
	MaxLayers int `mapstructure:"max_layers" json:"max_layers" yaml:"max_layers"`
}

// DefaultSpace is widths 32..512 step 32 with 1..4 extra hidden layers.
func DefaultSpace() Space {
	return Space{MinUnits: 32, MaxUnits: 512, Step: 32, MinLayers: 1, MaxLayers: 4}
}

// Validate reports an inconsistent space.
func (s Space) Validate() error {
	switch {
	case s.Step <= 0:
		return fmt.Errorf("model: space step must be positive, got %d", s.Step)
	case s.MinUnits <= 0 || s.MaxUnits < s.MinUnits:
		return fmt.Errorf("model: space units range [%d, %d] is invalid", s.MinUnits, s.MaxUnits)
	case s.MinLayers < 0 || s.MaxLayers < s.MinLayers:
		return fmt.Errorf("model: space layer range [%d, %d] is invalid", s.MinLayers, s.MaxLayers)
	}
	return nil
}

func (s Space) width(rng *rand.Rand) int {
	steps := (s.MaxUnits-s.MinUnits)/s.Step + 1
	return s.MinUnits + rng.IntN(steps)*s.Step
}

// Sample draws one architecture uniformly from s.
func (s Space) Sample(rng *rand.Rand) Architecture {
	a := Architecture{Units: s.width(rng)}
	n := s.MinLayers + rng.IntN(s.MaxLayers-s.MinLayers+1)
	a.Hidden = make([]int, n)
	for i := range a.Hidden {
		a.Hidden[i] = s.width(rng)
	}
	return a
}
