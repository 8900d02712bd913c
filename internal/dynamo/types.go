package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Distance is the Euclidean distance between two states of equal length.
func (s State) Distance(other State) float64 {
	return floats.Distance(s, other, 2)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t, dt float64) State
}

// Configurable systems expose named scalar parameters.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

// Tolerance bounds the local error of an adaptive step: the error on
// component i must stay below Abs + Rel*|x_i|.
type Tolerance struct {
	Abs float64 `yaml:"atol" json:"atol"`
	Rel float64 `yaml:"rtol" json:"rtol"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{Abs: 1e-10, Rel: 1e-8}
}

func (t Tolerance) Valid() bool {
	return t.Abs > 0 && t.Rel > 0 && !math.IsInf(t.Abs, 0) && !math.IsInf(t.Rel, 0)
}
