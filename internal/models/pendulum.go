package models

import (
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Pendulum is a damped pendulum driven by a constant torque:
//
//	theta' = omega
//	omega' = (torque - damping·omega - m·g·l·sin(theta)) / (m·l²)
//
// The hanging and inverted equilibria meet in a fold at torque = m·g·l.
type Pendulum struct{ params }

func NewPendulum() *Pendulum {
	return &Pendulum{params{Params{
		"mass":    1.0,
		"length":  1.0,
		"damping": 0.1,
		"gravity": 9.81,
		"torque":  0,
	}}}
}

func (m *Pendulum) Name() string   { return "pendulum" }
func (m *Pendulum) Vars() []string { return []string{"theta", "omega"} }
func (m *Pendulum) Dim() int       { return 2 }

func (m *Pendulum) Eval(s dynamo.State, p Params) dynamo.State {
	theta, omega := s[0], s[1]
	ml2 := p["mass"] * p["length"] * p["length"]
	alpha := (p["torque"] - p["damping"]*omega - p["mass"]*p["gravity"]*p["length"]*math.Sin(theta)) / ml2
	return dynamo.State{omega, alpha}
}

func (m *Pendulum) JacobianAt(s dynamo.State, p Params) [][]float64 {
	ml2 := p["mass"] * p["length"] * p["length"]
	return [][]float64{
		{0, 1},
		{-p["gravity"] / p["length"] * math.Cos(s[0]), -p["damping"] / ml2},
	}
}

func (m *Pendulum) ParamDerivAt(s dynamo.State, p Params, name string) dynamo.State {
	if name == "torque" {
		return dynamo.State{0, 1 / (p["mass"] * p["length"] * p["length"])}
	}
	return nil
}

// DefaultState is the hanging equilibrium for |torque| < m·g·l.
func (m *Pendulum) DefaultState() dynamo.State {
	mgl := m.values["mass"] * m.values["gravity"] * m.values["length"]
	ratio := m.values["torque"] / mgl
	if math.Abs(ratio) > 1 || math.IsNaN(ratio) {
		return dynamo.State{math.Pi / 2, 0}
	}
	return dynamo.State{math.Asin(ratio), 0}
}
