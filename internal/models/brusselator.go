package models

import "github.com/san-kum/bifsim/internal/dynamo"

// Brusselator is the autocatalytic reaction model
//
//	x' = a - (b+1)x + x²y
//	y' = b·x - x²y
//
// with the unique equilibrium (a, b/a), which undergoes a Hopf bifurcation
// at b = 1 + a².
type Brusselator struct{ params }

func NewBrusselator() *Brusselator { return &Brusselator{params{Params{"a": 1, "b": 1}}} }

func (m *Brusselator) Name() string   { return "brusselator" }
func (m *Brusselator) Vars() []string { return []string{"x", "y"} }
func (m *Brusselator) Dim() int       { return 2 }

func (m *Brusselator) Eval(s dynamo.State, p Params) dynamo.State {
	x, y := s[0], s[1]
	a, b := p["a"], p["b"]
	return dynamo.State{a - (b+1)*x + x*x*y, b*x - x*x*y}
}

func (m *Brusselator) JacobianAt(s dynamo.State, p Params) [][]float64 {
	x, y := s[0], s[1]
	b := p["b"]
	return [][]float64{
		{-(b + 1) + 2*x*y, x * x},
		{b - 2*x*y, -x * x},
	}
}

func (m *Brusselator) ParamDerivAt(s dynamo.State, _ Params, name string) dynamo.State {
	switch name {
	case "a":
		return dynamo.State{1, 0}
	case "b":
		return dynamo.State{-s[0], s[0]}
	}
	return dynamo.State{0, 0}
}

func (m *Brusselator) DefaultState() dynamo.State {
	a := m.values["a"]
	if a == 0 {
		return dynamo.State{0, 0}
	}
	return dynamo.State{a, m.values["b"] / a}
}
