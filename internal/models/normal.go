package models

import (
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Fold is the saddle-node normal form x' = mu - x².
type Fold struct{ params }

func NewFold() *Fold { return &Fold{params{Params{"mu": 1}}} }

func (m *Fold) Name() string   { return "fold" }
func (m *Fold) Vars() []string { return []string{"x"} }
func (m *Fold) Dim() int       { return 1 }

func (m *Fold) Eval(x dynamo.State, p Params) dynamo.State {
	return dynamo.State{p["mu"] - x[0]*x[0]}
}

func (m *Fold) JacobianAt(x dynamo.State, _ Params) [][]float64 {
	return [][]float64{{-2 * x[0]}}
}

func (m *Fold) ParamDerivAt(x dynamo.State, _ Params, name string) dynamo.State {
	if name == "mu" {
		return dynamo.State{1}
	}
	return dynamo.State{0}
}

func (m *Fold) DefaultState() dynamo.State {
	if mu := m.values["mu"]; mu > 0 {
		return dynamo.State{math.Sqrt(mu)}
	}
	return dynamo.State{0}
}

// Transcritical is x' = mu·x - x².
type Transcritical struct{ params }

func NewTranscritical() *Transcritical { return &Transcritical{params{Params{"mu": -1}}} }

func (m *Transcritical) Name() string   { return "transcritical" }
func (m *Transcritical) Vars() []string { return []string{"x"} }
func (m *Transcritical) Dim() int       { return 1 }

func (m *Transcritical) Eval(x dynamo.State, p Params) dynamo.State {
	return dynamo.State{p["mu"]*x[0] - x[0]*x[0]}
}

func (m *Transcritical) JacobianAt(x dynamo.State, p Params) [][]float64 {
	return [][]float64{{p["mu"] - 2*x[0]}}
}

func (m *Transcritical) ParamDerivAt(x dynamo.State, _ Params, name string) dynamo.State {
	if name == "mu" {
		return dynamo.State{x[0]}
	}
	return dynamo.State{0}
}

func (m *Transcritical) DefaultState() dynamo.State { return dynamo.State{0} }

// Pitchfork is the supercritical form x' = mu·x - x³.
type Pitchfork struct{ params }

func NewPitchfork() *Pitchfork { return &Pitchfork{params{Params{"mu": -1}}} }

func (m *Pitchfork) Name() string   { return "pitchfork" }
func (m *Pitchfork) Vars() []string { return []string{"x"} }
func (m *Pitchfork) Dim() int       { return 1 }

func (m *Pitchfork) Eval(x dynamo.State, p Params) dynamo.State {
	return dynamo.State{p["mu"]*x[0] - x[0]*x[0]*x[0]}
}

func (m *Pitchfork) JacobianAt(x dynamo.State, p Params) [][]float64 {
	return [][]float64{{p["mu"] - 3*x[0]*x[0]}}
}

func (m *Pitchfork) ParamDerivAt(x dynamo.State, _ Params, name string) dynamo.State {
	if name == "mu" {
		return dynamo.State{x[0]}
	}
	return dynamo.State{0}
}

func (m *Pitchfork) DefaultState() dynamo.State { return dynamo.State{0} }

// HopfNormal is the supercritical Hopf normal form in Cartesian coordinates:
//
//	x' = mu·x - omega·y - x(x² + y²)
//	y' = omega·x + mu·y - y(x² + y²)
type HopfNormal struct{ params }

func NewHopfNormal() *HopfNormal { return &HopfNormal{params{Params{"mu": -0.5, "omega": 1}}} }

func (m *HopfNormal) Name() string   { return "hopf" }
func (m *HopfNormal) Vars() []string { return []string{"x", "y"} }
func (m *HopfNormal) Dim() int       { return 2 }

func (m *HopfNormal) Eval(s dynamo.State, p Params) dynamo.State {
	x, y := s[0], s[1]
	mu, w := p["mu"], p["omega"]
	r2 := x*x + y*y
	return dynamo.State{mu*x - w*y - x*r2, w*x + mu*y - y*r2}
}

func (m *HopfNormal) JacobianAt(s dynamo.State, p Params) [][]float64 {
	x, y := s[0], s[1]
	mu, w := p["mu"], p["omega"]
	return [][]float64{
		{mu - 3*x*x - y*y, -w - 2*x*y},
		{w - 2*x*y, mu - x*x - 3*y*y},
	}
}

func (m *HopfNormal) ParamDerivAt(s dynamo.State, _ Params, name string) dynamo.State {
	switch name {
	case "mu":
		return dynamo.State{s[0], s[1]}
	case "omega":
		return dynamo.State{-s[1], s[0]}
	}
	return dynamo.State{0, 0}
}

func (m *HopfNormal) DefaultState() dynamo.State { return dynamo.State{0, 0} }
