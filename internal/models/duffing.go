package models

import (
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Duffing is the unforced Duffing oscillator
//
//	x' = v
//	v' = -delta·v - alpha·x - beta·x³
//
// whose origin undergoes a pitchfork at alpha = 0.
type Duffing struct{ params }

func NewDuffing() *Duffing {
	return &Duffing{params{Params{"alpha": 1, "beta": 1, "delta": 0.3}}}
}

func (m *Duffing) Name() string   { return "duffing" }
func (m *Duffing) Vars() []string { return []string{"x", "v"} }
func (m *Duffing) Dim() int       { return 2 }

func (m *Duffing) Eval(s dynamo.State, p Params) dynamo.State {
	x, v := s[0], s[1]
	return dynamo.State{v, -p["delta"]*v - p["alpha"]*x - p["beta"]*x*x*x}
}

func (m *Duffing) JacobianAt(s dynamo.State, p Params) [][]float64 {
	x := s[0]
	return [][]float64{
		{0, 1},
		{-p["alpha"] - 3*p["beta"]*x*x, -p["delta"]},
	}
}

// DefaultState is the origin when alpha >= 0 and the right well otherwise.
func (m *Duffing) DefaultState() dynamo.State {
	alpha, beta := m.values["alpha"], m.values["beta"]
	if alpha >= 0 || beta <= 0 {
		return dynamo.State{0, 0}
	}
	return dynamo.State{math.Sqrt(-alpha / beta), 0}
}
