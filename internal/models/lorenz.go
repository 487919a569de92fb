package models

import (
	"math"

	"github.com/san-kum/bifsim/internal/dynamo"
)

// Lorenz is the Lorenz-63 system. For rho > 1 the symmetric pair
// C± = (±√(beta(rho-1)), ±√(beta(rho-1)), rho-1) loses stability in a
// subcritical Hopf bifurcation near rho = 24.74 at the classic sigma and beta.
type Lorenz struct{ params }

func NewLorenz() *Lorenz {
	return &Lorenz{params{Params{"sigma": 10, "rho": 2, "beta": 8.0 / 3.0}}}
}

func (m *Lorenz) Name() string   { return "lorenz" }
func (m *Lorenz) Vars() []string { return []string{"x", "y", "z"} }
func (m *Lorenz) Dim() int       { return 3 }

func (m *Lorenz) Eval(s dynamo.State, p Params) dynamo.State {
	x, y, z := s[0], s[1], s[2]
	return dynamo.State{
		p["sigma"] * (y - x),
		x*(p["rho"]-z) - y,
		x*y - p["beta"]*z,
	}
}

func (m *Lorenz) JacobianAt(s dynamo.State, p Params) [][]float64 {
	x, y, z := s[0], s[1], s[2]
	return [][]float64{
		{-p["sigma"], p["sigma"], 0},
		{p["rho"] - z, -1, -x},
		{y, x, -p["beta"]},
	}
}

func (m *Lorenz) ParamDerivAt(s dynamo.State, _ Params, name string) dynamo.State {
	x, y, z := s[0], s[1], s[2]
	switch name {
	case "sigma":
		return dynamo.State{y - x, 0, 0}
	case "rho":
		return dynamo.State{0, x, 0}
	case "beta":
		return dynamo.State{0, 0, -z}
	}
	return dynamo.State{0, 0, 0}
}

// DefaultState is C+ when it exists, the origin otherwise.
func (m *Lorenz) DefaultState() dynamo.State {
	rho, beta := m.values["rho"], m.values["beta"]
	if rho <= 1 || beta <= 0 {
		return dynamo.State{0, 0, 0}
	}
	c := math.Sqrt(beta * (rho - 1))
	return dynamo.State{c, c, rho - 1}
}
