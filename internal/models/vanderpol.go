package models

import "github.com/san-kum/bifsim/internal/dynamo"

// VanDerPol is the Van der Pol oscillator
//
//	x' = y
//	y' = mu(1 - x²)y - x
//
// The origin loses stability through a Hopf bifurcation at mu = 0.
type VanDerPol struct{ params }

func NewVanDerPol() *VanDerPol { return &VanDerPol{params{Params{"mu": -1}}} }

func (m *VanDerPol) Name() string   { return "vanderpol" }
func (m *VanDerPol) Vars() []string { return []string{"x", "y"} }
func (m *VanDerPol) Dim() int       { return 2 }

func (m *VanDerPol) Eval(s dynamo.State, p Params) dynamo.State {
	x, y := s[0], s[1]
	return dynamo.State{y, p["mu"]*(1-x*x)*y - x}
}

func (m *VanDerPol) DefaultState() dynamo.State { return dynamo.State{0, 0} }
