package models

import "github.com/san-kum/bifsim/internal/dynamo"

// FitzHugh is the FitzHugh-Nagumo neuron with applied current I:
//
//	v' = v - v³/3 - w + I
//	w' = epsilon(v + a - b·w)
type FitzHugh struct{ params }

func NewFitzHugh() *FitzHugh {
	return &FitzHugh{params{Params{"a": 0.7, "b": 0.8, "epsilon": 0.08, "I": 0}}}
}

func (m *FitzHugh) Name() string   { return "fitzhugh" }
func (m *FitzHugh) Vars() []string { return []string{"v", "w"} }
func (m *FitzHugh) Dim() int       { return 2 }

func (m *FitzHugh) Eval(s dynamo.State, p Params) dynamo.State {
	v, w := s[0], s[1]
	return dynamo.State{
		v - v*v*v/3 - w + p["I"],
		p["epsilon"] * (v + p["a"] - p["b"]*w),
	}
}

func (m *FitzHugh) JacobianAt(s dynamo.State, p Params) [][]float64 {
	v := s[0]
	return [][]float64{
		{1 - v*v, -1},
		{p["epsilon"], -p["epsilon"] * p["b"]},
	}
}

func (m *FitzHugh) ParamDerivAt(s dynamo.State, p Params, name string) dynamo.State {
	v, w := s[0], s[1]
	switch name {
	case "I":
		return dynamo.State{1, 0}
	case "a":
		return dynamo.State{0, p["epsilon"]}
	case "b":
		return dynamo.State{0, -p["epsilon"] * w}
	case "epsilon":
		return dynamo.State{0, v + p["a"] - p["b"]*w}
	}
	return dynamo.State{0, 0}
}

// DefaultState finds the resting state on the w-nullcline by bisection on
// the cubic, which has a single real root when b < 1.
func (m *FitzHugh) DefaultState() dynamo.State {
	a, b, I := m.values["a"], m.values["b"], m.values["I"]
	if b == 0 {
		return dynamo.State{-a, -a + I - a*a*a/3}
	}
	g := func(v float64) float64 { return v - v*v*v/3 - (v+a)/b + I }
	lo, hi := -5.0, 5.0
	for i := 0; i < 200 && hi-lo > 1e-14; i++ {
		mid := (lo + hi) / 2
		if g(lo)*g(mid) <= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	v := (lo + hi) / 2
	return dynamo.State{v, (v + a) / b}
}
