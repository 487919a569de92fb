package dynamo

import (
	"math"
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
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Dot(other State) float64 {
	sum := 0.0
	for i := range s {
		if i < len(other) {
			sum += s[i] * other[i]
		}
	}
	return sum
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
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
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

// System is an equilibrium problem F(x, p) = 0 where F is the right-hand
// side of dx/dt = F(x, p).
type System interface {
	Dim() int
	RHS(x State, p float64) State
}

// JacobianProvider is implemented by systems with an analytic dF/dx.
// The returned matrix is row-major, Dim() x Dim().
type JacobianProvider interface {
	Jacobian(x State, p float64) [][]float64
}

// ParamDerivProvider is implemented by systems with an analytic dF/dp.
type ParamDerivProvider interface {
	ParamDeriv(x State, p float64) State
}

// HasJacobian reports whether sys supplies an analytic Jacobian.
func HasJacobian(sys System) bool {
	_, ok := sys.(JacobianProvider)
	return ok
}

// HasParamDeriv reports whether sys supplies an analytic parameter derivative.
func HasParamDeriv(sys System) bool {
	_, ok := sys.(ParamDerivProvider)
	return ok
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Func adapts plain functions to System. Jac and DP may be nil.
type Func struct {
	N   int
	F   func(x State, p float64) State
	Jac func(x State, p float64) [][]float64
	DP  func(x State, p float64) State
}

func (f *Func) Dim() int                      { return f.N }
func (f *Func) RHS(x State, p float64) State { return f.F(x, p) }

// WithJacobians returns a System that exposes only the capabilities whose
// functions are set.
func (f *Func) WithJacobians() System {
	switch {
	case f.Jac != nil && f.DP != nil:
		return &funcFull{f}
	case f.Jac != nil:
		return &funcJac{f}
	case f.DP != nil:
		return &funcDP{f}
	}
	return f
}

type funcJac struct{ *Func }

func (f *funcJac) Jacobian(x State, p float64) [][]float64 { return f.Jac(x, p) }

type funcDP struct{ *Func }

func (f *funcDP) ParamDeriv(x State, p float64) State { return f.DP(x, p) }

type funcFull struct{ *Func }

func (f *funcFull) Jacobian(x State, p float64) [][]float64 { return f.Jac(x, p) }
func (f *funcFull) ParamDeriv(x State, p float64) State     { return f.DP(x, p) }
