// Package dynamo provides the core primitives shared by the continuation
// engine.
//
// The package defines the fundamental interfaces and types for equilibrium
// problems F(x, p) = 0 of an ODE system dx/dt = F(x, p):
//
//   - [State]: vector representing system state
//   - [System]: interface for parametrized right-hand sides
//   - [JacobianProvider], [ParamDerivProvider]: optional analytic derivatives
//   - [Func]: adapter turning plain functions into a [System]
//
// Optional capabilities are discovered with [HasJacobian] and
// [HasParamDeriv]. Systems never fall back to numerical differentiation
// themselves; the continuation drivers do that.
//
// # Example
//
//	sys := &dynamo.Func{N: 1, F: func(x dynamo.State, p float64) dynamo.State {
//	    return dynamo.State{p - x[0]*x[0]}
//	}}
//	branch, err := cont.Natural(sys, dynamo.State{1}, params)
//
// # Errors
//
// All failures unwrap to one of the sentinel errors in this package, so
// callers can use errors.Is regardless of the layer that produced them.
package dynamo
