// Package cont traces equilibrium branches of F(x, p) = 0 as the parameter p
// varies.
//
// Two drivers are provided. Natural steps the parameter and re-solves for the
// state at each value; it stops at folds where ∂F/∂x becomes singular.
// Arclength parametrizes the branch by arclength in (x, p) and passes
// through folds. Both classify the stability of every accepted point from the
// eigenvalues of ∂F/∂x and tag bifurcations by comparing eigenvalues of
// consecutive points. SwitchBranch restarts Arclength from a perturbed
// bifurcation point.
//
// Systems without an analytic Jacobian or parameter derivative get a central
// difference approximation from the drivers.
package cont
