// Package analysis checks continuation results against direct simulation.
//
// Continuation classifies a point from the eigenvalues of its Jacobian.
// [Probe] confirms that classification dynamically: it perturbs the
// equilibrium along each coordinate direction, integrates the perturbed
// state with RK4 and measures how fast the perturbation grows or decays.
// When the perturbation oscillates, [DominantPeriod] estimates its period
// from the power spectrum of the deviation.
//
//	res, err := analysis.Probe(sys, pt.State, pt.Param, analysis.DefaultProbeConfig())
//	if err == nil && res.Stable != pt.Stable {
//	    // eigenvalue classification and simulation disagree
//	}
package analysis
