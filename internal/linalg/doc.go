// Package linalg provides the dense linear algebra used by the continuation
// engine: Gaussian elimination with partial pivoting, modified Gram-Schmidt
// QR decomposition and shifted QR iteration for eigenvalues.
//
// Matrices are row-major [Matrix] values. Every routine works on copies; no
// factorization is cached between calls.
//
//	x, err := linalg.Solve(a, b)
//	if errors.Is(err, dynamo.ErrSingularJacobian) {
//	    // pivot below SingularPivot
//	}
//
//	eigs := linalg.Eigenvalues(a) // one complex128 per row, unordered
package linalg
