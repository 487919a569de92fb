package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for continuation operations.
var (
	// ErrConvergenceFailed indicates Newton iteration exhausted its budget.
	ErrConvergenceFailed = errors.New("dynamo: newton iteration did not converge")

	// ErrSingularJacobian indicates a pivot below the singularity threshold.
	ErrSingularJacobian = errors.New("dynamo: singular jacobian")

	// ErrStepTooSmall indicates the arclength step fell below its minimum.
	ErrStepTooSmall = errors.New("dynamo: continuation step below minimum")

	// ErrInvalidParameter indicates misuse of an operation or bad configuration.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ConvergenceError reports the iteration budget that was exhausted.
type ConvergenceError struct {
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations (residual %.3e)", ErrConvergenceFailed, e.Iterations, e.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergenceFailed }

// StepError reports the step size that underflowed ds_min.
type StepError struct {
	Ds        float64
	Parameter float64
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%v: ds=%.3e at p=%.6g", ErrStepTooSmall, e.Ds, e.Parameter)
}

func (e *StepError) Unwrap() error { return ErrStepTooSmall }

// ContinuationError wraps an error with the position on the branch where
// it occurred.
type ContinuationError struct {
	Step      int
	Parameter float64
	State     State
	Wrapped   error
}

func (e *ContinuationError) Error() string {
	return fmt.Sprintf("step %d (p=%.6g): %v", e.Step, e.Parameter, e.Wrapped)
}

func (e *ContinuationError) Unwrap() error {
	return e.Wrapped
}
