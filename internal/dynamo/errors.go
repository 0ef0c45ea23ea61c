package dynamo

import (
	"errors"
	"fmt"
)

// ErrIntegrationFailed is the umbrella error for every solver failure.
var ErrIntegrationFailed = errors.New("dynamo: integration failed")

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = fmt.Errorf("%w: invalid state (NaN or Inf detected)", ErrIntegrationFailed)

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = fmt.Errorf("%w: adaptive timestep below minimum", ErrIntegrationFailed)

	// ErrTooManySteps indicates the step budget ran out before the last sample.
	ErrTooManySteps = fmt.Errorf("%w: step budget exhausted", ErrIntegrationFailed)

	// ErrStepRejected is returned by adaptive steppers when the local error
	// estimate exceeds the tolerance. The suggested dt is still valid.
	ErrStepRejected = errors.New("dynamo: step rejected")

	// ErrInvalidTimes indicates an empty or non-increasing sample sequence.
	ErrInvalidTimes = errors.New("dynamo: time samples must be non-empty and strictly increasing")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
