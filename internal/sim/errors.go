package sim

import (
	"errors"
	"fmt"
)

// Domain errors for run orchestration.
var (
	// ErrInvalidConfig indicates run parameters that cannot start.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// PhaseError wraps a compute-phase failure with the phase and iteration
// it occurred in.
type PhaseError struct {
	Phase   Phase
	Iter    int
	Wrapped error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed at iteration %d: %v", e.Phase, e.Iter, e.Wrapped)
}

func (e *PhaseError) Unwrap() error {
	return e.Wrapped
}
