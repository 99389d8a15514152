package dynamo

import "errors"

// Domain errors for simulation and interaction operations.
var (
	// ErrInvalidState indicates a height or velocity array holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the field diverged past any sensible surface bound.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrMalformedInput indicates a control value that is not a finite number.
	ErrMalformedInput = errors.New("dynamo: malformed control input")

	// ErrUnknownParam indicates a parameter or control name the field does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrInvalidConfig indicates a session configuration that cannot build a field.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownPreset indicates a preset name missing from the preset table.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
