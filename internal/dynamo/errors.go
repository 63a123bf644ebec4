package dynamo

import "errors"

var (
	// ErrInvalidState is reported when a state vector picks up NaN or Inf.
	ErrInvalidState = errors.New("dynamo: state diverged")

	// ErrParameterBounds is wrapped by every constructor or setter that
	// rejects a value.
	ErrParameterBounds = errors.New("dynamo: parameter out of bounds")

	ErrUnknownParameter = errors.New("dynamo: unknown parameter")
)
