package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors for the contract boundary. Categories, not type
// names — callers discriminate with errors.Is.
var (
	// ErrConfigError flags a malformed farm configuration: unknown layer
	// tag, inconsistent zone definitions, missing required field.
	ErrConfigError = errors.New("contract: invalid configuration")

	// ErrDeserializeError flags a missing top-level key or a per-layer
	// reconstruction failure in a serialized graph state.
	ErrDeserializeError = errors.New("contract: malformed serialized state")

	// ErrNumericError flags singular ridge regression or another numeric
	// precondition violation that is not reported as a status record.
	ErrNumericError = errors.New("contract: numeric precondition violated")

	// ErrNotCached flags a cache lookup for a farm id with no resident
	// graph.
	ErrNotCached = errors.New("contract: farm id not present in cache")
)

func contractErrorf(op string, err error) error {
	return fmt.Errorf("contract.%s: %w", op, err)
}
