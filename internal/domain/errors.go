package domain

import "fmt"

// InvalidParametersError rejects malformed caller input before a simulation
// starts. It maps to a client error at the API boundary.
type InvalidParametersError struct {
	Reason string
}

func (e InvalidParametersError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", e.Reason)
}

// InvalidUnderlyingError indicates an empty or non-positive price state. This
// is a contract violation and aborts the run.
type InvalidUnderlyingError struct {
	Symbol string
	Reason string
}

func (e InvalidUnderlyingError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("invalid underlying: %s", e.Reason)
	}
	return fmt.Sprintf("invalid underlying %s: %s", e.Symbol, e.Reason)
}

// ShapeMismatchError indicates the simulated price set and the barrier
// schedule do not cover the same underlyings.
type ShapeMismatchError struct {
	Reason string
}

func (e ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s", e.Reason)
}

// PriceUnavailableError is returned by the price source when no quote could
// be found for a symbol. Fatal for the run - we never simulate with missing
// underlyings.
type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e PriceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no price available for %s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("no price available for %s", e.Symbol)
}

func (e PriceUnavailableError) Unwrap() error {
	return e.Err
}
