// Package distance resolves the driving distance and duration of a trip.
// A routing provider is preferred; a terrain-adjusted great-circle estimate
// is used whenever the provider cannot answer.
package distance

import (
	"errors"
)

var (
	// ErrInsufficientInput indicates the request has neither a supplied distance nor a coordinate pair.
	ErrInsufficientInput = errors.New("insufficient input: coordinates or a distance are required")

	// ErrCoincidentEndpoints indicates origin and destination are the same point.
	ErrCoincidentEndpoints = errors.New("origin and destination coincide")

	// ErrProviderNotConfigured indicates no routing provider was wired in.
	ErrProviderNotConfigured = errors.New("routing provider not configured")
)

// ProviderError is a failed routing provider call. The Resolver absorbs it and falls back.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return "routing provider: " + e.Err.Error()
	}
	return "routing provider " + e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
