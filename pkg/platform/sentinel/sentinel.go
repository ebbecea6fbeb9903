// Package sentinel defines shared sentinel errors for store and
// infrastructure facts. Services translate these into coded domain errors at
// the boundary; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound signals an absent entry.
	ErrNotFound = errors.New("not found")
	// ErrExpired signals an entry past its validity window.
	ErrExpired = errors.New("expired")
	// ErrInFlight signals an operation already running for the same key.
	ErrInFlight = errors.New("already in flight")
	// ErrUnavailable signals a backing service that cannot be reached.
	ErrUnavailable = errors.New("unavailable")
)
