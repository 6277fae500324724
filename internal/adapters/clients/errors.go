// Package clients provides the resilient HTTP client used to reach remote
// quote services.
package clients

import "errors"

// Infrastructure failures. Adapters translate these into domain errors.
var (
	// ErrCircuitOpen means the breaker is rejecting calls to the downstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
