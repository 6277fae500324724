// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
)

// KeyValueStore is the synchronous key-value persistence the quote
// collection is written to. It plays the role a browser's local storage
// plays for a client-side widget: one opaque value per key.
//
// Implementations live in internal/adapters/storage.
type KeyValueStore interface {
	// Get returns the raw value stored under key.
	// Returns domain.ErrNotFound if the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}
