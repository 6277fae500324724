// Package storage provides ports.KeyValueStore adapters for persisting the
// quote collection: an in-memory map, a directory of JSON files, and SQLite.
package storage

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Memory is a process-local key-value store. Values are lost on exit.
// It is used for the "memory" storage driver and throughout the tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get implements ports.KeyValueStore.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, domain.NewNotFoundError("storage key", key)
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set implements ports.KeyValueStore.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = v

	return nil
}

// Name implements ports.HealthChecker.
func (m *Memory) Name() string {
	return "storage"
}

// Check implements ports.HealthChecker. Memory is always available.
func (m *Memory) Check(ctx context.Context) error {
	return ctx.Err()
}
