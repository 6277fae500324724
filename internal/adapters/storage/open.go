package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Store is a key-value store that can also report its health.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
}

// nopCloser adapts stores that hold no resources.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg.Driver.
// The returned closer must be closed on shutdown.
func Open(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (Store, io.Closer, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return NewMemory(), nopCloser{}, nil

	case config.StorageDriverFile:
		f, err := NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, nopCloser{}, nil

	case config.StorageDriverSQLite:
		s, err := OpenSQLite(ctx, cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
