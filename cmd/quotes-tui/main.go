// Package main runs the quote widget in a terminal against the configured storage.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/adapters/tui"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The terminal owns stdout, so logs only go to the rolling file.
	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  "json",
		Service: cfg.App.Name + "-tui",
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, io.Discard)
	logging.SetDefault(logger)

	kv, closer, err := storage.Open(ctx, &cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("storage close error", slog.Any("error", closeErr))
		}
	}()

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Storage: kv,
		Key:     cfg.Storage.Key,
		Logger:  logger,
	})

	if _, err := store.Load(ctx); err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	return tui.Run(ctx, store, logger)
}
