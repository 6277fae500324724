// Package main is the entry point for the quotebook web service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load .env (if any) and determine the profile
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Open storage and load the collection
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
		Metrics: app.NewMetrics(prometheus.DefaultRegisterer),
		Logger:  logger,
	})

	quotes, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	logger.Info("quotes loaded", slog.Int("count", len(quotes)))

	// 6. Health registry
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(kv); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	// 7. Remote import (optional)
	importer, err := newImporter(cfg, store, healthRegistry, logger)
	if err != nil {
		return err
	}

	// 8. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(handlers.HealthHandlerConfig{
		Registry:  healthRegistry,
		BuildInfo: buildInfo,
		Snapshot:  store.Snapshot,
	})
	quoteHandler := handlers.NewQuoteHandler(store, importer)
	viewHandler := handlers.NewViewHandler(store, importer)

	// 9. Create HTTP server and routes
	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName:   cfg.Telemetry.ServiceName,
		HealthHandler: healthHandler,
		QuoteHandler:  quoteHandler,
		ViewHandler:   viewHandler,
		Timeout:       http.DefaultRequestTimeout,
	})

	// 10. Start server (non-blocking)
	serverErr := server.Start()

	// 11. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newImporter wires the remote quote client when services.quote is enabled.
// It returns a nil importer otherwise, which hides the import routes.
func newImporter(cfg *config.Config, store *app.QuoteStore, registry ports.HealthRegistry, logger *slog.Logger) (*app.Importer, error) {
	svc := cfg.Services.Quote
	if !svc.Enabled {
		return nil, nil
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: svc.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quote HTTP client: %w", err)
	}

	quoteClient := acl.NewQuoteClient(acl.QuoteClientConfig{
		Client:      httpClient,
		ServiceName: svc.Name,
		Logger:      logger,
	})

	if err := registry.Register(quoteClient); err != nil {
		return nil, fmt.Errorf("registering quote client health check: %w", err)
	}

	logger.Info("remote quote import enabled", slog.String("base_url", svc.BaseURL))

	return app.NewImporter(app.ImporterConfig{
		Source: quoteClient,
		Store:  store,
		Logger: logger,
	}), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
