package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Importer adds quotes fetched from a remote QuoteSource to the store.
type Importer struct {
	source ports.QuoteSource
	store  *QuoteStore
	logger *slog.Logger
}

// ImporterConfig contains the importer's dependencies.
type ImporterConfig struct {
	Source ports.QuoteSource
	Store  *QuoteStore
	Logger *slog.Logger
}

// NewImporter creates an Importer. It panics if Source or Store is nil.
func NewImporter(cfg ImporterConfig) *Importer {
	if cfg.Source == nil {
		panic("app: NewImporter requires a QuoteSource")
	}
	if cfg.Store == nil {
		panic("app: NewImporter requires a QuoteStore")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		source: cfg.Source,
		store:  cfg.Store,
		logger: logger.With(slog.String("component", "app.Importer")),
	}
}

// Import fetches one remote quote and adds it like a user submission, so
// the usual trimming and category defaulting apply.
func (i *Importer) Import(ctx context.Context) (*AddResult, error) {
	i.logger.InfoContext(ctx, "importing remote quote")

	q, err := i.source.RandomQuote(ctx)
	if err != nil {
		i.store.metrics.imports.WithLabelValues(ImportResultError).Inc()
		i.logger.ErrorContext(ctx, "remote quote fetch failed", slog.Any("error", err))
		return nil, err
	}

	result, err := i.store.Add(ctx, q.Text, q.Category)
	if err != nil {
		i.store.metrics.imports.WithLabelValues(ImportResultError).Inc()
		i.logger.WarnContext(ctx, "remote quote rejected", slog.Any("error", err))
		return nil, err
	}

	i.store.metrics.imports.WithLabelValues(ImportResultOK).Inc()
	i.logger.InfoContext(ctx, "imported remote quote", slog.String("category", result.Category))

	return result, nil
}
