// Package acl translates remote quote APIs into domain quotes so nothing
// upstream leaks past the adapter boundary.
package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const (
	randomPath = "/random"

	// maxQuoteBody bounds a single quote response.
	maxQuoteBody = 64 << 10
)

// QuoteClientConfig configures a QuoteClient.
type QuoteClientConfig struct {
	// Client must have its BaseURL pointed at the quote API.
	Client *clients.Client

	// ServiceName labels errors and the health check. Defaults to "quote-service".
	ServiceName string

	Logger *slog.Logger
}

// QuoteClient fetches random quotes from a quotable-compatible API.
// It implements ports.QuoteSource and ports.HealthChecker.
type QuoteClient struct {
	client      *clients.Client
	serviceName string
	logger      *slog.Logger
}

// NewQuoteClient panics if cfg.Client is nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	name := cfg.ServiceName
	if name == "" {
		name = "quote-service"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteClient{
		client:      cfg.Client,
		serviceName: name,
		logger:      logger.With(slog.String("component", "acl.QuoteClient")),
	}
}

// RandomQuote fetches one quote. Transport failures, error statuses and
// unreadable bodies all surface as domain.UnavailableError.
func (c *QuoteClient) RandomQuote(ctx context.Context) (domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", randomPath))

	resp, err := c.client.Get(ctx, randomPath)
	if err != nil {
		return domain.Quote{}, MapHTTPError(nil, err, c.serviceName, "random quote")
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", randomPath),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		mapped := MapHTTPError(resp, nil, c.serviceName, "random quote")
		c.logger.WarnContext(ctx, "quote API error",
			slog.Int("status_code", resp.StatusCode),
			slog.Any("error", mapped),
		)
		return domain.Quote{}, mapped
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		return domain.Quote{}, domain.NewUnavailableError(c.serviceName, fmt.Sprintf("reading response: %v", err))
	}

	ext, err := decodeRandom(body)
	if err != nil {
		return domain.Quote{}, domain.NewUnavailableError(c.serviceName, err.Error())
	}

	q := toDomain(ext)
	c.logger.Log(ctx, logging.LevelTrace, "translated upstream quote",
		slog.String("category", q.Category),
		slog.String("author", ext.Author))

	return q, nil
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.serviceName
}

// Check reports the API healthy when /random answers 200.
func (c *QuoteClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, randomPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	return nil
}
