//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// service is the quote service running in-process on file storage.
type service struct {
	store  *app.QuoteStore
	server *httptest.Server
	client *http.Client
}

// startService loads the collection stored under dir and serves the full
// router. source may be nil to leave import disabled.
func startService(ctx context.Context, dir string, source ports.QuoteSource) (*service, error) {
	kv, err := storage.NewFile(dir)
	if err != nil {
		return nil, err
	}

	logger := discardLogger()
	reg := prometheus.NewRegistry()

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Storage: kv,
		Metrics: app.NewMetrics(reg),
		Logger:  logger,
	})
	if _, err := store.Load(ctx); err != nil {
		return nil, err
	}

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(kv); err != nil {
		return nil, err
	}

	var importer *app.Importer
	if source != nil {
		importer = app.NewImporter(app.ImporterConfig{Source: source, Store: store, Logger: logger})
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		ServiceName: "quotebook-integration",
		HealthHandler: handlers.NewHealthHandler(handlers.HealthHandlerConfig{
			Registry:  healthRegistry,
			BuildInfo: handlers.NewBuildInfo("test", "test", "test"),
			Snapshot:  store.Snapshot,
			Gatherer:  reg,
		}),
		QuoteHandler: handlers.NewQuoteHandler(store, importer),
		ViewHandler:  handlers.NewViewHandler(store, importer),
		Timeout:      httpadapter.DefaultRequestTimeout,
	})

	return &service{
		store:  store,
		server: httptest.NewServer(engine),
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *service) close() {
	s.client.CloseIdleConnections()
	s.server.Close()
}

// do sends a request with an optional JSON body and returns status and body.
func (s *service) do(ctx context.Context, method, path, body string) (int, []byte, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.server.URL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading body: %w", err)
	}

	return resp.StatusCode, data, nil
}

func (s *service) list(ctx context.Context) (dto.QuoteListResponse, error) {
	var out dto.QuoteListResponse

	status, body, err := s.do(ctx, http.MethodGet, "/api/v1/quotes", "")
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, fmt.Errorf("list quotes: status %d: %s", status, body)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decoding quotes: %w", err)
	}
	return out, nil
}

func addQuoteBody(text, category string) string {
	raw, _ := json.Marshal(dto.AddQuoteRequest{Text: text, Category: category})
	return string(raw)
}
