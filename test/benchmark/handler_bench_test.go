package benchmark

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r
	return c
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupStore returns a loaded in-memory store holding the seed plus extra
// generated quotes.
func setupStore(b *testing.B, extra int) *app.QuoteStore {
	b.Helper()

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Storage: storage.NewMemory(),
		Metrics: app.NewMetrics(prometheus.NewRegistry()),
		Logger:  discardLogger(),
	})

	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		b.Fatal(err)
	}
	for i := range extra {
		category := "Bench"
		if i%2 == 0 {
			category = domain.DefaultCategory
		}
		if _, err := store.Add(ctx, "generated quote", category); err != nil {
			b.Fatal(err)
		}
	}

	return store
}

// setupHealthHandler creates a HealthHandler with a minimal registry for benchmarking.
func setupHealthHandler(registry ports.HealthRegistry) *handlers.HealthHandler {
	return handlers.NewHealthHandler(handlers.HealthHandlerConfig{
		Registry:  registry,
		BuildInfo: handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"),
		Gatherer:  prometheus.NewRegistry(),
	})
}

// BenchmarkLivenessHandler measures the liveness probe, which must stay cheap.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := setupHealthHandler(ports.NewHealthRegistry())
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Liveness(c)
	}
}

// BenchmarkReadinessHandler_WithStorage runs readiness against the storage check.
func BenchmarkReadinessHandler_WithStorage(b *testing.B) {
	registry := ports.NewHealthRegistry()
	if err := registry.Register(storage.NewMemory()); err != nil {
		b.Fatal(err)
	}

	handler := setupHealthHandler(registry)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Readiness(c)
	}
}

func BenchmarkQuoteStore_PickRandom(b *testing.B) {
	for _, tc := range []struct {
		name     string
		category string
	}{
		{name: "all", category: domain.AllCategories},
		{name: "filtered", category: "Bench"},
	} {
		b.Run(tc.name, func(b *testing.B) {
			store := setupStore(b, 1000)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := store.PickRandom(ctx, tc.category); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkQuoteStore_Add includes the JSON write to the memory store.
func BenchmarkQuoteStore_Add(b *testing.B) {
	store := setupStore(b, 0)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := store.Add(ctx, "benchmark quote", "Bench"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQuoteHandler_RandomQuote(b *testing.B) {
	handler := handlers.NewQuoteHandler(setupStore(b, 100), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random?category=Bench", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.RandomQuote(c)
	}
}

func BenchmarkQuoteHandler_ListQuotes(b *testing.B) {
	handler := handlers.NewQuoteHandler(setupStore(b, 100), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.ListQuotes(c)
	}
}

// BenchmarkViewHandler_Index renders the full page template.
func BenchmarkViewHandler_Index(b *testing.B) {
	handler := handlers.NewViewHandler(setupStore(b, 100), nil)
	req := httptest.NewRequest(http.MethodGet, "/?category=Bench", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Index(c)
	}
}

// BenchmarkRouter_Full measures a random pick through the whole middleware chain.
func BenchmarkRouter_Full(b *testing.B) {
	store := setupStore(b, 100)

	router := gin.New()
	httpadapter.SetupRouter(router, httpadapter.RouterConfig{
		ServiceName:   "quotebook-bench",
		HealthHandler: setupHealthHandler(ports.NewHealthRegistry()),
		QuoteHandler:  handlers.NewQuoteHandler(store, nil),
		ViewHandler:   handlers.NewViewHandler(store, nil),
		Timeout:       httpadapter.DefaultRequestTimeout,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
