package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests, including a remote import.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// ServiceName names the server spans.
	ServiceName string

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	ViewHandler   *handlers.ViewHandler

	// Timeout is the /api/v1 request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle transaction correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips /-/ and /static/)
//
// Route groups:
//   - /-/ (internal): probes, metrics, quotes snapshot
//   - /api/v1/: the JSON API, with a request timeout
//   - / : the HTML page and its form targets
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.QuoteHandler != nil {
		apiV1 := engine.Group("/api/v1", middleware.Surface(middleware.SurfaceAPI))
		if cfg.Timeout > 0 {
			apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
		}
		cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
	}

	if cfg.ViewHandler != nil {
		web := engine.Group("", middleware.Surface(middleware.SurfaceWeb))
		cfg.ViewHandler.RegisterViewRoutes(web)
	}
}

// SetupMinimalRouter sets up a router with just the internal endpoints.
func SetupMinimalRouter(engine *gin.Engine, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
