// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// BuildInfo contains build-time information injected with ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// SnapshotFunc returns a copy of the quote collection in insertion order.
type SnapshotFunc func() []domain.Quote

// HealthHandlerConfig configures a HealthHandler.
type HealthHandlerConfig struct {
	Registry  ports.HealthRegistry
	BuildInfo BuildInfo

	// Snapshot backs GET /-/quotes. The route is skipped when nil.
	Snapshot SnapshotFunc

	// Gatherer backs GET /-/metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// HealthHandler serves the internal /-/ endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	snapshot  SnapshotFunc
	gatherer  prometheus.Gatherer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthHandlerConfig) *HealthHandler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &HealthHandler{
		registry:  cfg.Registry,
		buildInfo: cfg.BuildInfo,
		snapshot:  cfg.Snapshot,
		gatherer:  gatherer,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles /-/live. It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
	})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles /-/ready: 200 when every registered check passes,
// 503 otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler handles /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// Quotes handles /-/quotes, a read-only dump of the collection for
// diagnostics.
func (h *HealthHandler) Quotes(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuoteListResponse(h.snapshot()))
}

// MetricsHandler exposes g in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RegisterHealthRoutes registers the internal routes on rg:
//   - GET /live
//   - GET /ready
//   - GET /build
//   - GET /metrics
//   - GET /quotes (with a snapshot func)
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler(h.gatherer)))
	if h.snapshot != nil {
		rg.GET("/quotes", h.Quotes)
	}
}

// RegisterHealthRoutesOnEngine registers the routes under /-.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
