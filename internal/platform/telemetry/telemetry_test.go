package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProvider_ZeroValueShutdown(t *testing.T) {
	var p Provider
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestMiddleware_SetsTraceHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tp := sdktrace.NewTracerProvider()
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	r := gin.New()
	r.Use(TracingMiddleware("quotebook-test"), Middleware())
	r.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, w.Header().Get(TraceIDHeader), 32)
}

func TestMiddleware_NoSpanNoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(TraceIDHeader))
}

func TestTracer(t *testing.T) {
	assert.NotNil(t, Tracer("quotebook/test"))
}
