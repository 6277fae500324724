package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// DefaultLogSkipPrefixes are paths too noisy to log: probes, metrics and
// the static script.
var DefaultLogSkipPrefixes = []string{"/-/", "/static/"}

// Logging returns middleware that logs each request's completion with
// status, latency and size. Paths under skipPrefixes are not logged;
// with none given, DefaultLogSkipPrefixes apply.
func Logging(skipPrefixes ...string) gin.HandlerFunc {
	if len(skipPrefixes) == 0 {
		skipPrefixes = DefaultLogSkipPrefixes
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()
		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		ctxLogger := logging.FromContext(c.Request.Context())
		ctxLogger.Log(c.Request.Context(), logging.LevelTrace, "request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		// The surface middleware runs after this one, so re-read the logger.
		logging.FromContext(c.Request.Context()).Log(c.Request.Context(), level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
		)
	}
}
