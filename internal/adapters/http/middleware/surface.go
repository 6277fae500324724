package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// Surfaces tag which presentation a request came through.
const (
	SurfaceWeb = "web"
	SurfaceAPI = "api"
)

// Surface tags the request's context logger with surface.
func Surface(surface string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithSurface(c.Request.Context(), surface))
		c.Next()
	}
}
