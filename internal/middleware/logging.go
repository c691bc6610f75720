package middleware

import (
	"idea-review-platform/internal/logger"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request with method, path, status, and
// latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Log.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
