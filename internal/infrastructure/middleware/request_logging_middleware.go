package middleware

import (
	"time"

	"livecast/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs every request with its trace context
// attached once the handler chain finishes.
func RequestLoggingMiddleware(contextLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		contextLogger.LogRequest(
			c.Request.Context(),
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
