package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lanscape/internal/pkg/logger"
)

// accessLogMiddleware logs one line per request through internal/pkg/logger,
// grounded on the teacher's LoggingMiddleware but trimmed to what LANscape
// actually needs: no request/response body capture, no header dump.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.LogAccessRequest(c, start, requestID)
	}
}
