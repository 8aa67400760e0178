package middleware

import (
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/logging"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/backend"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID ensures every request has a stable request ID.
//   - Reads X-Request-Id if present, otherwise generates a uuid
//   - Stores it in the gin context and in the request context, where
//     outbound backend calls pick it up
//   - Echoes it back in the response header
//   - Writes one access log line per request
func RequestID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		ctx := logging.WithRequestID(c.Request.Context(), rid)
		ctx = backend.WithRequestID(ctx, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// GetRequestID returns the id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
