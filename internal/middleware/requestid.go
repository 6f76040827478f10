package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"craftmarket/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID honours an incoming X-Request-ID or generates one, stores it on
// the request context and logs the request once it completes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		logging.FromContext(c.Request.Context()).Info("request",
			slog.String("method", c.Request.Method),
			slog.String(logging.KeyRoute, c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
