package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// attaches a request-scoped logger and logs one line per request
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(requestIDHeader, requestID)
		c.Set("request_id", requestID)

		reqLogger := defaultLogger.With(
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		args := []any{
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		if userID := c.GetString("user_id"); userID != "" {
			args = append(args, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			reqLogger.Error("request completed", args...)
		case c.Writer.Status() >= 400:
			reqLogger.Warn("request completed", args...)
		default:
			reqLogger.Info("request completed", args...)
		}
	}
}
