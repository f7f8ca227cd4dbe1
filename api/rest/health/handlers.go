package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/logger"
)

// Handler godoc
// @Summary Health check
// @Description Reports the server status and whether each backing store answers a ping.
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(checks map[string]Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Warn("health check failed", "dependency", name, "error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}

			results[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
		}

		c.JSON(status, Response{
			Status:  state,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
