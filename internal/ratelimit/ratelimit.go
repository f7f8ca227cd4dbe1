package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/studyhall/server/internal/errors"
	"codeberg.org/studyhall/server/internal/logger"
)

const storePrefix = "studyhall:ratelimit"

// builds a per-IP limiter middleware from a ulule rate string such as "200-M".
// When client is nil counters live in process memory.
func Middleware(formatted string, client *redis.Client) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", formatted, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   storePrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: storePrefix})
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "rate limit exceeded, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open, quotas are still enforced by the ledger
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
			c.Next()
		}),
	), nil
}
