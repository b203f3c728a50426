package http

import (
	"context"
	"strconv"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/config"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// Limiter decides whether a key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimiter throttles requests per client IP using a Redis-backed GCRA limiter.
// Redis failures let the request through.
type RateLimiter struct {
	limiter Limiter
	limit   redis_rate.Limit
	prefix  string
	logger  *zap.Logger
}

// NewRateLimiter builds a limiter for the given Redis client. A nil client or a
// disabled config yields a limiter that admits everything.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, prefix string, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		limit:  PerMinute(cfg.PerMinute, cfg.Burst),
		prefix: prefix,
		logger: logger,
	}
	if cfg.Enabled && client != nil {
		rl.limiter = redis_rate.NewLimiter(client)
	}
	return rl
}

// PerMinute builds a per-minute limit.
func PerMinute(rate, burst int) redis_rate.Limit {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

// Handler returns the fiber middleware.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.limiter == nil {
			return c.Next()
		}

		key := "ratelimit:" + rl.prefix + ":ip:" + c.IP()
		res, err := rl.limiter.Allow(c.UserContext(), key, rl.limit)
		if err != nil {
			rl.logger.Warn("rate limiter error, failing open", zap.String("key", key), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return apperrors.NewRateLimited(
				"Too many requests. Retry after "+strconv.Itoa(retryAfter)+" seconds.",
				map[string]any{"retryAfter": retryAfter},
			)
		}
		return c.Next()
	}
}
