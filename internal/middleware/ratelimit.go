package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"linkup/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the limiter's Redis
// backend cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through unmetered.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

const limiterKeyPrefix = "linkup:rl"

// limiterBypassed reports whether per-route limits are suspended for the
// current APP_ENV, so local work and load tests are not throttled.
func limiterBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit counts a hit against resource/id and reports whether the
// caller is still within limit for the window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if limiterBypassed() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("rate limiter has no redis client")
	}

	key := fmt.Sprintf("%s:%s:%s", limiterKeyPrefix, resource, id)
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if hits == 1 {
		rdb.Expire(ctx, key, window)
	}
	return hits <= int64(limit), nil
}

// RateLimit enforces limit requests per window per caller, keyed by the
// authenticated user when present and by remote IP otherwise. Redis outages
// fail open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy, for
// routes where unmetered traffic is worse than rejected traffic.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := fmt.Sprintf("ip:%s", c.IP())
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limiter unavailable",
				slog.String("resource", resource),
				slog.Bool("fail_closed", policy == FailClosed),
				slog.String("error", err.Error()),
			)
			if policy == FailClosed {
				return models.Respond(c, fiber.StatusServiceUnavailable, "Rate limiter unavailable", nil)
			}
			return c.Next()
		}

		if !allowed {
			return models.Respond(c, fiber.StatusTooManyRequests, "Too many requests", nil)
		}
		return c.Next()
	}
}
