package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

// ConfirmRateLimit caps how often a single client may hit the sale
// confirmation endpoint. Counting is per IP over a one minute window.
func (r *RateLimiter) ConfirmRateLimit() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Check for bot patterns
		if r.isSuspiciousUserAgent(e.Request.UserAgent()) {
			return e.JSON(403, map[string]string{
				"error": "Access denied",
			})
		}

		if !r.allow(e.Request.Context(), e.RealIP()) {
			return e.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return e.Next()
	}
}

func (r *RateLimiter) allow(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("ratelimit:confirm:%s", ip)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail open, a Redis hiccup must not block sales.
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, time.Minute)
	}
	return count <= int64(r.perMinute)
}

func (r *RateLimiter) isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
