package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiter blocks a client IP once it has accumulated Max counted requests
// under a scope. Every counted request pushes the window expiry out again.
type RateLimiter struct {
	Redis  *redis.Client
	Max    int
	Window time.Duration
}

// NewRateLimiter panics on a nil client or non-positive limits, which are
// programming errors caught at startup.
func NewRateLimiter(rdb *redis.Client, maxRequests int, window time.Duration) *RateLimiter {
	if rdb == nil {
		panic("Redis client cannot be nil for RateLimiter")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimiter")
	}
	if window <= 0 {
		panic("window must be positive for RateLimiter")
	}
	return &RateLimiter{Redis: rdb, Max: maxRequests, Window: window}
}

// FailedAccess counts requests answered with 403.
func FailedAccess(c *gin.Context) bool {
	return c.Writer.Status() == http.StatusForbidden
}

// Limit returns a middleware for scope. counts decides after the handler ran
// whether the request is added to the client's tally; nil counts every request.
// Redis failures let the request through.
func (l *RateLimiter) Limit(scope string, counts func(c *gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitKeyPrefix + scope + ":" + c.ClientIP()
		ctx := c.Request.Context()

		current, err := l.Redis.Get(ctx, key).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("scope", scope).Error("RateLimit: Redis read failed, allowing request")
			c.Next()
			return
		}
		if current >= int64(l.Max) {
			logrus.WithFields(logrus.Fields{
				"scope":     scope,
				"client_ip": c.ClientIP(),
				"count":     current,
			}).Warn("Rate limit exceeded")
			if ttl, err := l.Redis.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.Header("Retry-After", formatSeconds(ttl))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}

		c.Next()

		if counts != nil && !counts(c) {
			return
		}
		pipe := l.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).WithField("scope", scope).Error("RateLimit: Redis pipeline failed")
		}
	}
}

func formatSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10)
}
