package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// RateLimit allows max requests per window for each client IP using fixed
// redis counters. A nil client disables it; redis errors fail open.
func RateLimit(rdb *redis.Client, max int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retryAfter := strconv.Itoa(int(window / time.Second))
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("kaarshe:rate_limit:%s:%d", ip, bucket)

		raw := rdb.Raw()
		count, err := raw.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			raw.PExpire(ctx, key, window+time.Second)
		}

		if count > int64(max) {
			logger.Warn("rate limited", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
