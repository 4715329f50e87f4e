package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotencePrefix = "kaarshe:idempotence:"
	idempotenceTTL    = 60 * time.Second

	maxIdempotenceKeyLen = 128
)

// Idempotence rejects a repeated POST/PUT carrying the same x-idempotence key
// while the first is in flight or for a minute after it succeeded. Requests
// without the header pass through, so repeating an unsubscribe stays a
// success. A nil client disables it.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(idempotenceHeader))
		if key == "" || len(key) > maxIdempotenceKeyLen {
			c.Next()
			return
		}

		redisKey := idempotencePrefix + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()
		raw := rdb.Raw()

		claimed, err := raw.SetNX(ctx, redisKey, "0", idempotenceTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !claimed {
			msg := "Identical request already succeeded; retry after 60 seconds"
			if val, _ := rdb.Get(ctx, redisKey); val == "0" {
				msg = "Identical request is still being processed"
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": false, "error": msg})
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			raw.Set(ctx, redisKey, "1", goredis.KeepTTL)
		} else {
			raw.Del(ctx, redisKey)
		}
	}
}
