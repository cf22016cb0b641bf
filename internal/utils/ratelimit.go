package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRateLimiter caps the number of issues a single session may submit
// per day. Counters live in redis with a 24h TTL set on first increment.
func IssueRateLimiter(rdb *redis.Client, keyPrefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, _ := c.Get("user_id")
		userID, ok := userIDVal.(string)
		if !ok || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id missing"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		userKey := keyPrefix + ":" + userID

		count, err := rdb.Incr(ctx, userKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		if count == 1 {
			if err := rdb.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := rdb.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
