package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen 给活跃会话打时间戳，SetNX 节流避免每个请求都写
func TouchLastSeen(rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.Next()
			return
		}
		// SetNX + TTL：节流窗口内只记一次
		key := "phylab:lastseen:" + ck.Value
		_ = rdb.SetNX(c, key, time.Now().UTC().Format(time.RFC3339), throttle).Err()
		c.Next()
	}
}
