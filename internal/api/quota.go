package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/api/middleware"
)

// DailyQuota 限制用户每个 UTC 自然日调用某路由的次数。
// counter 为 nil 或 limit 非正时不限制；计数失败时放行。
func DailyQuota(counter RateCounter, kind string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}
		subject, ok := subjectOrAbort(c)
		if !ok {
			return
		}

		key := "quota:" + kind + ":" + subject + ":" + time.Now().UTC().Format("20060102")
		count, err := incrWithTTL(c.Request.Context(), counter, key, 24*time.Hour)
		if err != nil {
			middleware.LoggerFromContext(c).Warn("quota counter unavailable",
				zap.String("kind", kind),
				zap.Error(err),
			)
			count = 0
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "daily " + kind + " limit reached"})
			return
		}
		c.Next()
	}
}
