package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/api/middleware"
	"resumeHub/internal/config"
	"resumeHub/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎，挂载公共中间件、健康检查、指标端点与前端回落。
// API 路由由 RegisterRoutes 注册。
func NewRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.ZapLoggerMiddleware(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			middleware.LoggerFromContext(c).Error("panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.API.InternalSecret != "" {
		router.GET("/metrics", middleware.InternalSecretMiddleware(cfg.API.InternalSecret), metrics.Handler())
	} else {
		router.GET("/metrics", metrics.Handler())
	}

	router.NoRoute(SPAHandler(cfg.API.StaticDir))

	return router
}
