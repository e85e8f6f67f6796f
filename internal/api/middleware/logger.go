package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const zapLoggerKey = "zapLogger"

// ZapLoggerMiddleware 将 zap 集成到 Gin，注入带 Correlation ID 的请求级 logger，
// 并在请求结束时输出一条访问日志。
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestLogger := logger.With(
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Set(zapLoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if subject, ok := SubjectFromContext(c); ok {
			fields = append(fields, zap.String("clerk_id", subject))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			requestLogger.Error("request completed", fields...)
		case status >= 400:
			requestLogger.Warn("request completed", fields...)
		default:
			requestLogger.Info("request completed", fields...)
		}
	}
}

// LoggerFromContext 返回上下文中的 zap.Logger，不存在时返回 no-op logger。
func LoggerFromContext(c *gin.Context) *zap.Logger {
	if value, ok := c.Get(zapLoggerKey); ok {
		if logger, ok := value.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.NewNop()
}

// WithLogger 直接设置请求级 logger，无需经过 ZapLoggerMiddleware。
func WithLogger(c *gin.Context, logger *zap.Logger) {
	c.Set(zapLoggerKey, logger)
}
