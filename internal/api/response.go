package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/api/middleware"
	"resumeHub/internal/errcode"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not signed in"})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }

// statusOf 将错误码映射为 HTTP 状态码。
func statusOf(err error) int {
	switch errcode.CodeOf(err) {
	case errcode.Unauthenticated:
		return http.StatusUnauthorized
	case errcode.Validation:
		return http.StatusBadRequest
	case errcode.ResourceMissing:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError 以 {"error": message} 返回错误。
// 服务端错误会记录完整原因。
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFromContext(c).Error("request failed", zap.Error(err))
		_ = c.Error(err)
	}
	Error(c, status, errcode.MessageOf(err))
}

// subjectOrAbort 读取已校验的用户 ID，未经 AuthMiddleware 的路由直接返回 401。
func subjectOrAbort(c *gin.Context) (string, bool) {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return "", false
	}
	return subject, true
}
