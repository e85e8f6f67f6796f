package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/identity"
)

// SubjectKey 是上下文中保存 Clerk 用户 ID 的键。
const SubjectKey = "clerkID"

// RequestVerifier 校验请求携带的凭证。
type RequestVerifier interface {
	Verify(r *http.Request) identity.State
}

// AuthMiddleware 校验会话令牌并将用户 ID 注入上下文。
func AuthMiddleware(verifier RequestVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := verifier.Verify(c.Request)
		if !state.SignedIn {
			LoggerFromContext(c).Debug("request not authenticated", zap.String("reason", state.Reason))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not signed in"})
			return
		}
		if state.Subject == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user id not found in session"})
			return
		}

		c.Set(SubjectKey, state.Subject)
		c.Next()
	}
}

// SubjectFromContext 返回 AuthMiddleware 注入的用户 ID。
func SubjectFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(SubjectKey)
	if !ok {
		return "", false
	}
	subject, ok := value.(string)
	return subject, ok && subject != ""
}
