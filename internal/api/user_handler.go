package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeHub/internal/resume"
)

// UserHandler 负责用户资料与 onboarding 相关接口。
type UserHandler struct {
	manager *resume.Manager
}

func NewUserHandler(manager *resume.Manager) *UserHandler {
	return &UserHandler{manager: manager}
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GetUserID 返回已校验的用户 ID。
func (h *UserHandler) GetUserID(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": subject})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	user, err := h.manager.GetUser(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser 按需创建用户记录，并标记 onboarding 完成。
func (h *UserHandler) CreateUser(c *gin.Context) {
	h.ensureUser(c, "user created", "user already exists")
}

// CompleteOnboarding 与 CreateUser 语义相同，仅路由不同。
func (h *UserHandler) CompleteOnboarding(c *gin.Context) {
	h.ensureUser(c, "onboarding complete", "onboarding complete")
}

func (h *UserHandler) ensureUser(c *gin.Context, createdMsg, existingMsg string) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Name) == "" {
		// 旧版前端依赖缺字段时返回 405。
		Error(c, http.StatusMethodNotAllowed, "email and name are required")
		return
	}

	result, err := h.manager.EnsureUser(c.Request.Context(), subject, req.Email, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := existingMsg
	if result == resume.Created {
		msg = createdMsg
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}

	var req resume.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if err := h.manager.UpdateUser(c.Request.Context(), subject, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// DeleteUser 删除本地用户记录，身份服务中的账号保留。
func (h *UserHandler) DeleteUser(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	if err := h.manager.DeleteUser(c.Request.Context(), subject); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
