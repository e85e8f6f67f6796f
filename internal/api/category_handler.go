package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeHub/internal/resume"
)

// CategoryHandler 负责分类的增删改查及分类下的简历列表。
type CategoryHandler struct {
	manager *resume.Manager
}

func NewCategoryHandler(manager *resume.Manager) *CategoryHandler {
	return &CategoryHandler{manager: manager}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	categories, err := h.manager.ListCategories(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	category, err := h.manager.GetCategory(c.Request.Context(), subject, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	category, err := h.manager.CreateCategory(c.Request.Context(), subject, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	category, err := h.manager.UpdateCategory(c.Request.Context(), subject, c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	if err := h.manager.DeleteCategory(c.Request.Context(), subject, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// ListResumes 除数字 ID 外还接受 "all" 与 "null"。
func (h *CategoryHandler) ListResumes(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	resumes, err := h.manager.ListResumesByCategory(c.Request.Context(), subject, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumes": resumes})
}
