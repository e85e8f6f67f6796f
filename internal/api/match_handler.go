package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/api/middleware"
	"resumeHub/internal/match"
	"resumeHub/internal/resume"
)

// Analyzer 比对已存储的简历与职位描述。
type Analyzer interface {
	Analyze(ctx context.Context, resumeLink, jobDescription string) (match.Analysis, error)
}

// MatchHandler 负责简历与职位描述的比对及历史记录。
type MatchHandler struct {
	manager  *resume.Manager
	analyzer Analyzer
	model    string
}

func NewMatchHandler(manager *resume.Manager, analyzer Analyzer, model string) *MatchHandler {
	return &MatchHandler{manager: manager, analyzer: analyzer, model: model}
}

type jobDescriptionRequest struct {
	ResumeLink     string `json:"resumeLink"`
	JobDescription string `json:"jobDescription"`
}

// CompareJobDescription 将 resumeLink 指向的简历与职位描述比对。
// 结果写入历史记录失败不影响响应。
func (h *MatchHandler) CompareJobDescription(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}

	var req jobDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	req.ResumeLink = strings.TrimSpace(req.ResumeLink)
	if req.ResumeLink == "" || strings.TrimSpace(req.JobDescription) == "" {
		BadRequest(c, "resumeLink and jobDescription are required")
		return
	}

	if err := h.manager.CheckResumeLink(subject, req.ResumeLink); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	analysis, err := h.analyzer.Analyze(ctx, req.ResumeLink, req.JobDescription)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.manager.RecordAnalysis(ctx, subject, resume.AnalysisRecord{
		ResumeLink:     req.ResumeLink,
		JobDescription: req.JobDescription,
		Result:         analysis.Summary,
		Model:          h.model,
		ResumeChars:    analysis.ResumeChars,
	}); err != nil {
		middleware.LoggerFromContext(c).Warn("store analysis history failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis.Summary})
}

func (h *MatchHandler) ListAnalyses(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	analyses, err := h.manager.ListAnalyses(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}
