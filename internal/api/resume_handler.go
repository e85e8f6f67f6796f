package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeHub/internal/api/middleware"
	"resumeHub/internal/resume"
	"resumeHub/internal/scan"
)

// uploadField 是承载简历文件的 multipart 字段名。
const uploadField = "pdf"

// Scanner 在文件入库前进行检查。
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) error
}

// ResumeHandler 负责简历的上传、删除与移动。
type ResumeHandler struct {
	manager  *resume.Manager
	scanner  Scanner
	maxBytes int64
}

// NewResumeHandler 构造 ResumeHandler，scanner 可以为 nil。
func NewResumeHandler(manager *resume.Manager, scanner Scanner, maxBytes int64) *ResumeHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ResumeHandler{manager: manager, scanner: scanner, maxBytes: maxBytes}
}

// flexibleID 兼容以字符串、数字或 null 传入的分类 ID。
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = "null"
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type moveResumeRequest struct {
	CategoryID flexibleID `json:"categoryId"`
}

// UploadResume 保存 multipart 中的 "pdf" 文件，可选放入 categoryId 分类。
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	file, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		// 旧版前端依赖文件字段缺失或命名错误时返回 402。
		Error(c, http.StatusPaymentRequired, "no file part named pdf")
		return
	}
	if file.Size > h.maxBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	if h.scanner != nil {
		reader, err := file.Open()
		if err != nil {
			Internal(c, "failed to open file")
			return
		}
		err = h.scanner.Scan(ctx, reader)
		reader.Close()
		if errors.Is(err, scan.ErrInfected) {
			logger.Warn("upload rejected by virus scan", zap.String("filename", file.Filename), zap.Error(err))
			BadRequest(c, "malicious file detected")
			return
		}
		if err != nil {
			logger.Error("scan upload", zap.Error(err))
			Internal(c, "failed to scan file")
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	stored, err := h.manager.UploadResume(ctx, subject, resume.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        reader,
		CategoryID:  c.PostForm("categoryId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "file uploaded successfully",
		"resume":  stored,
	})
}

func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	if err := h.manager.DeleteResume(c.Request.Context(), subject, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resume deleted"})
}

// MoveResume 调整简历所属分类，categoryId 为 "null" 时移出分类。
func (h *ResumeHandler) MoveResume(c *gin.Context) {
	subject, ok := subjectOrAbort(c)
	if !ok {
		return
	}
	var req moveResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if err := h.manager.MoveResume(c.Request.Context(), subject, c.Param("id"), string(req.CategoryID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resume moved"})
}
