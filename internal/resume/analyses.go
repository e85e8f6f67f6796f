package resume

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"gorm.io/datatypes"

	"resumeHub/internal/database"
	"resumeHub/internal/errcode"
)

const maxListedAnalyses = 50

// AnalysisRecord 是一次比对需要持久化的内容。
type AnalysisRecord struct {
	ResumeLink     string
	JobDescription string
	Result         string
	Model          string
	ResumeChars    int
}

// CheckResumeLink 只接受指向当前用户目录下文件的公开链接，服务端不会抓取任意 URL。
func (m *Manager) CheckResumeLink(subject, link string) error {
	invalid := errcode.Invalid("resumeLink must point to one of your uploaded resumes")
	prefix := m.files.PublicURL(objectKey(subject, ""))
	if subject == "" || !strings.HasPrefix(link, prefix) || len(link) == len(prefix) {
		return invalid
	}
	u, err := url.Parse(link)
	if err != nil || u.RawQuery != "" || u.Fragment != "" {
		return invalid
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment == "." || segment == ".." {
			return invalid
		}
	}
	return nil
}

// RecordAnalysis 将比对结果写入用户的历史记录。
func (m *Manager) RecordAnalysis(ctx context.Context, subject string, rec AnalysisRecord) (*database.Analysis, error) {
	meta, err := json.Marshal(map[string]any{
		"model":        rec.Model,
		"resume_chars": rec.ResumeChars,
	})
	if err != nil {
		return nil, errcode.Internal("encode analysis meta", err)
	}

	analysis := database.Analysis{
		ClerkID:        subject,
		ResumeLink:     rec.ResumeLink,
		JobDescription: rec.JobDescription,
		Result:         rec.Result,
		Meta:           datatypes.JSON(meta),
	}
	if err := m.repo.createAnalysis(ctx, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ListAnalyses 返回用户最近的比对记录。
func (m *Manager) ListAnalyses(ctx context.Context, subject string) ([]database.Analysis, error) {
	return m.repo.listAnalyses(ctx, subject, maxListedAnalyses)
}
