package resume

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"resumeHub/internal/database"
	"resumeHub/internal/errcode"
)

const (
	timestampLayout  = "20060102150405"
	maxNameAttempts  = 30
	defaultFileStem  = "resume"
	defaultMediaType = "application/pdf"

	// maxStoredNameRunes 对应 resumes.name 列长度；
	// maxStoredNameBytes 保证 "<subject>/<name>" 不超过 S3 对象键的 1024 字节上限。
	maxStoredNameRunes = 255
	maxStoredNameBytes = 768
	maxExtensionRunes  = 16
)

// storedName 在文件名与扩展名之间插入 UTC 时间戳。
// 过长的文件名会截断主干部分，保证记录与对象键都能写入。
func storedName(original string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(original), `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := path.Ext(base)
	if utf8.RuneCountInString(ext) > maxExtensionRunes {
		ext = ""
	}
	stem := strings.TrimSpace(strings.TrimSuffix(base, ext))
	suffix := "_" + at.UTC().Format(timestampLayout) + strings.ToLower(ext)
	stem = strings.TrimSpace(truncateName(stem, maxStoredNameRunes-utf8.RuneCountInString(suffix), maxStoredNameBytes-len(suffix)))
	if stem == "" {
		stem = defaultFileStem
	}
	return stem + suffix
}

// truncateName 按字符边界截断 s，最多保留 maxRunes 个字符且不超过 maxBytes 字节。
func truncateName(s string, maxRunes, maxBytes int) string {
	count := 0
	for i, r := range s {
		if count == maxRunes || i+utf8.RuneLen(r) > maxBytes {
			return s[:i]
		}
		count++
	}
	return s
}

func objectKey(subject, name string) string {
	return subject + "/" + name
}

// allocateName 寻找未被占用的对象键，每次冲突时间戳后移一秒。
func (m *Manager) allocateName(ctx context.Context, subject, original string) (string, string, error) {
	at := m.now()
	for i := 0; i < maxNameAttempts; i++ {
		name := storedName(original, at.Add(time.Duration(i)*time.Second))
		key := objectKey(subject, name)
		exists, err := m.files.ObjectExists(ctx, key)
		if err != nil {
			return "", "", errcode.Upstream("file store failure", err)
		}
		if !exists {
			return name, key, nil
		}
	}
	return "", "", errcode.Internal("could not allocate a unique file name", nil)
}

// resolveCategory 校验客户端传入的分类属于当前用户，返回 nil 表示未分类。
func (m *Manager) resolveCategory(ctx context.Context, subject, raw string) (*uint, error) {
	if isUncategorized(raw) {
		return nil, nil
	}
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return nil, errcode.Invalid("invalid category id")
	}
	category, err := m.repo.findCategory(ctx, subject, uint(id))
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

// ListResumesByCategory 列出某分类下的简历。
// 空值或 "all" 返回全部，"null" 返回未分类的简历。
func (m *Manager) ListResumesByCategory(ctx context.Context, subject, categoryID string) ([]database.Resume, error) {
	filter := resumeFilter{}
	raw := strings.ToLower(strings.TrimSpace(categoryID))
	switch raw {
	case "", AllCategoryID:
		filter.all = true
	case "null", "uncategorized":
		filter.uncategorized = true
	default:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, errcode.Invalid("invalid category id")
		}
		filter.categoryID = uint(id)
	}
	return m.repo.listResumes(ctx, subject, filter)
}

// UploadResume 以新文件名保存文件并写入记录。
//
// 上传对象与写库是两次独立调用，没有回滚：写库失败时对象会成为孤儿文件，
// 其对象键会记录到日志，可由 admin orphans 命令清理。
func (m *Manager) UploadResume(ctx context.Context, subject string, in UploadInput) (*database.Resume, error) {
	if in.Body == nil {
		return nil, errcode.Invalid("file is required")
	}

	categoryID, err := m.resolveCategory(ctx, subject, in.CategoryID)
	if err != nil {
		if errcode.Is(err, errcode.ResourceMissing) {
			return nil, errcode.Invalid("category does not belong to user")
		}
		return nil, err
	}

	name, key, err := m.allocateName(ctx, subject, in.Filename)
	if err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = defaultMediaType
	}
	if _, err := m.files.UploadFile(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, errcode.Upstream("file upload failed", err)
	}

	resume := database.Resume{
		ClerkID:    subject,
		CategoryID: categoryID,
		Name:       name,
		Link:       m.files.PublicURL(key),
		ObjectKey:  key,
		CreatedAt:  m.now(),
	}
	if err := m.repo.createResume(ctx, &resume); err != nil {
		m.logger.Error("resume row insert failed after upload, object orphaned",
			zap.String("clerk_id", subject),
			zap.String("object_key", key),
			zap.Error(err),
		)
		return nil, err
	}
	return &resume, nil
}

func parseResumeID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errcode.Invalid("invalid resume id")
	}
	return uint(id), nil
}

// DeleteResume 删除当前用户的简历。
// 文件删除失败只记录日志，只有删除记录失败才返回错误。
func (m *Manager) DeleteResume(ctx context.Context, subject, resumeID string) error {
	id, err := parseResumeID(resumeID)
	if err != nil {
		return err
	}
	resume, err := m.repo.findResume(ctx, subject, id)
	if err != nil {
		return err
	}

	key := resume.ObjectKey
	if key == "" {
		key = objectKey(subject, resume.Name)
	}
	if err := m.files.DeleteObject(ctx, key); err != nil {
		m.logger.Warn("delete stored resume file failed",
			zap.String("clerk_id", subject),
			zap.String("object_key", key),
			zap.Error(err),
		)
	}

	affected, err := m.repo.deleteResume(ctx, subject, id)
	if err != nil {
		return errcode.Internal("failed to delete resume", err)
	}
	if affected == 0 {
		return errcode.NotFound("resume not found")
	}
	return nil
}

// MoveResume 将简历移动到当前用户的分类，目标为 "null" 时移出分类。
func (m *Manager) MoveResume(ctx context.Context, subject, resumeID, targetCategoryID string) error {
	if strings.TrimSpace(targetCategoryID) == "" {
		return errcode.Invalid("categoryId is required")
	}
	id, err := parseResumeID(resumeID)
	if err != nil {
		return err
	}
	if _, err := m.repo.findResume(ctx, subject, id); err != nil {
		return err
	}
	categoryID, err := m.resolveCategory(ctx, subject, targetCategoryID)
	if err != nil {
		return err
	}
	return m.repo.moveResume(ctx, subject, id, categoryID)
}
