package resume

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"resumeHub/internal/storage"
)

const (
	// AllCategoryID 表示包含用户全部简历的虚拟分类。
	AllCategoryID   = "all"
	AllCategoryName = "All"
)

// FileStore 是保存简历文件的对象存储。
type FileStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PublicURL(objectKey string) string
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ObjectLister 列举已存储的对象，供孤儿文件清理使用。
type ObjectLister interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectMeta, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

// ProfileStore 是身份服务中的用户 metadata。
type ProfileStore interface {
	SetOnboardingComplete(ctx context.Context, subject string, complete bool) error
	OnboardingComplete(ctx context.Context, subject string) (bool, error)
}

// EnsureResult 表示 EnsureUser 是否新建了记录。
type EnsureResult int

const (
	Created EnsureResult = iota + 1
	AlreadyExists
)

// UserUpdate 描述用户的部分更新，nil 表示不修改。
type UserUpdate struct {
	Email              *string `json:"email"`
	Name               *string `json:"name"`
	OnboardingComplete *bool   `json:"onboardingComplete"`
}

func (u UserUpdate) empty() bool {
	return u.Email == nil && u.Name == nil && u.OnboardingComplete == nil
}

// CategorySummary 是返回给客户端的分类信息。
type CategorySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ResumeCount int64  `json:"resumeCount"`
}

// UploadInput 描述一次上传的文件。
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	// CategoryID 可选，空值、"all" 与 "null" 均表示未分类。
	CategoryID string
}

// isUncategorized 判断客户端传入的分类 ID 是否表示未分类。
func isUncategorized(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "null", "undefined", "none", "uncategorized", AllCategoryID:
		return true
	}
	return false
}
