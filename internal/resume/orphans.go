package resume

import (
	"context"
	"time"

	"gorm.io/gorm"

	"resumeHub/internal/errcode"
	"resumeHub/internal/storage"
)

// Janitor 查找没有任何简历记录引用的文件（上传成功但写库失败的残留）。
type Janitor struct {
	repo    repository
	objects ObjectLister
}

// NewJanitor 基于数据库与 Bucket 构造 Janitor。
func NewJanitor(db *gorm.DB, objects ObjectLister) *Janitor {
	return &Janitor{repo: repository{db: db}, objects: objects}
}

// FindOrphans 列出前缀下未被引用且早于 minAge 的对象，正在写库的上传不受影响。
func (j *Janitor) FindOrphans(ctx context.Context, prefix string, minAge time.Duration) ([]storage.ObjectMeta, error) {
	referenced, err := j.repo.objectKeys(ctx)
	if err != nil {
		return nil, err
	}
	objects, err := j.objects.ListObjects(ctx, prefix)
	if err != nil {
		return nil, errcode.Upstream("file store failure", err)
	}

	cutoff := time.Now().Add(-minAge)
	orphans := make([]storage.ObjectMeta, 0)
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if _, ok := referenced[obj.Key]; !ok {
			orphans = append(orphans, obj)
		}
	}
	return orphans, nil
}

// Sweep 删除给定的孤儿文件。
func (j *Janitor) Sweep(ctx context.Context, orphans []storage.ObjectMeta) error {
	keys := make([]string, 0, len(orphans))
	for _, o := range orphans {
		keys = append(keys, o.Key)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := j.objects.DeleteObjects(ctx, keys); err != nil {
		return errcode.Upstream("file store failure", err)
	}
	return nil
}
