package resume

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"resumeHub/internal/database"
	"resumeHub/internal/errcode"
)

// repository 是唯一访问数据库的地方。
// 返回的错误统一归类：记录不存在为 NotFound，其余为 Upstream。
type repository struct {
	db *gorm.DB
}

func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errcode.NotFound(what + " not found")
	}
	return errcode.Upstream("record store failure", err)
}

// resumeFilter 按分类筛选简历。
type resumeFilter struct {
	all           bool
	uncategorized bool
	categoryID    uint
}

func (r repository) findUser(ctx context.Context, clerkID string) (*database.User, error) {
	var user database.User
	err := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&user).Error
	if err != nil {
		return nil, classify(err, "user")
	}
	return &user, nil
}

func (r repository) createUser(ctx context.Context, user *database.User) error {
	return classify(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r repository) updateUser(ctx context.Context, clerkID string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&database.User{}).Where("clerk_id = ?", clerkID).Updates(updates)
	if res.Error != nil {
		return classify(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return errcode.NotFound("user not found")
	}
	return nil
}

func (r repository) deleteUser(ctx context.Context, clerkID string) error {
	return classify(r.db.WithContext(ctx).Where("clerk_id = ?", clerkID).Delete(&database.User{}).Error, "user")
}

// categoryCounts 按 category_id 统计用户的简历数量，NULL 计入未分类。
func (r repository) categoryCounts(ctx context.Context, clerkID string) (map[uint]int64, int64, error) {
	var rows []struct {
		CategoryID *uint
		Count      int64
	}
	err := r.db.WithContext(ctx).
		Model(&database.Resume{}).
		Select("category_id, COUNT(*) AS count").
		Where("clerk_id = ?", clerkID).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, classify(err, "resume")
	}

	counts := make(map[uint]int64, len(rows))
	var uncategorized int64
	for _, row := range rows {
		if row.CategoryID == nil {
			uncategorized += row.Count
			continue
		}
		counts[*row.CategoryID] += row.Count
	}
	return counts, uncategorized, nil
}

func (r repository) listCategories(ctx context.Context, clerkID string) ([]database.Category, error) {
	var categories []database.Category
	err := r.db.WithContext(ctx).
		Where("clerk_id = ?", clerkID).
		Order("created_at ASC, id ASC").
		Find(&categories).Error
	return categories, classify(err, "category")
}

func (r repository) findCategory(ctx context.Context, clerkID string, id uint) (*database.Category, error) {
	var category database.Category
	err := r.db.WithContext(ctx).Where("id = ? AND clerk_id = ?", id, clerkID).First(&category).Error
	if err != nil {
		return nil, classify(err, "category")
	}
	return &category, nil
}

func (r repository) countInCategory(ctx context.Context, clerkID string, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("clerk_id = ? AND category_id = ?", clerkID, id).
		Count(&count).Error
	return count, classify(err, "resume")
}

func (r repository) createCategory(ctx context.Context, category *database.Category) error {
	return classify(r.db.WithContext(ctx).Create(category).Error, "category")
}

func (r repository) renameCategory(ctx context.Context, clerkID string, id uint, name string) error {
	res := r.db.WithContext(ctx).
		Model(&database.Category{}).
		Where("id = ? AND clerk_id = ?", id, clerkID).
		Update("name", name)
	if res.Error != nil {
		return classify(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return errcode.NotFound("category not found")
	}
	return nil
}

func (r repository) deleteCategory(ctx context.Context, clerkID string, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND clerk_id = ?", id, clerkID).Delete(&database.Category{})
	if res.Error != nil {
		return classify(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return errcode.NotFound("category not found")
	}
	return nil
}

func (r repository) listResumes(ctx context.Context, clerkID string, filter resumeFilter) ([]database.Resume, error) {
	query := r.db.WithContext(ctx).Where("clerk_id = ?", clerkID)
	switch {
	case filter.all:
	case filter.uncategorized:
		query = query.Where("category_id IS NULL")
	default:
		query = query.Where("category_id = ?", filter.categoryID)
	}

	resumes := make([]database.Resume, 0)
	err := query.Order("created_at DESC, id DESC").Find(&resumes).Error
	return resumes, classify(err, "resume")
}

func (r repository) findResume(ctx context.Context, clerkID string, id uint) (*database.Resume, error) {
	var resume database.Resume
	err := r.db.WithContext(ctx).Where("id = ? AND clerk_id = ?", id, clerkID).First(&resume).Error
	if err != nil {
		return nil, classify(err, "resume")
	}
	return &resume, nil
}

func (r repository) createResume(ctx context.Context, resume *database.Resume) error {
	return classify(r.db.WithContext(ctx).Create(resume).Error, "resume")
}

func (r repository) deleteResume(ctx context.Context, clerkID string, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND clerk_id = ?", id, clerkID).Delete(&database.Resume{})
	return res.RowsAffected, res.Error
}

func (r repository) moveResume(ctx context.Context, clerkID string, id uint, categoryID *uint) error {
	res := r.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("id = ? AND clerk_id = ?", id, clerkID).
		Update("category_id", categoryID)
	if res.Error != nil {
		return classify(res.Error, "resume")
	}
	if res.RowsAffected == 0 {
		return errcode.NotFound("resume not found")
	}
	return nil
}

func (r repository) createAnalysis(ctx context.Context, analysis *database.Analysis) error {
	return classify(r.db.WithContext(ctx).Create(analysis).Error, "analysis")
}

func (r repository) listAnalyses(ctx context.Context, clerkID string, limit int) ([]database.Analysis, error) {
	analyses := make([]database.Analysis, 0)
	err := r.db.WithContext(ctx).
		Where("clerk_id = ?", clerkID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&analyses).Error
	return analyses, classify(err, "analysis")
}

// objectKeys 返回所有简历记录引用的对象键。
func (r repository) objectKeys(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&database.Resume{}).Pluck("object_key", &keys).Error; err != nil {
		return nil, classify(err, "resume")
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}
