package resume

import (
	"context"
	"strconv"
	"strings"

	"resumeHub/internal/database"
	"resumeHub/internal/errcode"
)

// parseCategoryID 将路径中的 ID 转为记录 ID。虚拟分类 "all" 不能作为单个分类读写。
func parseCategoryID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, AllCategoryID) {
		return 0, errcode.Invalid(`the "all" category cannot be modified`)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errcode.Invalid("invalid category id")
	}
	return uint(id), nil
}

func summarize(category database.Category, count int64) CategorySummary {
	return CategorySummary{
		ID:          strconv.FormatUint(uint64(category.ID), 10),
		Name:        category.Name,
		ResumeCount: count,
	}
}

// ListCategories 返回用户的分类列表，首项为虚拟分类 "all"，其计数包含未分类简历。
func (m *Manager) ListCategories(ctx context.Context, subject string) ([]CategorySummary, error) {
	categories, err := m.repo.listCategories(ctx, subject)
	if err != nil {
		return nil, err
	}
	counts, uncategorized, err := m.repo.categoryCounts(ctx, subject)
	if err != nil {
		return nil, err
	}

	out := make([]CategorySummary, 0, len(categories)+1)
	out = append(out, CategorySummary{ID: AllCategoryID, Name: AllCategoryName})

	total := uncategorized
	for _, category := range categories {
		count := counts[category.ID]
		total += count
		out = append(out, summarize(category, count))
	}
	out[0].ResumeCount = total
	return out, nil
}

// GetCategory 返回指定分类及其简历数量。
func (m *Manager) GetCategory(ctx context.Context, subject, categoryID string) (CategorySummary, error) {
	id, err := parseCategoryID(categoryID)
	if err != nil {
		return CategorySummary{}, err
	}
	category, err := m.repo.findCategory(ctx, subject, id)
	if err != nil {
		return CategorySummary{}, err
	}
	count, err := m.repo.countInCategory(ctx, subject, id)
	if err != nil {
		return CategorySummary{}, err
	}
	return summarize(*category, count), nil
}

// CreateCategory 以去除首尾空白后的名称新建分类。
func (m *Manager) CreateCategory(ctx context.Context, subject, name string) (CategorySummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CategorySummary{}, errcode.Invalid("category name is required")
	}

	category := database.Category{ClerkID: subject, Name: name}
	if err := m.repo.createCategory(ctx, &category); err != nil {
		return CategorySummary{}, err
	}
	return summarize(category, 0), nil
}

// UpdateCategory 重命名分类。
func (m *Manager) UpdateCategory(ctx context.Context, subject, categoryID, name string) (CategorySummary, error) {
	id, err := parseCategoryID(categoryID)
	if err != nil {
		return CategorySummary{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CategorySummary{}, errcode.Invalid("category name is required")
	}

	if err := m.repo.renameCategory(ctx, subject, id, name); err != nil {
		return CategorySummary{}, err
	}
	return m.GetCategory(ctx, subject, categoryID)
}

// DeleteCategory 删除分类，其下简历保留，经外键变为未分类。
func (m *Manager) DeleteCategory(ctx context.Context, subject, categoryID string) error {
	id, err := parseCategoryID(categoryID)
	if err != nil {
		return err
	}
	return m.repo.deleteCategory(ctx, subject, id)
}
