package resume

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"resumeHub/internal/database"
	"resumeHub/internal/errcode"
)

// Manager 管理用户、分类与简历。所有操作都限定在调用方自己的数据内，
// 其他用户的记录与不存在的记录表现一致。
type Manager struct {
	repo     repository
	files    FileStore
	profiles ProfileStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager 构造 Manager。
func NewManager(db *gorm.DB, files FileStore, profiles ProfileStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:     repository{db: db},
		files:    files,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureUser 在用户记录不存在时创建，并始终标记 onboarding 完成。
// 创建用户与 onboarding 两个接口共用该逻辑。
func (m *Manager) EnsureUser(ctx context.Context, subject, email, name string) (EnsureResult, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return 0, errcode.Invalid("email and name are required")
	}

	result := AlreadyExists
	_, err := m.repo.findUser(ctx, subject)
	switch {
	case err == nil:
	case errcode.Is(err, errcode.ResourceMissing):
		user := database.User{ClerkID: subject, Email: email, Name: name}
		if err := m.repo.createUser(ctx, &user); err != nil {
			return 0, err
		}
		result = Created
		m.logger.Info("user created", zap.String("clerk_id", subject))
	default:
		return 0, err
	}

	if err := m.setOnboarding(ctx, subject, true, true); err != nil {
		return 0, err
	}
	return result, nil
}

// GetUser 返回用户记录。onboarding 标记以身份服务为准，读取失败时使用本地记录中的值。
func (m *Manager) GetUser(ctx context.Context, subject string) (*database.User, error) {
	user, err := m.repo.findUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	complete, err := m.profiles.OnboardingComplete(ctx, subject)
	if err != nil {
		m.logger.Warn("read onboarding flag from profile failed, using row value",
			zap.String("clerk_id", subject),
			zap.Error(err),
		)
		return user, nil
	}
	user.OnboardingComplete = complete
	return user, nil
}

// UpdateUser 执行部分更新：email 与 name 写入本地记录，
// onboardingComplete 只写入身份服务。
func (m *Manager) UpdateUser(ctx context.Context, subject string, update UserUpdate) error {
	if update.empty() {
		return errcode.Invalid("no fields")
	}

	updates := map[string]any{}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return errcode.Invalid("email must not be empty")
		}
		updates["email"] = email
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return errcode.Invalid("name must not be empty")
		}
		updates["name"] = name
	}

	if len(updates) > 0 {
		if err := m.repo.updateUser(ctx, subject, updates); err != nil {
			return err
		}
	}
	if update.OnboardingComplete != nil {
		if err := m.setOnboarding(ctx, subject, *update.OnboardingComplete, false); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUser 删除本地记录并重置身份服务中的 onboarding 标记，账号本身保留。
func (m *Manager) DeleteUser(ctx context.Context, subject string) error {
	if err := m.repo.deleteUser(ctx, subject); err != nil {
		return err
	}
	return m.setOnboarding(ctx, subject, false, false)
}

// setOnboarding 是 onboarding 标记的唯一写入口。
// 标记同时存在于 users 记录（withRow 时）与身份服务 metadata 中，两次写入不是原子的，先写本地记录。
func (m *Manager) setOnboarding(ctx context.Context, subject string, complete, withRow bool) error {
	if withRow {
		if err := m.repo.updateUser(ctx, subject, map[string]any{"onboarding_complete": complete}); err != nil {
			return err
		}
	}
	if err := m.profiles.SetOnboardingComplete(ctx, subject, complete); err != nil {
		m.logger.Error("write onboarding flag to profile failed",
			zap.String("clerk_id", subject),
			zap.Bool("complete", complete),
			zap.Error(err),
		)
		return errcode.Upstream("identity profile update failed", err)
	}
	return nil
}
