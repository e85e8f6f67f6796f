package database

import (
	"time"

	"gorm.io/datatypes"
)

// User 对应身份服务中的账号。OnboardingComplete 同时保存在身份服务的 public metadata 中。
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ClerkID            string    `gorm:"uniqueIndex;size:64;not null" json:"clerk_id"`
	Email              string    `gorm:"size:255" json:"email"`
	Name               string    `gorm:"size:255" json:"name"`
	OnboardingComplete bool      `gorm:"default:false" json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Category 表示用户的简历分组。
// 采用硬删除，由外键把关联简历的 category_id 置空。
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClerkID   string    `gorm:"index;size:64;not null" json:"clerk_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resume 表示用户上传的简历文件，CategoryID 为空表示未分类。
type Resume struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClerkID    string    `gorm:"index;size:64;not null" json:"clerk_id"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Link       string    `gorm:"type:text" json:"link"`
	ObjectKey  string    `gorm:"size:512" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Analysis 记录一次简历与职位描述的比对结果。
type Analysis struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ClerkID        string         `gorm:"index;size:64;not null" json:"clerk_id"`
	ResumeLink     string         `gorm:"type:text" json:"resume_link"`
	JobDescription string         `gorm:"type:text" json:"job_description"`
	Result         string         `gorm:"type:text" json:"result"`
	Meta           datatypes.JSON `json:"meta"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Models 按迁移顺序列出全部表。
func Models() []any {
	return []any{&User{}, &Category{}, &Resume{}, &Analysis{}}
}
