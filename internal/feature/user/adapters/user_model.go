package adapters

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"profile_backend/internal/feature/user/domain/entity"
)

// UserModel はusersテーブルのGORMモデルです。
type UserModel struct {
	ID              string  `gorm:"primaryKey;size:36"`
	Name            string  `gorm:"size:100;not null"`
	Email           string  `gorm:"size:255;uniqueIndex;not null"`
	Password        string  `gorm:"size:255;not null"`
	MobileNumber    *string `gorm:"size:32"`
	ProfilePicSmall *string `gorm:"size:2048"`
	ProfilePicLarge *string `gorm:"size:2048"`
	Role            string  `gorm:"size:16;not null;default:user"`
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate はIDとロールが未設定の場合に補完します。
func (m *UserModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		m.Role = string(entity.RoleUser)
	}
	return nil
}

// ToEntity converts the GORM model to a domain entity.
// 未知のロールは正規化だけして渡します。判定は呼び出し側が Role.Valid で行います。
func (m *UserModel) ToEntity() *entity.User {
	role, _ := entity.ParseRole(m.Role)
	return &entity.User{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		PasswordHash:    m.Password,
		MobileNumber:    m.MobileNumber,
		ProfilePicSmall: m.ProfilePicSmall,
		ProfilePicLarge: m.ProfilePicLarge,
		Role:            role,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Password:        u.PasswordHash,
		MobileNumber:    u.MobileNumber,
		ProfilePicSmall: u.ProfilePicSmall,
		ProfilePicLarge: u.ProfilePicLarge,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
