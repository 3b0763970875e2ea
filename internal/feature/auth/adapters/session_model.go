package adapters

import (
	"time"

	"profile_backend/internal/feature/auth/domain/entity"
)

// カラム長の上限。超えた値は保存前に切り詰めます。
const (
	maxUserAgentLen = 512
	maxIPAddressLen = 45 // IPv6
)

// SessionModel はsessionsテーブルの行です。
//   - (user_id, created_at) は最古セッションの削除と有効セッションの列挙に使います。
//   - expires_at は期限切れセッションの一括削除に使います。
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    string     `gorm:"size:36;not null;index:idx_sessions_user_created,priority:1"`
	CreatedAt time.Time  `gorm:"not null;index:idx_sessions_user_created,priority:2"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	RevokedAt *time.Time
	UserAgent string `gorm:"size:512"`
	IPAddress string `gorm:"size:45"`
}

func (SessionModel) TableName() string { return "sessions" }

// ToEntity は行をドメインのSessionに変換します。
func (m *SessionModel) ToEntity() *entity.Session {
	s := entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
	}
	return &s
}

// SessionModelFromEntity はSessionを保存用の行に変換します。
// クライアント由来の値はカラム長に合わせて切り詰めます。
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	m := SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
	m.UserAgent = truncate(s.UserAgent, maxUserAgentLen)
	m.IPAddress = truncate(s.IPAddress, maxIPAddressLen)
	return &m
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
