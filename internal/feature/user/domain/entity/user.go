// Package entity はuserフィーチャーのドメインモデルを定義します。
package entity

import (
	"strings"
	"time"
)

// Role はユーザーの権限ロールです。
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole は文字列をRoleに変換します。大文字小文字は区別しません。
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid は既知のロールかどうかを返します。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// HomePath はロールごとのホーム画面のパスを返します。未知のロールは空文字を返します。
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleUser:
		return "/user"
	default:
		return ""
	}
}

// TimestampLayout はAPIレスポンスとキャッシュで使うタイムスタンプ形式（UTC、ミリ秒精度）です。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp は時刻をTimestampLayoutのUTC文字列に変換します。
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// User はアカウントの永続化される全属性です。
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	MobileNumber    *string
	ProfilePicSmall *string
	ProfilePicLarge *string
	Role            Role
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAvatar はプロフィール画像（小）が設定されているかを返します。
func (u *User) HasAvatar() bool {
	return u.ProfilePicSmall != nil && *u.ProfilePicSmall != ""
}

// Profile はUserから公開用のUserProfileを生成します。
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		MobileNumber:    u.MobileNumber,
		ProfilePicSmall: u.ProfilePicSmall,
		ProfilePicLarge: u.ProfilePicLarge,
		Role:            u.Role,
		CreatedAt:       FormatTimestamp(u.CreatedAt),
		UpdatedAt:       FormatTimestamp(u.UpdatedAt),
	}
}

// UserProfile はユーザーの公開プロジェクションです。
// キャッシュに保存される形とAPIレスポンスの形は同一で、ヒット時とミス時で差が出ません。
type UserProfile struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	MobileNumber    *string `json:"mobileNumber"`
	ProfilePicSmall *string `json:"profilePicSmall"`
	ProfilePicLarge *string `json:"profilePicLarge"`
	Role            Role    `json:"role"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ProfileUpdate はプロフィールの部分更新です。nilのフィールドは変更しません。
type ProfileUpdate struct {
	Name            *string
	MobileNumber    *string
	ProfilePicSmall *string
}

// IsEmpty は更新対象のフィールドが1つもないかを返します。
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.MobileNumber == nil && p.ProfilePicSmall == nil
}

// Fields は更新対象のフィールド名（JSON名）を返します。
func (p ProfileUpdate) Fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.MobileNumber != nil {
		out = append(out, "mobileNumber")
	}
	if p.ProfilePicSmall != nil {
		out = append(out, "profilePicSmall")
	}
	return out
}
