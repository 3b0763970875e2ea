package usecase

import (
	"context"
	"time"

	"profile_backend/internal/feature/user/domain/entity"
)

// ProfileReader は公開プロフィールの読み取りを抽象化します。
// キャッシュデコレーターとDB実装の両方がこのインターフェースを満たします。
type ProfileReader interface {
	// FindProfile はIDでプロフィールを取得します。存在しない場合はErrUserNotFoundを返します。
	FindProfile(ctx context.Context, id string) (*entity.UserProfile, error)

	// ListProfiles は全ユーザーのプロフィールを作成日時の降順で返します。
	ListProfiles(ctx context.Context) ([]entity.UserProfile, error)
}

// UserFinder はキャッシュを経由しないユーザーの読み取りです。ロール判定は必ずこちらを使います。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// ProfileWriter はプロフィールの部分更新を永続化します。
type ProfileWriter interface {
	// UpdateProfile は指定されたフィールドのみを更新し、更新後のユーザーを返します。
	UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error)
}

// AvatarWriter はプロフィール画像URLを永続化します。
type AvatarWriter interface {
	UpdateAvatar(ctx context.Context, id, smallURL, largeURL string) (*entity.User, error)
}

// ReminderCandidates はアバター未設定ユーザーの検索です。
type ReminderCandidates interface {
	// ListWithoutAvatarBefore はプロフィール画像がなく、updated_atがcutoffより古いユーザーを返します。
	ListWithoutAvatarBefore(ctx context.Context, cutoff time.Time) ([]entity.User, error)
}

// CacheInvalidator はユーザーに関連するキャッシュエントリを削除します。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Notifier はユーザー向けの通知メールを送信します。
type Notifier interface {
	NotifyProfileUpdated(ctx context.Context, user *entity.User) error
	SendAvatarReminder(ctx context.Context, user *entity.User) error
}
