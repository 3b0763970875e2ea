package usecase

import (
	"context"
	"errors"
	"fmt"

	"profile_backend/internal/feature/user/domain/entity"
)

// DirectoryUsecase はユーザー情報の読み取り（キャッシュアサイド）と権限判定を行います。
type DirectoryUsecase struct {
	profiles ProfileReader
	users    UserFinder
}

// NewDirectoryUsecase はDirectoryUsecaseを生成します。
// profilesにはキャッシュデコレーター、usersにはキャッシュを経由しないリポジトリを渡します。
func NewDirectoryUsecase(profiles ProfileReader, users UserFinder) *DirectoryUsecase {
	return &DirectoryUsecase{profiles: profiles, users: users}
}

// RoleOf はユーザーのロールをストアから取得します。
// ユーザーが存在しない場合（セッションは有効だがアカウントが削除された場合など）はErrUnauthorizedを返します。
func (d *DirectoryUsecase) RoleOf(ctx context.Context, userID string) (entity.Role, error) {
	if userID == "" {
		return "", ErrUnauthorized
	}
	u, err := d.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}
	return u.Role, nil
}

// GetRole は呼び出し元のロールを返します。
func (d *DirectoryUsecase) GetRole(ctx context.Context, caller Caller) (entity.Role, error) {
	if !caller.Authenticated() {
		return "", ErrUnauthorized
	}
	return d.RoleOf(ctx, caller.UserID)
}

// GetUser はIDでプロフィールを返します。呼び出し元は本人か管理者である必要があります。
func (d *DirectoryUsecase) GetUser(ctx context.Context, caller Caller, id string) (*entity.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if id != caller.UserID {
		role, err := d.RoleOf(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if role != entity.RoleAdmin {
			return nil, ErrForbidden
		}
	}
	return d.profiles.FindProfile(ctx, id)
}

// GetCurrent は呼び出し元自身のプロフィールを返します。
func (d *DirectoryUsecase) GetCurrent(ctx context.Context, caller Caller) (*entity.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	return d.profiles.FindProfile(ctx, caller.UserID)
}

// ListUsers は管理者向けに全ユーザーを返します。呼び出し元の管理者自身は結果から除外されます。
// キャッシュされる一覧は全員分で、除外は読み取り後に行います。
func (d *DirectoryUsecase) ListUsers(ctx context.Context, caller Caller) ([]entity.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	role, err := d.RoleOf(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if role != entity.RoleAdmin {
		return nil, ErrForbidden
	}

	all, err := d.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.UserProfile, 0, len(all))
	for _, p := range all {
		if p.ID == caller.UserID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
