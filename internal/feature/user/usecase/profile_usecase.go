package usecase

import (
	"context"
	"log/slog"
	"strings"

	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/platform/validation"
)

// profileRules holds the field rules of a profile update.
type profileRules struct {
	Name            *string `json:"name" validate:"omitnil,min=1,max=100"`
	MobileNumber    *string `json:"mobileNumber" validate:"omitnil,max=32"`
	ProfilePicSmall *string `json:"profilePicSmall" validate:"omitnil,max=2048,http_url"`
}

// ProfileUsecase はプロフィール更新の書き込みパスを実装します。
// 永続化が成功した後にのみ、キャッシュ無効化と通知メールを実行します。
type ProfileUsecase struct {
	writer      ProfileWriter
	invalidator CacheInvalidator
	notifier    Notifier
}

// NewProfileUsecase はProfileUsecaseを生成します。
func NewProfileUsecase(writer ProfileWriter, invalidator CacheInvalidator, notifier Notifier) *ProfileUsecase {
	return &ProfileUsecase{
		writer:      writer,
		invalidator: invalidator,
		notifier:    notifier,
	}
}

// normalizeUpdate trims surrounding whitespace from every present field.
func normalizeUpdate(u entity.ProfileUpdate) entity.ProfileUpdate {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	return entity.ProfileUpdate{
		Name:            trim(u.Name),
		MobileNumber:    trim(u.MobileNumber),
		ProfilePicSmall: trim(u.ProfilePicSmall),
	}
}

// ValidateProfileUpdate は更新内容を検証し、違反がある場合は*validation.Errorを返します。
func ValidateProfileUpdate(u entity.ProfileUpdate) error {
	if u.IsEmpty() {
		return validation.NewError(validation.FieldError{Field: "body", Message: "at least one field is required"})
	}
	return validation.Struct(&profileRules{
		Name:            u.Name,
		MobileNumber:    u.MobileNumber,
		ProfilePicSmall: u.ProfilePicSmall,
	})
}

// UpdateProfile は呼び出し元自身のプロフィールを部分更新します。
//   - 未認証: ErrUnauthorized
//   - 検証エラー: *validation.Error（永続化は行わない）
//   - ユーザー不在: ErrUserNotFound
//   - 成功時: キャッシュ無効化と通知メールを実行し、更新後のプロフィールを返す
func (p *ProfileUsecase) UpdateProfile(ctx context.Context, caller Caller, update entity.ProfileUpdate) (*entity.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}

	update = normalizeUpdate(update)
	if err := ValidateProfileUpdate(update); err != nil {
		return nil, err
	}

	user, err := p.writer.UpdateProfile(ctx, caller.UserID, update)
	if err != nil {
		return nil, err
	}
	slog.Info("user profile updated", "user_id", user.ID, "fields", update.Fields())

	runPostCommit(ctx, user.ID,
		postCommitTask{name: "invalidate_cache", run: func(ctx context.Context) error {
			return p.invalidator.Invalidate(ctx, user.ID)
		}},
		postCommitTask{name: "notify_profile_updated", run: func(ctx context.Context) error {
			return p.notifier.NotifyProfileUpdated(ctx, user)
		}},
	)

	profile := user.Profile()
	return &profile, nil
}
