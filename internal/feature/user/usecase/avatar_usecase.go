package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/platform/imaging"
	"profile_backend/internal/platform/validation"
)

// AvatarProcessor はアップロード画像を正方形に切り抜き、各サイズに縮小します。
type AvatarProcessor interface {
	Process(data []byte) (*imaging.Avatar, error)
}

// ObjectStorage はオブジェクトストレージへの保存を抽象化します。
type ObjectStorage interface {
	// Put はオブジェクトを保存し、公開URLを返します。
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// AvatarUsecase はプロフィール画像のアップロードを処理します。
type AvatarUsecase struct {
	processor   AvatarProcessor
	storage     ObjectStorage
	writer      AvatarWriter
	invalidator CacheInvalidator
}

// NewAvatarUsecase はAvatarUsecaseを生成します。storageがnilの場合、アップロードはErrStorageUnavailableになります。
func NewAvatarUsecase(processor AvatarProcessor, storage ObjectStorage, writer AvatarWriter, invalidator CacheInvalidator) *AvatarUsecase {
	return &AvatarUsecase{
		processor:   processor,
		storage:     storage,
		writer:      writer,
		invalidator: invalidator,
	}
}

// avatarKey returns the object key of one avatar variant.
func avatarKey(userID, name string) string {
	return fmt.Sprintf("profile/%s/%s", userID, name)
}

// UploadAvatar は画像を加工して保存し、ユーザーのプロフィール画像URLを更新します。
func (a *AvatarUsecase) UploadAvatar(ctx context.Context, caller Caller, data []byte) (*entity.UserProfile, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if a.storage == nil {
		return nil, ErrStorageUnavailable
	}

	avatar, err := a.processor.Process(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, validation.NewError(validation.FieldError{Field: "imageBase64", Message: "must be a JPEG or PNG image"})
		}
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	if _, err := a.storage.Put(ctx, avatarKey(caller.UserID, "original."+avatar.Format.Ext()), avatar.Original, avatar.Format.ContentType()); err != nil {
		return nil, fmt.Errorf("failed to store original image: %w", err)
	}
	smallURL, err := a.storage.Put(ctx, avatarKey(caller.UserID, "small.jpg"), avatar.Small, imaging.FormatJPEG.ContentType())
	if err != nil {
		return nil, fmt.Errorf("failed to store small image: %w", err)
	}
	largeURL, err := a.storage.Put(ctx, avatarKey(caller.UserID, "large.jpg"), avatar.Large, imaging.FormatJPEG.ContentType())
	if err != nil {
		return nil, fmt.Errorf("failed to store large image: %w", err)
	}

	user, err := a.writer.UpdateAvatar(ctx, caller.UserID, smallURL, largeURL)
	if err != nil {
		return nil, err
	}
	slog.Info("profile picture updated", "user_id", user.ID, "format", avatar.Format)

	runPostCommit(ctx, user.ID, postCommitTask{name: "invalidate_cache", run: func(ctx context.Context) error {
		return a.invalidator.Invalidate(ctx, user.ID)
	}})

	profile := user.Profile()
	return &profile, nil
}
