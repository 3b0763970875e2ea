// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapitypes "github.com/oapi-codegen/runtime/types"

	"profile_backend/internal/api"
	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/feature/user/transport/http/dto"
	"profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/http/respond"
	"profile_backend/internal/platform/imaging"
	jwtmw "profile_backend/internal/platform/jwt"
	"profile_backend/internal/platform/validation"
)

const (
	// maxProfileBody はPATCH /api/user のボディ上限です。
	maxProfileBody = 64 << 10
	// MaxAvatarBytes はデコード後の画像サイズの上限です。
	MaxAvatarBytes = 10 << 20
	// base64 の膨張分とJSONの余白を含めたアップロードボディの上限
	maxUploadBody = MaxAvatarBytes/3*4 + 64<<10
)

// DirectoryUsecase はユーザー情報の読み取りを定義します。
type DirectoryUsecase interface {
	GetCurrent(ctx context.Context, caller usecase.Caller) (*entity.UserProfile, error)
	GetUser(ctx context.Context, caller usecase.Caller, id string) (*entity.UserProfile, error)
	GetRole(ctx context.Context, caller usecase.Caller) (entity.Role, error)
	ListUsers(ctx context.Context, caller usecase.Caller) ([]entity.UserProfile, error)
}

// ProfileUsecase はプロフィールの部分更新を定義します。
type ProfileUsecase interface {
	UpdateProfile(ctx context.Context, caller usecase.Caller, update entity.ProfileUpdate) (*entity.UserProfile, error)
}

// AvatarUsecase はプロフィール画像のアップロードを定義します。
type AvatarUsecase interface {
	UploadAvatar(ctx context.Context, caller usecase.Caller, data []byte) (*entity.UserProfile, error)
}

// UserHandler はユーザー情報のHTTPリクエストを処理します。
type UserHandler struct {
	directory DirectoryUsecase
	profiles  ProfileUsecase
	avatars   AvatarUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(directory DirectoryUsecase, profiles ProfileUsecase, avatars AvatarUsecase) *UserHandler {
	return &UserHandler{directory: directory, profiles: profiles, avatars: avatars}
}

// caller はAuthRequiredが保存したプリンシパルを呼び出し元に変換します。
func caller(c *gin.Context) usecase.Caller {
	p, _ := jwtmw.PrincipalFrom(c)
	return usecase.Caller{UserID: p.UserID, SessionID: p.SessionID}
}

// GetCurrent はログイン中のユーザーのプロフィールを返します。
//
// エンドポイント: GET /api/user
func (h *UserHandler) GetCurrent(c *gin.Context) {
	profile, err := h.directory.GetCurrent(c.Request.Context(), caller(c))
	if err != nil {
		respond.Error(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, api.UserEnvelope{User: profile})
}

// GetUser はIDで指定したユーザーのプロフィールを返します。本人か管理者のみ参照できます。
//   - IDがUUID形式でない場合は400
//   - 権限が無い場合は401
//   - 存在しない場合は404
//
// エンドポイント: GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	var id openapitypes.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		respond.Error(c, validation.NewError(validation.FieldError{Field: "id", Message: "must be a valid UUID"}), "Failed to fetch user")
		return
	}

	profile, err := h.directory.GetUser(c.Request.Context(), caller(c), id.String())
	if err != nil {
		respond.Error(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, api.UserEnvelope{User: profile})
}

// GetRole はログイン中のユーザーのロールをストアから取得して返します。
//
// エンドポイント: GET /api/user/role
func (h *UserHandler) GetRole(c *gin.Context) {
	role, err := h.directory.GetRole(c.Request.Context(), caller(c))
	if err != nil {
		respond.Error(c, err, "Failed to fetch role")
		return
	}
	c.JSON(http.StatusOK, api.RoleResponse{Role: api.RoleName{Name: string(role)}})
}

// ListUsers は管理者向けのユーザー一覧を配列で返します。リクエストした管理者自身は含みません。
//
// エンドポイント: GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.directory.ListUsers(c.Request.Context(), caller(c))
	if err != nil {
		respond.Error(c, err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateProfile はログイン中のユーザーのプロフィールを部分更新します。
//   - 許可されていないキーや空のオブジェクトは400（detailsにフィールドごとのエラー）
//   - 永続化の失敗は500
//   - 成功時は更新後のプロフィールを返却
//
// エンドポイント: PATCH /api/user
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxProfileBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "Request body too large", Code: api.CodeValidationFailed})
			return
		}
		respond.Error(c, validation.NewError(validation.FieldError{Field: "body", Message: "could not be read"}), "Failed to update profile")
		return
	}

	var req dto.UpdateProfileReq
	if err := validation.DecodeStrict(body, &req); err != nil {
		respond.Error(c, err, "Failed to update profile")
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), caller(c), req.ToUpdate())
	if err != nil {
		respond.Error(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true, Message: "Profile updated successfully", Data: profile})
}

// UploadAvatar はbase64の画像を受け取り、プロフィール画像を更新します。
//   - 画像が10MBを超える場合は413
//   - JPEG/PNG以外は400
//   - ストレージ未設定は503
//
// エンドポイント: POST /api/profile/upload
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	var req dto.UploadAvatarReq
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, imaging.ErrImageTooLarge, "Failed to upload image")
			return
		}
		slog.Warn("avatar upload validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "imageBase64 is required", Code: api.CodeValidationFailed})
		return
	}

	data, err := imaging.DecodeDataURL(req.ImageBase64, MaxAvatarBytes)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			err = validation.NewError(validation.FieldError{Field: "imageBase64", Message: "must be a base64 encoded JPEG or PNG image"})
		}
		respond.Error(c, err, "Failed to upload image")
		return
	}

	profile, err := h.avatars.UploadAvatar(c.Request.Context(), caller(c), data)
	if err != nil {
		respond.Error(c, err, "Failed to upload image")
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true, Message: "Profile picture updated", Data: profile})
}
