// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	authusecase "profile_backend/internal/feature/auth/usecase"
	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/feature/user/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// profileColumns はプロフィール読み取りで取得する列です。passwordは含めません。
var profileColumns = []string{
	"id", "name", "email", "mobile_number", "profile_pic_small", "profile_pic_large",
	"role", "created_at", "updated_at",
}

// userGorm はユーザーリポジトリ群のGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormが各インターフェースを実装していることをコンパイル時に検証します。
var (
	_ authusecase.UserRepository = (*userGorm)(nil)
	_ usecase.ProfileReader      = (*userGorm)(nil)
	_ usecase.UserFinder         = (*userGorm)(nil)
	_ usecase.ProfileWriter      = (*userGorm)(nil)
	_ usecase.AvatarWriter       = (*userGorm)(nil)
	_ usecase.ReminderCandidates = (*userGorm)(nil)
)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isDuplicateKey は一意制約違反かどうかを判定します。
// gorm.Config.TranslateError が有効な場合は gorm.ErrDuplicatedKey に変換済みです。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create はユーザーをデータベースに追加し、生成されたIDと日時をuに反映します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	model := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	*u = *model.ToEntity()
	return nil
}

// first は条件に一致する最初のユーザーを取得します。
func (r *userGorm) first(ctx context.Context, query string, arg any) (*UserModel, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m, err := r.first(ctx, "email = ?", email)
	if err != nil {
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	m, err := r.first(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindProfile はIDで公開プロフィールを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindProfile(ctx context.Context, id string) (*entity.UserProfile, error) {
	var m UserModel
	err := r.db.WithContext(ctx).Select(profileColumns).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	p := m.ToEntity().Profile()
	return &p, nil
}

// ListProfiles は全ユーザーのプロフィールを作成日時の降順で返します。
func (r *userGorm) ListProfiles(ctx context.Context) ([]entity.UserProfile, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Select(profileColumns).Order("created_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.UserProfile, len(models))
	for i := range models {
		out[i] = models[i].ToEntity().Profile()
	}
	return out, nil
}

// UpdateProfile は指定されたフィールドのみを1文で更新し、更新後のユーザーを返します。
//   - 空のmobileNumberはNULLとして保存します。
//   - 対象のユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	values := map[string]any{"updated_at": time.Now()}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.MobileNumber != nil {
		if *update.MobileNumber == "" {
			values["mobile_number"] = nil
		} else {
			values["mobile_number"] = *update.MobileNumber
		}
	}
	if update.ProfilePicSmall != nil {
		values["profile_pic_small"] = *update.ProfilePicSmall
	}

	return r.updateColumns(ctx, id, values)
}

// UpdateAvatar はプロフィール画像のURLを更新します。
func (r *userGorm) UpdateAvatar(ctx context.Context, id, smallURL, largeURL string) (*entity.User, error) {
	return r.updateColumns(ctx, id, map[string]any{
		"profile_pic_small": smallURL,
		"profile_pic_large": largeURL,
		"updated_at":        time.Now(),
	})
}

// updateColumns はカラムを更新し、更新後の行を読み直します。
func (r *userGorm) updateColumns(ctx context.Context, id string, values map[string]any) (*entity.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&UserModel{}).Where("id = ?", id).Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		return nil, err
	}
	return model.ToEntity(), nil
}

// ListWithoutAvatarBefore はプロフィール画像がなく、updated_atがcutoffより古いユーザーを返します。
func (r *userGorm) ListWithoutAvatarBefore(ctx context.Context, cutoff time.Time) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).
		Where("(profile_pic_small IS NULL OR profile_pic_small = '') AND updated_at < ?", cutoff).
		Order("updated_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.User, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}
