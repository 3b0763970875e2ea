package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile_backend/internal/feature/user/domain/entity"
)

func newDirectoryFixture() (*DirectoryUsecase, *mockUserFinder, *mockProfileReader) {
	users := &mockUserFinder{users: map[string]*entity.User{
		"admin-1": {ID: "admin-1", Role: entity.RoleAdmin},
		"user-1":  {ID: "user-1", Role: entity.RoleUser},
		"user-2":  {ID: "user-2", Role: entity.RoleUser},
	}}
	profiles := &mockProfileReader{
		findFn: func(ctx context.Context, id string) (*entity.UserProfile, error) {
			if id == "missing" {
				return nil, ErrUserNotFound
			}
			return &entity.UserProfile{ID: id}, nil
		},
		listFn: func(ctx context.Context) ([]entity.UserProfile, error) {
			return []entity.UserProfile{{ID: "user-2"}, {ID: "admin-1"}, {ID: "user-1"}}, nil
		},
	}
	return NewDirectoryUsecase(profiles, users), users, profiles
}

// TestDirectoryUsecase_GetUser は本人・管理者・他人・未認証それぞれの結果を検証します。
func TestDirectoryUsecase_GetUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		caller  Caller
		id      string
		wantErr error
	}{
		{name: "owner reads self", caller: Caller{UserID: "user-1"}, id: "user-1"},
		{name: "admin reads other", caller: Caller{UserID: "admin-1"}, id: "user-1"},
		{name: "user reads other", caller: Caller{UserID: "user-1"}, id: "user-2", wantErr: ErrForbidden},
		{name: "unauthenticated", caller: Caller{}, id: "user-1", wantErr: ErrUnauthorized},
		{name: "admin reads missing", caller: Caller{UserID: "admin-1"}, id: "missing", wantErr: ErrUserNotFound},
		{name: "deleted caller", caller: Caller{UserID: "ghost"}, id: "user-1", wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, _, _ := newDirectoryFixture()
			got, err := uc.GetUser(context.Background(), tt.caller, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
		})
	}
}

// TestDirectoryUsecase_GetUser_SelfSkipsRoleLookup は本人参照ではロール判定を行わないことを検証します。
func TestDirectoryUsecase_GetUser_SelfSkipsRoleLookup(t *testing.T) {
	t.Parallel()

	uc, users, _ := newDirectoryFixture()
	_, err := uc.GetUser(context.Background(), Caller{UserID: "user-1"}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, users.calls)
}

func TestDirectoryUsecase_GetUser_RoleStoreError(t *testing.T) {
	t.Parallel()

	uc, users, _ := newDirectoryFixture()
	users.err = errors.New("db down")

	_, err := uc.GetUser(context.Background(), Caller{UserID: "admin-1"}, "user-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)
}

// TestDirectoryUsecase_ListUsers は管理者自身が一覧から除外されることを検証します。
func TestDirectoryUsecase_ListUsers(t *testing.T) {
	t.Parallel()

	uc, _, _ := newDirectoryFixture()

	got, err := uc.ListUsers(context.Background(), Caller{UserID: "admin-1"})
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"user-2", "user-1"}, ids)
}

func TestDirectoryUsecase_ListUsers_Denied(t *testing.T) {
	t.Parallel()

	uc, _, _ := newDirectoryFixture()

	_, err := uc.ListUsers(context.Background(), Caller{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.ListUsers(context.Background(), Caller{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDirectoryUsecase_ListUsers_Empty(t *testing.T) {
	t.Parallel()

	uc, _, profiles := newDirectoryFixture()
	profiles.listFn = func(ctx context.Context) ([]entity.UserProfile, error) { return nil, nil }

	got, err := uc.ListUsers(context.Background(), Caller{UserID: "admin-1"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDirectoryUsecase_GetRoleAndCurrent(t *testing.T) {
	t.Parallel()

	uc, _, _ := newDirectoryFixture()
	ctx := context.Background()

	role, err := uc.GetRole(ctx, Caller{UserID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, role)

	_, err = uc.GetRole(ctx, Caller{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	p, err := uc.GetCurrent(ctx, Caller{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, "user-2", p.ID)

	_, err = uc.GetCurrent(ctx, Caller{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
