package usecase

import (
	"context"
	"sync"
	"time"

	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/platform/imaging"
)

// mockProfileReader はProfileReaderのモックです。
type mockProfileReader struct {
	findFn func(ctx context.Context, id string) (*entity.UserProfile, error)
	listFn func(ctx context.Context) ([]entity.UserProfile, error)
}

func (m *mockProfileReader) FindProfile(ctx context.Context, id string) (*entity.UserProfile, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockProfileReader) ListProfiles(ctx context.Context) ([]entity.UserProfile, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// mockUserFinder はIDからユーザーを引く固定テーブルです。
type mockUserFinder struct {
	users map[string]*entity.User
	err   error
	calls int
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*entity.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// mockProfileWriter はProfileWriterとAvatarWriterのモックです。
type mockProfileWriter struct {
	updateFn func(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error)
	avatarFn func(ctx context.Context, id, small, large string) (*entity.User, error)
	calls    int
}

func (m *mockProfileWriter) UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error) {
	m.calls++
	return m.updateFn(ctx, id, update)
}

func (m *mockProfileWriter) UpdateAvatar(ctx context.Context, id, small, large string) (*entity.User, error) {
	m.calls++
	return m.avatarFn(ctx, id, small, large)
}

// mockInvalidator は呼び出されたユーザーIDを記録します。
type mockInvalidator struct {
	err   error
	calls []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, userID string) error {
	m.calls = append(m.calls, userID)
	return m.err
}

// mockNotifier は送信したメールを記録します。
type mockNotifier struct {
	mu            sync.Mutex
	updatedErr    error
	reminderErrs  map[string]error
	updated       []string
	reminded      []string
	reminderCalls int
}

func (m *mockNotifier) NotifyProfileUpdated(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, user.ID)
	return m.updatedErr
}

func (m *mockNotifier) SendAvatarReminder(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminderCalls++
	if err := m.reminderErrs[user.ID]; err != nil {
		return err
	}
	m.reminded = append(m.reminded, user.ID)
	return nil
}

// mockProcessor は固定のAvatarを返します。
type mockProcessor struct {
	avatar *imaging.Avatar
	err    error
}

func (m *mockProcessor) Process(data []byte) (*imaging.Avatar, error) {
	return m.avatar, m.err
}

// mockStorage は保存されたキーを記録し、固定のURLを返します。
type mockStorage struct {
	failKey string
	err     error
	puts    map[string]string
}

func (m *mockStorage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if key == m.failKey {
		return "", m.err
	}
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	m.puts[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

// mockCandidates はリマインド対象者を返します。
type mockCandidates struct {
	users  []entity.User
	err    error
	cutoff time.Time
}

func (m *mockCandidates) ListWithoutAvatarBefore(ctx context.Context, cutoff time.Time) ([]entity.User, error) {
	m.cutoff = cutoff
	return m.users, m.err
}

// mockMarker はSetNXの挙動をメモリ上で再現します。
type mockMarker struct {
	keys    map[string]bool
	err     error
	deleted []string
}

func (m *mockMarker) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockMarker) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.keys, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// noopPacer は待機しません。
type noopPacer struct{ err error }

func (p noopPacer) Wait(ctx context.Context) error { return p.err }

func strPtr(s string) *string { return &s }
