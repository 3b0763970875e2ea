package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReminderMarker は送信済みマーカーを保持するキー・バリューストアです。
type ReminderMarker interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Pacer は送信ペースを制御します。
type Pacer interface {
	Wait(ctx context.Context) error
}

// ReminderUsecase はプロフィール画像が未設定のユーザーにリマインドメールを送信します。
type ReminderUsecase struct {
	candidates ReminderCandidates
	marker     ReminderMarker
	notifier   Notifier
	pacer      Pacer
	after      time.Duration
	now        func() time.Time
}

// NewReminderUsecase はReminderUsecaseを生成します。afterが1時間未満の場合は1時間に切り上げます。
// markerがnilの場合は重複送信を抑止せず、対象者全員に送信します。
func NewReminderUsecase(candidates ReminderCandidates, marker ReminderMarker, notifier Notifier, pacer Pacer, after time.Duration) *ReminderUsecase {
	if after < time.Hour {
		after = time.Hour
	}
	return &ReminderUsecase{
		candidates: candidates,
		marker:     marker,
		notifier:   notifier,
		pacer:      pacer,
		after:      after,
		now:        time.Now,
	}
}

// reminderKey returns the marker key of one user.
func reminderKey(userID string) string {
	return "reminder:avatar:" + userID
}

// claim marks the user as reminded for the current window.
// Without a marker store, or when the store fails, every candidate is claimed.
func (r *ReminderUsecase) claim(ctx context.Context, userID string) bool {
	if r.marker == nil {
		return true
	}
	ok, err := r.marker.SetNX(ctx, reminderKey(userID), []byte("1"), r.after)
	if err != nil {
		slog.Warn("reminder marker failed", "user_id", userID, "error", err)
		return true
	}
	return ok
}

// release removes the marker so the user is retried on the next run.
func (r *ReminderUsecase) release(ctx context.Context, userID string) {
	if r.marker == nil {
		return
	}
	if err := r.marker.Delete(ctx, reminderKey(userID)); err != nil {
		slog.Warn("reminder marker release failed", "user_id", userID, "error", err)
	}
}

// RunAvatarReminders は対象ユーザーにリマインドを送信し、送信件数を返します。
// 個々の送信失敗はログに記録して続行し、マーカーを削除して次回の再送を可能にします。
func (r *ReminderUsecase) RunAvatarReminders(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.after)
	users, err := r.candidates.ListWithoutAvatarBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	sent := 0
	for i := range users {
		u := &users[i]
		if !r.claim(ctx, u.ID) {
			continue
		}
		if err := r.pacer.Wait(ctx); err != nil {
			r.release(ctx, u.ID)
			return sent, err
		}
		if err := r.notifier.SendAvatarReminder(ctx, u); err != nil {
			slog.Warn("avatar reminder failed", "user_id", u.ID, "error", err)
			r.release(ctx, u.ID)
			continue
		}
		sent++
	}

	slog.Info("avatar reminders sent", "candidates", len(users), "sent", sent)
	return sent, nil
}
