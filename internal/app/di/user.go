package di

import (
	"gorm.io/gorm"

	"profile_backend/internal/app/config"
	useradapters "profile_backend/internal/feature/user/adapters"
	"profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/cache"
	"profile_backend/internal/platform/mail"
)

// NewReminderUsecase wires the avatar reminder job. It is shared by the HTTP cron route and cmd/reminder.
func NewReminderUsecase(cfg config.Config, db *gorm.DB, store *cache.Store, sender mail.Sender) *usecase.ReminderUsecase {
	notifier := useradapters.NewMailNotifier(sender, cfg.AppName, cfg.AppURL)
	return usecase.NewReminderUsecase(
		useradapters.NewUserGorm(db),
		NewReminderMarker(store),
		notifier,
		NewReminderPacer(cfg.ReminderPerMinute),
		cfg.ReminderAfter,
	)
}
