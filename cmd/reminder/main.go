// Command reminder はプロフィール画像未設定ユーザーへのリマインドを1回実行します。
// 期限切れのSQLセッションの削除もあわせて行います。Cloud Scheduler や cron から起動します。
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"profile_backend/internal/app/config"
	"profile_backend/internal/app/di"
	"profile_backend/internal/platform/cache"
	infradb "profile_backend/internal/platform/db"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := infradb.OpenDB()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	rdb := di.NewRedisClient()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	reminders := di.NewReminderUsecase(cfg, db, cache.NewStore(rdb), di.NewMailSender())
	sent, err := reminders.RunAvatarReminders(ctx)
	if err != nil {
		slog.Error("avatar reminder job failed", "error", err, "sent", sent)
		os.Exit(1)
	}
	slog.Info("avatar reminder job finished", "sent", sent)

	if pruner := di.NewExpiredSessionPruner(rdb, db); pruner != nil {
		n, err := pruner.DeleteExpired(ctx)
		if err != nil {
			slog.Error("failed to prune expired sessions", "error", err)
			os.Exit(1)
		}
		slog.Info("expired sessions pruned", "deleted", n)
	}
}
