package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"profile_backend/internal/app/config"
	"profile_backend/internal/app/di"
	"profile_backend/internal/app/router"
	authhandler "profile_backend/internal/feature/auth/transport/handler"
	authusecase "profile_backend/internal/feature/auth/usecase"
	navhandler "profile_backend/internal/feature/navigation/transport/handler"
	notificationhandler "profile_backend/internal/feature/notification/transport/handler"
	useradapters "profile_backend/internal/feature/user/adapters"
	userhandler "profile_backend/internal/feature/user/transport/handler"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/cache"
	infradb "profile_backend/internal/platform/db"
	platformhandler "profile_backend/internal/platform/http/handler"
	"profile_backend/internal/platform/imaging"
	jwtmw "profile_backend/internal/platform/jwt"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := config.LoadConfig()

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis（無くても起動する）
	rdb := di.NewRedisClient()
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}
	store := cache.NewStore(rdb)

	// Repository
	userRepo := useradapters.NewUserGorm(db)
	sessionRepo := di.NewSessionRepository(rdb, db)

	// Redisキャッシュでラップ
	cachedProfiles := cache.NewCachingProfileRepository(store, cfg.CacheTTL, userRepo)

	// 外部サービス
	sender := di.NewMailSender()
	notifier := useradapters.NewMailNotifier(sender, cfg.AppName, cfg.AppURL)
	objectStorage := di.NewObjectStorage(ctx)

	// Usecase
	tokens := jwtmw.NewGenerator(cfg.JWTSecret, cfg.SessionTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens)
	directoryUC := userusecase.NewDirectoryUsecase(cachedProfiles, userRepo)
	profileUC := userusecase.NewProfileUsecase(userRepo, cachedProfiles, notifier)
	avatarUC := userusecase.NewAvatarUsecase(imaging.NewProcessor(cfg.AvatarSmall, cfg.AvatarLarge), objectStorage, userRepo, cachedProfiles)
	reminderUC := di.NewReminderUsecase(cfg, db, store, sender)

	authn := jwtmw.NewAuthenticator(jwtmw.NewVerifier(cfg.JWTSecret), authUC)

	// Handler
	handlers := router.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC, authhandler.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain}),
		User:     userhandler.NewUserHandler(directoryUC, profileUC, avatarUC),
		Reminder: userhandler.NewReminderHandler(reminderUC, cfg.CronSecret),
		SMS:      notificationhandler.NewSMSHandler(di.NewSMSSender()),
		Health:   platformhandler.NewHealthHandler(infradb.Pinger{DB: db}, redisPinger(store)),
		Pages:    navhandler.NewPageHandler(authn, directoryUC),
	}

	// ルータ生成
	engine := router.NewRouter(handlers, router.Guards{
		Authenticator: authn,
		Roles:         directoryUC,
		Limiters:      di.NewLimiters(store),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// redisPinger はRedis未設定時にnilを返し、ヘルスチェックで "disabled" と表示させます。
func redisPinger(store *cache.Store) platformhandler.Pinger {
	if !store.Available() {
		return nil
	}
	return store
}
