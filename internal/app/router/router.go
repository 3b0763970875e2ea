// Package router はHTTPルーティングを組み立てます。
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "profile_backend/internal/feature/auth/transport/handler"
	navhandler "profile_backend/internal/feature/navigation/transport/handler"
	notificationhandler "profile_backend/internal/feature/notification/transport/handler"
	"profile_backend/internal/feature/user/domain/entity"
	userhandler "profile_backend/internal/feature/user/transport/handler"
	platformhandler "profile_backend/internal/platform/http/handler"
	"profile_backend/internal/platform/http/middleware"
	jwtmw "profile_backend/internal/platform/jwt"
	"profile_backend/internal/platform/ratelimit"
)

// Handlers はルーターに登録するハンドラーです。
type Handlers struct {
	Auth     *authhandler.AuthHandler
	User     *userhandler.UserHandler
	Reminder *userhandler.ReminderHandler
	SMS      *notificationhandler.SMSHandler
	Health   *platformhandler.HealthHandler
	Pages    *navhandler.PageHandler
}

// Guards はルーターが使う認証・認可・レート制限の部品です。
type Guards struct {
	Authenticator *jwtmw.Authenticator
	Roles         middleware.RoleResolver
	Limiters      *ratelimit.Limiters
}

// NewRouter はAPIとページのルートを登録したエンジンを返します。
func NewRouter(h Handlers, g Guards) *gin.Engine {
	r := gin.Default()

	// 導通確認用（レート制限なし）
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	// /api 以下はすべてルートクラスごとのレート制限を通す
	// 識別子は検証済みトークンのセッションID、無ければクライアントIP
	api := r.Group("/api")
	api.Use(middleware.RateLimit(g.Limiters, middleware.SessionOrIP(g.Authenticator.Verifier())))
	{
		api.GET("/redis/ping", h.Health.RedisPing)
		api.POST("/cron/avatar-reminder", h.Reminder.AvatarReminder)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/signout", g.Authenticator.AuthRequired(), h.Auth.Signout)
		auth.GET("/session", g.Authenticator.AuthRequired(), h.Auth.Session)
	}

	// 認証必須のルート
	protected := api.Group("")
	protected.Use(g.Authenticator.AuthRequired())
	{
		protected.GET("/user", h.User.GetCurrent)
		protected.PATCH("/user", h.User.UpdateProfile)
		protected.GET("/user/role", h.User.GetRole)
		// 他ユーザーの参照はセッションのユーザー単位でさらに制限する
		protected.GET("/user/:id", middleware.Limit(g.Limiters.UserLookup, middleware.SessionUser), h.User.GetUser)
		protected.POST("/profile/upload", h.User.UploadAvatar)
	}

	// 管理者のみ（ロールはストアから解決）
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(g.Roles, entity.RoleAdmin))
	{
		admin.GET("/admin/users", h.User.ListUsers)
		admin.POST("/send-sms", h.SMS.Send)
	}

	// ページ遷移のガード
	pages := r.Group("/")
	pages.Use(navhandler.EdgeGuard())
	{
		pages.GET("/login", h.Pages.Public)
		pages.GET("/register", h.Pages.Public)
		pages.GET("/admin", h.Pages.Guard(entity.RoleAdmin))
		pages.GET("/admin/users", h.Pages.Guard(entity.RoleAdmin))
		pages.GET("/user", h.Pages.Guard(entity.RoleUser))
		pages.GET("/dashboard", h.Pages.Guard(entity.RoleUser, entity.RoleAdmin))
	}

	return r
}
