// Package middleware はレート制限とロールゲートのGinミドルウェアを提供します。
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
	jwtmw "profile_backend/internal/platform/jwt"
	"profile_backend/internal/platform/ratelimit"
)

// ClaimsParser はトークンを検証してクレームを返します。*jwtmw.Verifier が満たします。
type ClaimsParser interface {
	Parse(token string) (*jwtmw.Claims, error)
}

// IdentityFunc はリクエストのレート制限キーの識別子を返します。
type IdentityFunc func(c *gin.Context) string

// ClassFor はリクエストのルートクラスを返します。
//   - /api/auth/ 以下は auth
//   - POST, PUT, PATCH, DELETE は write
//   - GET は read
//   - それ以外は api
func ClassFor(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/api/auth/") {
		return ratelimit.ClassAuth
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return ratelimit.ClassWrite
	case http.MethodGet:
		return ratelimit.ClassRead
	default:
		return ratelimit.ClassAPI
	}
}

// SessionOrIP は検証可能なセッショントークンがあれば "session:<sid>"、なければ "ip:<client ip>" を返します。
// セッションストアは参照せず、署名と有効期限のみを確認します。
func SessionOrIP(parser ClaimsParser) IdentityFunc {
	return func(c *gin.Context) string {
		if parser != nil {
			if token := jwtmw.TokenFromRequest(c.Request); token != "" {
				if claims, err := parser.Parse(token); err == nil {
					return "session:" + claims.SessionID
				}
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// SessionUser は認証済みのユーザーIDを "user:<uid>" として返します。AuthRequired の後で使います。
func SessionUser(c *gin.Context) string {
	if p, ok := jwtmw.PrincipalFrom(c); ok {
		return "user:" + p.UserID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit はルートクラスごとのLimiterでリクエストを制限します。
func RateLimit(limiters *ratelimit.Limiters, identity IdentityFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var l *ratelimit.Limiter
		switch ClassFor(c.Request) {
		case ratelimit.ClassAuth:
			l = limiters.Auth
		case ratelimit.ClassWrite:
			l = limiters.Write
		case ratelimit.ClassRead:
			l = limiters.Read
		default:
			l = limiters.API
		}
		enforce(c, l, identity(c))
	}
}

// Limit は単一のLimiterでリクエストを制限します。
func Limit(l *ratelimit.Limiter, identity IdentityFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		enforce(c, l, identity(c))
	}
}

func enforce(c *gin.Context, l *ratelimit.Limiter, identity string) {
	d := l.Allow(c.Request.Context(), identity, 1)

	c.Header("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	if d.Allowed {
		c.Next()
		return
	}

	retry := d.RetryAfterSeconds()
	c.Header("Retry-After", strconv.Itoa(retry))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{
		Error:      "Too many requests, please try again later.",
		Code:       api.CodeRateLimited,
		RetryAfter: &retry,
	})
}
