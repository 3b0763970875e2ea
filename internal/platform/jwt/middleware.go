package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
)

const (
	// ContextUserID is the gin context key of the authenticated user ID.
	ContextUserID = "userID"
	// ContextSessionID is the gin context key of the authenticated session ID.
	ContextSessionID = "sessionID"
	// SessionCookieName is the cookie that may carry the session token.
	SessionCookieName = "session_token"
)

// ErrSessionRejected is returned when the token is valid but its session is not.
var ErrSessionRejected = errors.New("session rejected")

// SessionValidator checks that a session exists, is active and belongs to the user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID, userID string) error
}

// Principal is the identity resolved from a request.
type Principal struct {
	UserID    string
	SessionID string
}

// TokenFromRequest returns the session token from the Bearer header or the session cookie.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticator resolves requests to a Principal using the token and the session store.
type Authenticator struct {
	verifier *Verifier
	sessions SessionValidator
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(verifier *Verifier, sessions SessionValidator) *Authenticator {
	return &Authenticator{verifier: verifier, sessions: sessions}
}

// Verifier returns the token verifier.
func (a *Authenticator) Verifier() *Verifier {
	return a.verifier
}

// Authenticate verifies the token and its server-side session.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := a.verifier.Parse(token)
	if err != nil {
		return nil, err
	}
	if err := a.sessions.ValidateSession(ctx, claims.SessionID, claims.Subject); err != nil {
		return nil, errors.Join(ErrSessionRejected, err)
	}
	return &Principal{UserID: claims.Subject, SessionID: claims.SessionID}, nil
}

// AuthRequired returns a Gin middleware that restricts access to requests with an active session.
// On success the user and session IDs are stored in the context.
func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Code: api.CodeUnauthorized})
			return
		}

		p, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrEmptySecret) {
				// Server misconfiguration (JWT_SECRET not set)
				slog.Error("jwt secret is not configured")
				c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured", Code: api.CodeInternal})
				return
			}
			slog.Debug("authentication failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Code: api.CodeUnauthorized})
			return
		}

		c.Set(ContextUserID, p.UserID)
		c.Set(ContextSessionID, p.SessionID)
		c.Next()
	}
}

// PrincipalFrom returns the Principal stored by AuthRequired.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	uid := c.GetString(ContextUserID)
	if uid == "" {
		return Principal{}, false
	}
	return Principal{UserID: uid, SessionID: c.GetString(ContextSessionID)}, true
}
