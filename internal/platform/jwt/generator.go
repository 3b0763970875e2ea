// Package jwtmw issues and verifies session tokens and provides the gin authentication middleware.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// ErrEmptySecret is returned when a token is issued or verified without a secret.
var ErrEmptySecret = errors.New("jwt secret is empty")

// Claims are the claims carried by a session token.
// Subject is the user ID and SessionID references the server-side session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Generator signs HS256 session tokens.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Expiration returns the lifetime of issued tokens.
func (g *Generator) Expiration() time.Duration {
	return g.expiration
}

// GenerateToken creates a signed token for the user's session and returns it with its expiry.
func (g *Generator) GenerateToken(userID, sessionID string) (string, time.Time, error) {
	if len(g.secret) == 0 {
		return "", time.Time{}, ErrEmptySecret
	}
	now := g.now()
	expiresAt := now.Add(g.expiration)
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}
