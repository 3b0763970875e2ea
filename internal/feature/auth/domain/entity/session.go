// Package entity defines the domain model of the auth feature.
package entity

import "time"

// Session represents a user's login session. The session token references it by ID.
type Session struct {
	ID        string     `json:"id"`        // 64-character hex string
	UserID    string     `json:"userId"`    // Associated user ID
	UserAgent string     `json:"userAgent"` // Client's User-Agent header
	IPAddress string     `json:"ipAddress"` // Client's IP address
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"` // nil if active
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
