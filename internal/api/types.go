// Package api defines the JSON bodies exchanged over the HTTP API.
package api

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	CodeUnauthorized     = "unauthorized"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeRateLimited      = "rate_limited"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string       `json:"error"`
	Code       string       `json:"code,omitempty"`
	Details    []FieldError `json:"details,omitempty"`
	RetryAfter *int         `json:"retryAfter,omitempty"`
}

// FieldError describes one rejected field of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageResponse is a generic acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse wraps the result of a mutating operation.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// UserEnvelope wraps a single user profile.
type UserEnvelope struct {
	User any `json:"user"`
}

// RoleResponse is returned by GET /api/user/role.
type RoleResponse struct {
	Role RoleName `json:"role"`
}

// RoleName is the nested role object of RoleResponse.
type RoleName struct {
	Name string `json:"name"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      any    `json:"user"`
}

// SessionResponse is returned by GET /api/auth/session.
type SessionResponse struct {
	User    any         `json:"user"`
	Session SessionInfo `json:"session"`
}

// SessionInfo is the public view of a session.
type SessionInfo struct {
	ID        string `json:"id"`
	UserAgent string `json:"userAgent"`
	IPAddress string `json:"ipAddress"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

// PingResponse is returned by GET /api/redis/ping.
type PingResponse struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}

// SentResponse reports how many notifications a batch job delivered.
type SentResponse struct {
	Success bool `json:"success"`
	Sent    int  `json:"sent"`
}
