package usecase

// Caller identifies the authenticated principal of a request.
type Caller struct {
	UserID    string
	SessionID string
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}
