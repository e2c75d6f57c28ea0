package model

import "time"

// SessionRecord is one live refresh-token session, keyed by the token's
// jti claim. A refresh token whose jti has no record is dead.
type SessionRecord struct {
	JTI        string         `json:"jti"`
	AccountID  uint           `json:"account_id"`
	Username   string         `json:"username"`
	RemoteAddr string         `json:"remote_addr,omitempty"`
	IssuedAt   time.Time      `json:"issued_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Expired reports whether the session is past its expiry.
func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Logger provides the minimal logging contract required by the auth domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
