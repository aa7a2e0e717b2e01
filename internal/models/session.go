package models

import "time"

// Session binds an opaque cookie token to a user id. It carries the id only;
// resolution always re-reads the user row so stale user fields cannot leak.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its server-side TTL at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
