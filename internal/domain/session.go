package domain

import "time"

// SessionToken is an opaque credential bound to one identity. Expiry is checked
// lazily at validation time; expired tokens stay in the store until overwritten
// or evicted.
type SessionToken struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Area      string    `json:"area"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is unusable at the given instant. A token
// is usable only strictly before its expiry.
func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
