package models

import "time"

// RefreshToken is a redeemable session. Only the digest of the token the
// client holds is stored.
type RefreshToken struct {
	Digest    string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
