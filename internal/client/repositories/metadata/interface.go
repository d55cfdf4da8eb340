// Package metadata stores small client-side key/value pairs: the signed in
// user and the current token pair.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyUsername     = "username"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// SessionKeys are the keys a signed in client keeps.
var SessionKeys = []string{KeyUsername, KeyAccessToken, KeyRefreshToken}

type Repository interface {
	// GetStrings returns the stored values of keys. Missing keys are
	// absent from the result.
	GetStrings(ctx context.Context, keys ...string) (map[string]string, error)
	// SetStrings upserts every pair in one statement.
	SetStrings(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}
