// Package refreshtokens stores the digests of refresh tokens issued next to
// short-lived access tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.RefreshToken) error

	// Consume deletes the token and returns what was stored, so a token
	// can be redeemed once. Unknown digests yield common.ErrorNotFound.
	Consume(ctx context.Context, digest string) (*models.RefreshToken, error)

	// DeleteExpired purges tokens that expired before now and returns how
	// many rows went away.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
