// Package shares stores read grants on containers.
package shares

import (
	"context"

	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type Repository interface {
	// Upsert creates the grant or updates its permission.
	Upsert(ctx context.Context, s *models.Share) (*models.Share, error)
	// Delete is idempotent.
	Delete(ctx context.Context, containerID, granteeID string) error
	ListByContainer(ctx context.Context, containerID string) ([]models.Share, error)
}
