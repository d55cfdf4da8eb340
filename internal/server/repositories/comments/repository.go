// Package comments stores per-item discussion threads.
package comments

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	// ListByItem returns comments oldest first.
	ListByItem(ctx context.Context, containerID, itemID string) ([]models.Comment, error)
	// Update and Delete only touch rows written by authorID; anything else
	// is reported as common.ErrorNotFound.
	Update(ctx context.Context, id, authorID, content string, at time.Time) (*models.Comment, error)
	Delete(ctx context.Context, id, authorID string) error
}
