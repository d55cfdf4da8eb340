// Package items persists grid cells. Positions are unique per container;
// the database enforces it and violations surface as
// common.ErrConstraintViolation.
package items

import (
	"context"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

type Repository interface {
	// ListByContainer returns the container's items ordered by position.
	ListByContainer(ctx context.Context, containerID string) ([]grid.Item, error)
	Get(ctx context.Context, containerID, itemID string) (grid.Item, error)
	Create(ctx context.Context, item grid.Item) (grid.Item, error)
	UpdatePosition(ctx context.Context, containerID, itemID string, position int) (grid.Item, error)
	UpdatePayload(ctx context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error)
	Delete(ctx context.Context, containerID, itemID string) error
}
