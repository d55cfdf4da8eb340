// Package containers stores grids and resolves a user's access to them.
package containers

import (
	"context"

	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Container) (*models.Container, error)
	// ListForUser returns containers the user owns or has been granted,
	// with Permission filled in.
	ListForUser(ctx context.Context, userID string) ([]models.Container, error)
	// Permission returns the user's access level on the container, or ""
	// when the container exists but the user has none. A missing
	// container yields common.ErrorNotFound.
	Permission(ctx context.Context, containerID, userID string) (string, error)
}
