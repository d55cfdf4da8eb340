// Package users stores gridplanner accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gridplanner/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in its ID. A taken username yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
