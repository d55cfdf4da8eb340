package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/repomanager"
)

// ShareService manages read grants. Only the container owner may grant,
// revoke, or list them.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	grids       *GridService
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, grids *GridService) *ShareService {
	return &ShareService{db: db, repomanager: m, grids: grids}
}

// Grant gives the user named grantee the permission on the container.
// Granting the same user twice updates the existing grant.
func (s *ShareService) Grant(ctx context.Context, ownerID, containerID, grantee, permission string) (*models.Share, error) {
	if permission == "" {
		permission = models.PermissionRead
	}
	if permission != models.PermissionRead {
		return nil, fmt.Errorf("unsupported permission %q: %w", permission, common.ErrorValidation)
	}
	if _, err := s.grids.Authorize(ctx, ownerID, containerID, true); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(grantee))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %q: %w", grantee, common.ErrorNotFound)
		}
		return nil, err
	}
	if user.ID == ownerID {
		return nil, fmt.Errorf("cannot share a container with its owner: %w", common.ErrorValidation)
	}

	share, err := s.repomanager.Shares(s.db).Upsert(ctx, &models.Share{
		ContainerID: containerID,
		GranteeID:   user.ID,
		Permission:  permission,
	})
	if err != nil {
		return nil, err
	}
	share.GranteeName = user.UserName
	return share, nil
}

// Revoke removes the grant. Revoking a grant that does not exist, or for a
// user that does not exist, succeeds.
func (s *ShareService) Revoke(ctx context.Context, ownerID, containerID, grantee string) error {
	if _, err := s.grids.Authorize(ctx, ownerID, containerID, true); err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(grantee))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return s.repomanager.Shares(s.db).Delete(ctx, containerID, user.ID)
}

func (s *ShareService) List(ctx context.Context, ownerID, containerID string) ([]models.Share, error) {
	if _, err := s.grids.Authorize(ctx, ownerID, containerID, true); err != nil {
		return nil, err
	}
	return s.repomanager.Shares(s.db).ListByContainer(ctx, containerID)
}
