package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/common"
)

type ShareService interface {
	Grant(ctx context.Context, containerID, grantee string) (models.Share, error)
	Revoke(ctx context.Context, containerID, grantee string) error
	List(ctx context.Context, containerID string) ([]models.Share, error)
}

type shareService struct {
	client client.Client
}

func NewShareService(c client.Client) ShareService {
	return &shareService{client: c}
}

func shareArgs(containerID, grantee string) (string, error) {
	grantee = strings.TrimSpace(grantee)
	if containerID == "" || grantee == "" {
		return "", fmt.Errorf("container and grantee are required: %w", common.ErrorValidation)
	}
	return grantee, nil
}

func (s *shareService) Grant(ctx context.Context, containerID, grantee string) (models.Share, error) {
	grantee, err := shareArgs(containerID, grantee)
	if err != nil {
		return models.Share{}, err
	}
	return s.client.GrantShare(ctx, containerID, grantee)
}

// Revoke succeeds when no grant exists.
func (s *shareService) Revoke(ctx context.Context, containerID, grantee string) error {
	grantee, err := shareArgs(containerID, grantee)
	if err != nil {
		return err
	}
	return s.client.RevokeShare(ctx, containerID, grantee)
}

func (s *shareService) List(ctx context.Context, containerID string) ([]models.Share, error) {
	return s.client.ListShares(ctx, containerID)
}
