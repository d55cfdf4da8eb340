package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Payload bounds.
const (
	MaxCaptionLength  = 2200
	MaxNotesLength    = 5000
	MaxImageKeys      = 10
	maxContainerName  = 100
	maxItemIDLength   = 64
	maxImageKeyLength = 512
)

// GridService owns containers and their items. Owners may mutate; read
// grantees may only list.
type GridService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewGridService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *GridService {
	return &GridService{db: db, repomanager: m, logger: logger.With("module", "grid_service")}
}

func (s *GridService) CreateContainer(ctx context.Context, userID, name string) (*models.Container, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxContainerName {
		return nil, fmt.Errorf("container name must be 1..%d characters: %w", maxContainerName, common.ErrorValidation)
	}

	c, err := s.repomanager.Containers(s.db).Create(ctx, &models.Container{ID: uuid.NewString(), OwnerID: userID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("error creating container: %w", err)
	}
	s.logger.Info(ctx, "container created", "container_id", c.ID, "user_id", userID)
	return c, nil
}

func (s *GridService) ListContainers(ctx context.Context, userID string) ([]models.Container, error) {
	return s.repomanager.Containers(s.db).ListForUser(ctx, userID)
}

// Authorize returns the caller's permission on the container, failing with
// common.ErrPermissionDenied when it has none or when owner rights are
// required but the caller is only a grantee.
func (s *GridService) Authorize(ctx context.Context, userID, containerID string, needOwner bool) (string, error) {
	perm, err := s.repomanager.Containers(s.db).Permission(ctx, containerID, userID)
	if err != nil {
		return "", err
	}
	if perm == "" || (needOwner && perm != models.PermissionOwner) {
		return "", fmt.Errorf("container %s: %w", containerID, common.ErrPermissionDenied)
	}
	return perm, nil
}

func (s *GridService) ListItems(ctx context.Context, userID, containerID string) ([]grid.Item, error) {
	if _, err := s.Authorize(ctx, userID, containerID, false); err != nil {
		return nil, err
	}
	return s.repomanager.Items(s.db).ListByContainer(ctx, containerID)
}

// CreateItem stores a new item. The caller may pick the ID (clients do, so
// optimistic rows keep their identity); an empty ID gets a uuid.
func (s *GridService) CreateItem(ctx context.Context, userID string, item grid.Item) (grid.Item, error) {
	if _, err := s.Authorize(ctx, userID, item.ContainerID, true); err != nil {
		return grid.Item{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if len(item.ID) > maxItemIDLength {
		return grid.Item{}, fmt.Errorf("item id too long: %w", common.ErrorValidation)
	}
	if err := validatePosition(item.Position); err != nil {
		return grid.Item{}, err
	}
	if err := ValidatePayload(item.Payload); err != nil {
		return grid.Item{}, err
	}

	created, err := s.repomanager.Items(s.db).Create(ctx, item)
	if err != nil {
		return grid.Item{}, err
	}
	s.logger.Debug(ctx, "item created", "container_id", created.ContainerID, "item_id", created.ID, "position", created.Position)
	return created, nil
}

func (s *GridService) UpdateItemPosition(ctx context.Context, userID, containerID, itemID string, position int) (grid.Item, error) {
	if _, err := s.Authorize(ctx, userID, containerID, true); err != nil {
		return grid.Item{}, err
	}
	if err := validatePosition(position); err != nil {
		return grid.Item{}, err
	}
	return s.repomanager.Items(s.db).UpdatePosition(ctx, containerID, itemID, position)
}

func (s *GridService) UpdateItemPayload(ctx context.Context, userID, containerID, itemID string, payload grid.Payload) (grid.Item, error) {
	if _, err := s.Authorize(ctx, userID, containerID, true); err != nil {
		return grid.Item{}, err
	}
	if err := ValidatePayload(payload); err != nil {
		return grid.Item{}, err
	}
	return s.repomanager.Items(s.db).UpdatePayload(ctx, containerID, itemID, payload)
}

func (s *GridService) DeleteItem(ctx context.Context, userID, containerID, itemID string) error {
	if _, err := s.Authorize(ctx, userID, containerID, true); err != nil {
		return err
	}
	return s.repomanager.Items(s.db).Delete(ctx, containerID, itemID)
}

func validatePosition(p int) error {
	if p < 0 {
		return fmt.Errorf("position %d is negative: %w", p, common.ErrorValidation)
	}
	// items.position is an INTEGER column.
	if p > math.MaxInt32 {
		return fmt.Errorf("position %d out of range: %w", p, common.ErrorValidation)
	}
	return nil
}

// ValidatePayload enforces the size bounds of item content.
func ValidatePayload(p grid.Payload) error {
	if utf8.RuneCountInString(p.Caption) > MaxCaptionLength {
		return fmt.Errorf("caption longer than %d characters: %w", MaxCaptionLength, common.ErrorValidation)
	}
	if utf8.RuneCountInString(p.Notes) > MaxNotesLength {
		return fmt.Errorf("notes longer than %d characters: %w", MaxNotesLength, common.ErrorValidation)
	}
	if len(p.ImageKeys) > MaxImageKeys {
		return fmt.Errorf("more than %d images: %w", MaxImageKeys, common.ErrorValidation)
	}
	for _, k := range p.ImageKeys {
		if k == "" || len(k) > maxImageKeyLength {
			return fmt.Errorf("invalid image key %q: %w", k, common.ErrorValidation)
		}
	}
	return nil
}
