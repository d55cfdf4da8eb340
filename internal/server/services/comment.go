package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/repomanager"
	"github.com/oklog/ulid/v2"
)

// Comment event types delivered over the push channel.
const (
	CommentInserted = "insert"
	CommentUpdated  = "update"
	CommentDeleted  = "delete"
)

// CommentPublisher fans comment changes out to live subscribers.
type CommentPublisher interface {
	Publish(eventType string, c models.Comment)
}

// CommentService lets anyone with read access comment on an item; only the
// author may edit or delete a comment.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	grids       *GridService
	publisher   CommentPublisher
	maxLength   int
	logger      logging.Logger
	now         func() time.Time
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, grids *GridService, publisher CommentPublisher, maxLength int, logger logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		grids:       grids,
		publisher:   publisher,
		maxLength:   maxLength,
		logger:      logger.With("module", "comment_service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *CommentService) validate(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > s.maxLength {
		return "", fmt.Errorf("comment must be 1..%d characters: %w", s.maxLength, common.ErrorValidation)
	}
	return content, nil
}

func (s *CommentService) List(ctx context.Context, userID, containerID, itemID string) ([]models.Comment, error) {
	if _, err := s.grids.Authorize(ctx, userID, containerID, false); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByItem(ctx, containerID, itemID)
}

func (s *CommentService) Add(ctx context.Context, userID, containerID, itemID, content string) (*models.Comment, error) {
	content, err := s.validate(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.grids.Authorize(ctx, userID, containerID, false); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Items(s.db).Get(ctx, containerID, itemID); err != nil {
		return nil, err
	}
	author, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		ID:          ulid.Make().String(),
		ContainerID: containerID,
		ItemID:      itemID,
		AuthorID:    userID,
		AuthorName:  author.UserName,
		Content:     content,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, CommentInserted, *c)
	return c, nil
}

// owned loads the comment and checks authorship.
func (s *CommentService) owned(ctx context.Context, userID, commentID string) (*models.Comment, error) {
	c, err := s.repomanager.Comments(s.db).Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, fmt.Errorf("comment %s: %w", commentID, common.ErrPermissionDenied)
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, userID, commentID, content string) (*models.Comment, error) {
	content, err := s.validate(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, commentID); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Comments(s.db).Update(ctx, commentID, userID, content, s.now())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, CommentUpdated, *c)
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if err := s.repomanager.Comments(s.db).Delete(ctx, commentID, userID); err != nil {
		return err
	}
	c.UpdatedAt = s.now()
	s.publish(ctx, CommentDeleted, *c)
	return nil
}

func (s *CommentService) publish(ctx context.Context, eventType string, c models.Comment) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(eventType, c)
	s.logger.Debug(ctx, "comment event published", "type", eventType, "comment_id", c.ID, "item_id", c.ItemID)
}
