package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gridplanner/internal/client/client"
	"github.com/dmitrijs2005/gridplanner/internal/client/comments"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/common"
)

// Watcher streams push events of one item's thread.
type Watcher interface {
	Watch(ctx context.Context, token, containerID, itemID string, fn func(comments.Event)) error
}

type CommentService interface {
	List(ctx context.Context, containerID, itemID string) ([]models.Comment, error)
	Add(ctx context.Context, containerID, itemID, content string) (models.Comment, error)
	Edit(ctx context.Context, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, commentID string) error
	// Watch calls fn with the merged thread every time a pushed event
	// changes it, until ctx is done.
	Watch(ctx context.Context, containerID, itemID string, fn func(thread []models.Comment, ev comments.Event)) error
}

type commentService struct {
	client  client.Client
	watcher Watcher
}

func NewCommentService(c client.Client, w Watcher) CommentService {
	return &commentService{client: c, watcher: w}
}

func commentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("comment is empty: %w", common.ErrorValidation)
	}
	return content, nil
}

func (s *commentService) List(ctx context.Context, containerID, itemID string) ([]models.Comment, error) {
	cs, err := s.client.ListComments(ctx, containerID, itemID)
	if err != nil {
		return nil, err
	}
	return comments.NewThread(cs).Comments(), nil
}

func (s *commentService) Add(ctx context.Context, containerID, itemID, content string) (models.Comment, error) {
	content, err := commentContent(content)
	if err != nil {
		return models.Comment{}, err
	}
	return s.client.AddComment(ctx, containerID, itemID, content)
}

func (s *commentService) Edit(ctx context.Context, commentID, content string) (models.Comment, error) {
	content, err := commentContent(content)
	if err != nil {
		return models.Comment{}, err
	}
	return s.client.UpdateComment(ctx, commentID, content)
}

func (s *commentService) Delete(ctx context.Context, commentID string) error {
	return s.client.DeleteComment(ctx, commentID)
}

func (s *commentService) Watch(ctx context.Context, containerID, itemID string, fn func([]models.Comment, comments.Event)) error {
	if s.watcher == nil {
		return fmt.Errorf("push channel not configured: %w", common.ErrUnavailable)
	}
	initial, err := s.client.ListComments(ctx, containerID, itemID)
	if err != nil {
		return err
	}
	thread := comments.NewThread(initial)

	access, _ := s.client.Tokens()
	if access == "" {
		return client.ErrUnauthorized
	}
	return s.watcher.Watch(ctx, access, containerID, itemID, func(ev comments.Event) {
		if thread.Apply(ev) {
			fn(thread.Comments(), ev)
		}
	})
}
