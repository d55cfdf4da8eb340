package client

import (
	"context"

	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

// Client is the remote gridplanner API as seen by client services. Its
// item methods form the Data Store the reconciliation engine, the snapshot
// loader and the legacy autosave run against.
type Client interface {
	Close() error

	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error
	SetTokens(access, refresh string)
	Tokens() (access, refresh string)

	CreateContainer(ctx context.Context, name string) (models.Container, error)
	ListContainers(ctx context.Context) ([]models.Container, error)

	ListItems(ctx context.Context, containerID string) ([]grid.Item, error)
	CreateItem(ctx context.Context, item grid.Item) (grid.Item, error)
	UpdatePosition(ctx context.Context, containerID, itemID string, position int) (grid.Item, error)
	UpdatePayload(ctx context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error)
	DeleteItem(ctx context.Context, containerID, itemID string) error

	GrantShare(ctx context.Context, containerID, grantee string) (models.Share, error)
	RevokeShare(ctx context.Context, containerID, grantee string) error
	ListShares(ctx context.Context, containerID string) ([]models.Share, error)

	ListComments(ctx context.Context, containerID, itemID string) ([]models.Comment, error)
	AddComment(ctx context.Context, containerID, itemID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, commentID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error

	UploadURL(ctx context.Context, containerID, contentType string) (models.SignedURL, error)
	DownloadURL(ctx context.Context, key string) (models.SignedURL, error)
	DeleteObject(ctx context.Context, key string) error
	ListObjects(ctx context.Context, containerID string) ([]models.Object, error)
}
