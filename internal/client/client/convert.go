package client

import (
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
)

func containerFromWire(c gridrpc.Container) models.Container {
	return models.Container{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name, Permission: c.Permission, CreatedAt: c.CreatedAt}
}

func shareFromWire(s gridrpc.Share) models.Share {
	return models.Share{
		ContainerID: s.ContainerID,
		GranteeID:   s.GranteeID,
		GranteeName: s.GranteeName,
		Permission:  s.Permission,
		CreatedAt:   s.CreatedAt,
	}
}

// CommentFromWire converts a wire comment, including those carried by push
// events.
func CommentFromWire(c gridrpc.Comment) models.Comment {
	return models.Comment{
		ID:          c.ID,
		ContainerID: c.ContainerID,
		ItemID:      c.ItemID,
		AuthorID:    c.AuthorID,
		AuthorName:  c.AuthorName,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func signedFromWire(s gridrpc.SignedURL) models.SignedURL {
	return models.SignedURL{Key: s.Key, URL: s.URL, ExpiresAt: s.ExpiresAt}
}
