// Package models defines client-side data models used by the gridplanner CLI.
package models

import "time"

// Container is a grid the current user owns or has been granted access to.
type Container struct {
	ID         string
	OwnerID    string
	Name       string
	Permission string
	CreatedAt  time.Time
}

// IsOwner reports whether the current user may mutate the container.
func (c Container) IsOwner() bool { return c.Permission == "owner" }

// Share is a read grant on a container.
type Share struct {
	ContainerID string
	GranteeID   string
	GranteeName string
	Permission  string
	CreatedAt   time.Time
}

// Comment is one entry of an item's discussion thread.
type Comment struct {
	ID          string
	ContainerID string
	ItemID      string
	AuthorID    string
	AuthorName  string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignedURL is a presigned request valid until ExpiresAt.
type SignedURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Object describes a stored image.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}
