package models

import "time"

// Permission levels a user can hold on a container.
const (
	PermissionOwner = "owner"
	PermissionRead  = "read"
)

// Container is one grid owned by a user.
type Container struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time

	// Permission is the caller's access level. It is filled by queries that
	// resolve access and is not a column.
	Permission string
}

// Share grants a non-owner access to a container.
type Share struct {
	ContainerID string
	GranteeID   string
	GranteeName string
	Permission  string
	CreatedAt   time.Time
}

// Comment is a note left on one item of a container.
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
