package gridrpc

import (
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type Container struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateContainerRequest struct {
	Name string `json:"name"`
}

type ListContainersResponse struct {
	Containers []Container `json:"containers"`
}

type Payload struct {
	ImageKeys   []string   `json:"image_keys,omitempty"`
	Caption     string     `json:"caption,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type Item struct {
	ID          string    `json:"id"`
	ContainerID string    `json:"container_id"`
	Position    int       `json:"position"`
	Payload     Payload   `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListItemsRequest struct {
	ContainerID string `json:"container_id"`
}

type ListItemsResponse struct {
	Items []Item `json:"items"`
}

type CreateItemRequest struct {
	Item Item `json:"item"`
}

type UpdateItemPositionRequest struct {
	ContainerID string `json:"container_id"`
	ItemID      string `json:"item_id"`
	Position    int    `json:"position"`
}

type UpdateItemPayloadRequest struct {
	ContainerID string  `json:"container_id"`
	ItemID      string  `json:"item_id"`
	Payload     Payload `json:"payload"`
}

type DeleteItemRequest struct {
	ContainerID string `json:"container_id"`
	ItemID      string `json:"item_id"`
}

type Share struct {
	ContainerID string    `json:"container_id"`
	GranteeID   string    `json:"grantee_id"`
	GranteeName string    `json:"grantee_name"`
	Permission  string    `json:"permission"`
	CreatedAt   time.Time `json:"created_at"`
}

type GrantShareRequest struct {
	ContainerID string `json:"container_id"`
	Grantee     string `json:"grantee"`
	Permission  string `json:"permission"`
}

type RevokeShareRequest struct {
	ContainerID string `json:"container_id"`
	Grantee     string `json:"grantee"`
}

type ListSharesRequest struct {
	ContainerID string `json:"container_id"`
}

type ListSharesResponse struct {
	Shares []Share `json:"shares"`
}

type Comment struct {
	ID          string    `json:"id"`
	ContainerID string    `json:"container_id"`
	ItemID      string    `json:"item_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListCommentsRequest struct {
	ContainerID string `json:"container_id"`
	ItemID      string `json:"item_id"`
}

type ListCommentsResponse struct {
	Comments []Comment `json:"comments"`
}

type AddCommentRequest struct {
	ContainerID string `json:"container_id"`
	ItemID      string `json:"item_id"`
	Content     string `json:"content"`
}

type UpdateCommentRequest struct {
	CommentID string `json:"comment_id"`
	Content   string `json:"content"`
}

type DeleteCommentRequest struct {
	CommentID string `json:"comment_id"`
}

type UploadURLRequest struct {
	ContainerID string `json:"container_id"`
	ContentType string `json:"content_type"`
}

type DownloadURLRequest struct {
	Key string `json:"key"`
}

type SignedURL struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ObjectRequest struct {
	Key string `json:"key"`
}

type ListObjectsRequest struct {
	Prefix string `json:"prefix"`
}

type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type ListObjectsResponse struct {
	Objects []Object `json:"objects"`
}

func PayloadFromGrid(p grid.Payload) Payload {
	p = p.Clone()
	return Payload{ImageKeys: p.ImageKeys, Caption: p.Caption, ScheduledAt: p.ScheduledAt, Notes: p.Notes}
}

func (p Payload) ToGrid() grid.Payload {
	return grid.Payload{ImageKeys: p.ImageKeys, Caption: p.Caption, ScheduledAt: p.ScheduledAt, Notes: p.Notes}.Clone()
}

func ItemFromGrid(it grid.Item) Item {
	return Item{
		ID:          it.ID,
		ContainerID: it.ContainerID,
		Position:    it.Position,
		Payload:     PayloadFromGrid(it.Payload),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func (it Item) ToGrid() grid.Item {
	return grid.Item{
		ID:          it.ID,
		ContainerID: it.ContainerID,
		Position:    it.Position,
		Payload:     it.Payload.ToGrid(),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// CommentEvent is pushed to websocket subscribers of an item's thread.
// Type is one of "insert", "update" or "delete".
type CommentEvent struct {
	Type    string  `json:"type"`
	Comment Comment `json:"comment"`
}
