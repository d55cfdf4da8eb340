package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/server/models"
	"github.com/dmitrijs2005/gridplanner/internal/server/push"
	"github.com/dmitrijs2005/gridplanner/internal/server/services"
	"google.golang.org/protobuf/types/known/emptypb"
)

type userSvc interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type gridSvc interface {
	CreateContainer(ctx context.Context, userID, name string) (*models.Container, error)
	ListContainers(ctx context.Context, userID string) ([]models.Container, error)
	ListItems(ctx context.Context, userID, containerID string) ([]grid.Item, error)
	CreateItem(ctx context.Context, userID string, item grid.Item) (grid.Item, error)
	UpdateItemPosition(ctx context.Context, userID, containerID, itemID string, position int) (grid.Item, error)
	UpdateItemPayload(ctx context.Context, userID, containerID, itemID string, payload grid.Payload) (grid.Item, error)
	DeleteItem(ctx context.Context, userID, containerID, itemID string) error
}

type shareSvc interface {
	Grant(ctx context.Context, ownerID, containerID, grantee, permission string) (*models.Share, error)
	Revoke(ctx context.Context, ownerID, containerID, grantee string) error
	List(ctx context.Context, ownerID, containerID string) ([]models.Share, error)
}

type commentSvc interface {
	List(ctx context.Context, userID, containerID, itemID string) ([]models.Comment, error)
	Add(ctx context.Context, userID, containerID, itemID, content string) (*models.Comment, error)
	Update(ctx context.Context, userID, commentID, content string) (*models.Comment, error)
	Delete(ctx context.Context, userID, commentID string) error
}

type storageSvc interface {
	UploadURL(ctx context.Context, userID, containerID, contentType string) (*services.SignedURL, error)
	DownloadURL(ctx context.Context, userID, key string) (*services.SignedURL, error)
	Delete(ctx context.Context, userID, key string) error
	List(ctx context.Context, userID, prefix string) ([]services.ObjectInfo, error)
}

func (s *GRPCServer) Register(ctx context.Context, req *gridrpc.RegisterRequest) (*gridrpc.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "user_id", user.ID)
	return &gridrpc.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *gridrpc.LoginRequest) (*gridrpc.TokenResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &gridrpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *gridrpc.RefreshTokenRequest) (*gridrpc.TokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &gridrpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*gridrpc.PingResponse, error) {
	return &gridrpc.PingResponse{Status: "OK"}, nil
}

func containerToWire(c models.Container) gridrpc.Container {
	return gridrpc.Container{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name, Permission: c.Permission, CreatedAt: c.CreatedAt}
}

func (s *GRPCServer) CreateContainer(ctx context.Context, req *gridrpc.CreateContainerRequest) (*gridrpc.Container, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.grids.CreateContainer(ctx, userID, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := containerToWire(*c)
	return &out, nil
}

func (s *GRPCServer) ListContainers(ctx context.Context, _ *emptypb.Empty) (*gridrpc.ListContainersResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.grids.ListContainers(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &gridrpc.ListContainersResponse{Containers: make([]gridrpc.Container, 0, len(list))}
	for _, c := range list {
		resp.Containers = append(resp.Containers, containerToWire(c))
	}
	return resp, nil
}

func (s *GRPCServer) ListItems(ctx context.Context, req *gridrpc.ListItemsRequest) (*gridrpc.ListItemsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.grids.ListItems(ctx, userID, req.ContainerID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &gridrpc.ListItemsResponse{Items: make([]gridrpc.Item, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, gridrpc.ItemFromGrid(it))
	}
	return resp, nil
}

func (s *GRPCServer) CreateItem(ctx context.Context, req *gridrpc.CreateItemRequest) (*gridrpc.Item, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	it, err := s.grids.CreateItem(ctx, userID, req.Item.ToGrid())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := gridrpc.ItemFromGrid(it)
	return &out, nil
}

func (s *GRPCServer) UpdateItemPosition(ctx context.Context, req *gridrpc.UpdateItemPositionRequest) (*gridrpc.Item, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	it, err := s.grids.UpdateItemPosition(ctx, userID, req.ContainerID, req.ItemID, req.Position)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := gridrpc.ItemFromGrid(it)
	return &out, nil
}

func (s *GRPCServer) UpdateItemPayload(ctx context.Context, req *gridrpc.UpdateItemPayloadRequest) (*gridrpc.Item, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	it, err := s.grids.UpdateItemPayload(ctx, userID, req.ContainerID, req.ItemID, req.Payload.ToGrid())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := gridrpc.ItemFromGrid(it)
	return &out, nil
}

func (s *GRPCServer) DeleteItem(ctx context.Context, req *gridrpc.DeleteItemRequest) (*emptypb.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.grids.DeleteItem(ctx, userID, req.ContainerID, req.ItemID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func shareToWire(sh models.Share) gridrpc.Share {
	return gridrpc.Share{
		ContainerID: sh.ContainerID,
		GranteeID:   sh.GranteeID,
		GranteeName: sh.GranteeName,
		Permission:  sh.Permission,
		CreatedAt:   sh.CreatedAt,
	}
}

func (s *GRPCServer) GrantShare(ctx context.Context, req *gridrpc.GrantShareRequest) (*gridrpc.Share, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sh, err := s.shares.Grant(ctx, userID, req.ContainerID, req.Grantee, req.Permission)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := shareToWire(*sh)
	return &out, nil
}

func (s *GRPCServer) RevokeShare(ctx context.Context, req *gridrpc.RevokeShareRequest) (*emptypb.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.shares.Revoke(ctx, userID, req.ContainerID, req.Grantee); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListShares(ctx context.Context, req *gridrpc.ListSharesRequest) (*gridrpc.ListSharesResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.shares.List(ctx, userID, req.ContainerID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &gridrpc.ListSharesResponse{Shares: make([]gridrpc.Share, 0, len(list))}
	for _, sh := range list {
		resp.Shares = append(resp.Shares, shareToWire(sh))
	}
	return resp, nil
}

func (s *GRPCServer) ListComments(ctx context.Context, req *gridrpc.ListCommentsRequest) (*gridrpc.ListCommentsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.comments.List(ctx, userID, req.ContainerID, req.ItemID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &gridrpc.ListCommentsResponse{Comments: make([]gridrpc.Comment, 0, len(list))}
	for _, c := range list {
		resp.Comments = append(resp.Comments, push.CommentToWire(c))
	}
	return resp, nil
}

func (s *GRPCServer) AddComment(ctx context.Context, req *gridrpc.AddCommentRequest) (*gridrpc.Comment, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.Add(ctx, userID, req.ContainerID, req.ItemID, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := push.CommentToWire(*c)
	return &out, nil
}

func (s *GRPCServer) UpdateComment(ctx context.Context, req *gridrpc.UpdateCommentRequest) (*gridrpc.Comment, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.Update(ctx, userID, req.CommentID, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := push.CommentToWire(*c)
	return &out, nil
}

func (s *GRPCServer) DeleteComment(ctx context.Context, req *gridrpc.DeleteCommentRequest) (*emptypb.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Delete(ctx, userID, req.CommentID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

// storageUser resolves the caller and checks that an object store is
// configured.
func (s *GRPCServer) storageUser(ctx context.Context) (string, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if s.storage == nil {
		return "", s.toStatus(ctx, fmt.Errorf("object storage is not configured: %w", common.ErrUnavailable))
	}
	return userID, nil
}

func signedToWire(u *services.SignedURL) *gridrpc.SignedURL {
	return &gridrpc.SignedURL{Key: u.Key, URL: u.URL, ExpiresAt: u.ExpiresAt}
}

func (s *GRPCServer) GetUploadURL(ctx context.Context, req *gridrpc.UploadURLRequest) (*gridrpc.SignedURL, error) {
	userID, err := s.storageUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.storage.UploadURL(ctx, userID, req.ContainerID, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return signedToWire(u), nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *gridrpc.DownloadURLRequest) (*gridrpc.SignedURL, error) {
	userID, err := s.storageUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.storage.DownloadURL(ctx, userID, req.Key)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return signedToWire(u), nil
}

func (s *GRPCServer) DeleteObject(ctx context.Context, req *gridrpc.ObjectRequest) (*emptypb.Empty, error) {
	userID, err := s.storageUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, userID, req.Key); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListObjects(ctx context.Context, req *gridrpc.ListObjectsRequest) (*gridrpc.ListObjectsResponse, error) {
	userID, err := s.storageUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.storage.List(ctx, userID, req.Prefix)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &gridrpc.ListObjectsResponse{Objects: make([]gridrpc.Object, 0, len(list))}
	for _, o := range list {
		resp.Objects = append(resp.Objects, gridrpc.Object{Key: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	return resp, nil
}
