package gridrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GridServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error)

	CreateContainer(ctx context.Context, in *CreateContainerRequest, opts ...grpc.CallOption) (*Container, error)
	ListContainers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListContainersResponse, error)

	ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error)
	CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*Item, error)
	UpdateItemPosition(ctx context.Context, in *UpdateItemPositionRequest, opts ...grpc.CallOption) (*Item, error)
	UpdateItemPayload(ctx context.Context, in *UpdateItemPayloadRequest, opts ...grpc.CallOption) (*Item, error)
	DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)

	GrantShare(ctx context.Context, in *GrantShareRequest, opts ...grpc.CallOption) (*Share, error)
	RevokeShare(ctx context.Context, in *RevokeShareRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListShares(ctx context.Context, in *ListSharesRequest, opts ...grpc.CallOption) (*ListSharesResponse, error)

	ListComments(ctx context.Context, in *ListCommentsRequest, opts ...grpc.CallOption) (*ListCommentsResponse, error)
	AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*Comment, error)
	UpdateComment(ctx context.Context, in *UpdateCommentRequest, opts ...grpc.CallOption) (*Comment, error)
	DeleteComment(ctx context.Context, in *DeleteCommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)

	GetUploadURL(ctx context.Context, in *UploadURLRequest, opts ...grpc.CallOption) (*SignedURL, error)
	GetDownloadURL(ctx context.Context, in *DownloadURLRequest, opts ...grpc.CallOption) (*SignedURL, error)
	DeleteObject(ctx context.Context, in *ObjectRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListObjects(ctx context.Context, in *ListObjectsRequest, opts ...grpc.CallOption) (*ListObjectsResponse, error)
}

type gridServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGridServiceClient(cc grpc.ClientConnInterface) GridServiceClient {
	return &gridServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gridServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}

func (c *gridServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "Login", in, opts)
}

func (c *gridServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "RefreshToken", in, opts)
}

func (c *gridServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *gridServiceClient) CreateContainer(ctx context.Context, in *CreateContainerRequest, opts ...grpc.CallOption) (*Container, error) {
	return invoke[Container](ctx, c.cc, "CreateContainer", in, opts)
}

func (c *gridServiceClient) ListContainers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListContainersResponse, error) {
	return invoke[ListContainersResponse](ctx, c.cc, "ListContainers", in, opts)
}

func (c *gridServiceClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, "ListItems", in, opts)
}

func (c *gridServiceClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, "CreateItem", in, opts)
}

func (c *gridServiceClient) UpdateItemPosition(ctx context.Context, in *UpdateItemPositionRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, "UpdateItemPosition", in, opts)
}

func (c *gridServiceClient) UpdateItemPayload(ctx context.Context, in *UpdateItemPayloadRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, "UpdateItemPayload", in, opts)
}

func (c *gridServiceClient) DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteItem", in, opts)
}

func (c *gridServiceClient) GrantShare(ctx context.Context, in *GrantShareRequest, opts ...grpc.CallOption) (*Share, error) {
	return invoke[Share](ctx, c.cc, "GrantShare", in, opts)
}

func (c *gridServiceClient) RevokeShare(ctx context.Context, in *RevokeShareRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "RevokeShare", in, opts)
}

func (c *gridServiceClient) ListShares(ctx context.Context, in *ListSharesRequest, opts ...grpc.CallOption) (*ListSharesResponse, error) {
	return invoke[ListSharesResponse](ctx, c.cc, "ListShares", in, opts)
}

func (c *gridServiceClient) ListComments(ctx context.Context, in *ListCommentsRequest, opts ...grpc.CallOption) (*ListCommentsResponse, error) {
	return invoke[ListCommentsResponse](ctx, c.cc, "ListComments", in, opts)
}

func (c *gridServiceClient) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*Comment, error) {
	return invoke[Comment](ctx, c.cc, "AddComment", in, opts)
}

func (c *gridServiceClient) UpdateComment(ctx context.Context, in *UpdateCommentRequest, opts ...grpc.CallOption) (*Comment, error) {
	return invoke[Comment](ctx, c.cc, "UpdateComment", in, opts)
}

func (c *gridServiceClient) DeleteComment(ctx context.Context, in *DeleteCommentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteComment", in, opts)
}

func (c *gridServiceClient) GetUploadURL(ctx context.Context, in *UploadURLRequest, opts ...grpc.CallOption) (*SignedURL, error) {
	return invoke[SignedURL](ctx, c.cc, "GetUploadURL", in, opts)
}

func (c *gridServiceClient) GetDownloadURL(ctx context.Context, in *DownloadURLRequest, opts ...grpc.CallOption) (*SignedURL, error) {
	return invoke[SignedURL](ctx, c.cc, "GetDownloadURL", in, opts)
}

func (c *gridServiceClient) DeleteObject(ctx context.Context, in *ObjectRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "DeleteObject", in, opts)
}

func (c *gridServiceClient) ListObjects(ctx context.Context, in *ListObjectsRequest, opts ...grpc.CallOption) (*ListObjectsResponse, error) {
	return invoke[ListObjectsResponse](ctx, c.cc, "ListObjects", in, opts)
}
