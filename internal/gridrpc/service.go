package gridrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "gridplanner.GridService"

// FullMethod returns "/gridplanner.GridService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Methods callable without an access token.
var PublicMethods = map[string]bool{
	FullMethod("Register"):     true,
	FullMethod("Login"):        true,
	FullMethod("RefreshToken"): true,
	FullMethod("Ping"):         true,
}

type GridServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)

	CreateContainer(context.Context, *CreateContainerRequest) (*Container, error)
	ListContainers(context.Context, *emptypb.Empty) (*ListContainersResponse, error)

	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	CreateItem(context.Context, *CreateItemRequest) (*Item, error)
	UpdateItemPosition(context.Context, *UpdateItemPositionRequest) (*Item, error)
	UpdateItemPayload(context.Context, *UpdateItemPayloadRequest) (*Item, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*emptypb.Empty, error)

	GrantShare(context.Context, *GrantShareRequest) (*Share, error)
	RevokeShare(context.Context, *RevokeShareRequest) (*emptypb.Empty, error)
	ListShares(context.Context, *ListSharesRequest) (*ListSharesResponse, error)

	ListComments(context.Context, *ListCommentsRequest) (*ListCommentsResponse, error)
	AddComment(context.Context, *AddCommentRequest) (*Comment, error)
	UpdateComment(context.Context, *UpdateCommentRequest) (*Comment, error)
	DeleteComment(context.Context, *DeleteCommentRequest) (*emptypb.Empty, error)

	GetUploadURL(context.Context, *UploadURLRequest) (*SignedURL, error)
	GetDownloadURL(context.Context, *DownloadURLRequest) (*SignedURL, error)
	DeleteObject(context.Context, *ObjectRequest) (*emptypb.Empty, error)
	ListObjects(context.Context, *ListObjectsRequest) (*ListObjectsResponse, error)
}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

// UnimplementedGridServiceServer can be embedded to satisfy
// GridServiceServer partially.
type UnimplementedGridServiceServer struct{}

func (UnimplementedGridServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedGridServiceServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedGridServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error) {
	return nil, unimplemented("RefreshToken")
}
func (UnimplementedGridServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedGridServiceServer) CreateContainer(context.Context, *CreateContainerRequest) (*Container, error) {
	return nil, unimplemented("CreateContainer")
}
func (UnimplementedGridServiceServer) ListContainers(context.Context, *emptypb.Empty) (*ListContainersResponse, error) {
	return nil, unimplemented("ListContainers")
}
func (UnimplementedGridServiceServer) ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error) {
	return nil, unimplemented("ListItems")
}
func (UnimplementedGridServiceServer) CreateItem(context.Context, *CreateItemRequest) (*Item, error) {
	return nil, unimplemented("CreateItem")
}
func (UnimplementedGridServiceServer) UpdateItemPosition(context.Context, *UpdateItemPositionRequest) (*Item, error) {
	return nil, unimplemented("UpdateItemPosition")
}
func (UnimplementedGridServiceServer) UpdateItemPayload(context.Context, *UpdateItemPayloadRequest) (*Item, error) {
	return nil, unimplemented("UpdateItemPayload")
}
func (UnimplementedGridServiceServer) DeleteItem(context.Context, *DeleteItemRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("DeleteItem")
}
func (UnimplementedGridServiceServer) GrantShare(context.Context, *GrantShareRequest) (*Share, error) {
	return nil, unimplemented("GrantShare")
}
func (UnimplementedGridServiceServer) RevokeShare(context.Context, *RevokeShareRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("RevokeShare")
}
func (UnimplementedGridServiceServer) ListShares(context.Context, *ListSharesRequest) (*ListSharesResponse, error) {
	return nil, unimplemented("ListShares")
}
func (UnimplementedGridServiceServer) ListComments(context.Context, *ListCommentsRequest) (*ListCommentsResponse, error) {
	return nil, unimplemented("ListComments")
}
func (UnimplementedGridServiceServer) AddComment(context.Context, *AddCommentRequest) (*Comment, error) {
	return nil, unimplemented("AddComment")
}
func (UnimplementedGridServiceServer) UpdateComment(context.Context, *UpdateCommentRequest) (*Comment, error) {
	return nil, unimplemented("UpdateComment")
}
func (UnimplementedGridServiceServer) DeleteComment(context.Context, *DeleteCommentRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("DeleteComment")
}
func (UnimplementedGridServiceServer) GetUploadURL(context.Context, *UploadURLRequest) (*SignedURL, error) {
	return nil, unimplemented("GetUploadURL")
}
func (UnimplementedGridServiceServer) GetDownloadURL(context.Context, *DownloadURLRequest) (*SignedURL, error) {
	return nil, unimplemented("GetDownloadURL")
}
func (UnimplementedGridServiceServer) DeleteObject(context.Context, *ObjectRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("DeleteObject")
}
func (UnimplementedGridServiceServer) ListObjects(context.Context, *ListObjectsRequest) (*ListObjectsResponse, error) {
	return nil, unimplemented("ListObjects")
}

// unary builds the method descriptor for one request/response call.
func unary[Req, Resp any](name string, call func(GridServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GridServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GridServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GridServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", GridServiceServer.Register),
		unary("Login", GridServiceServer.Login),
		unary("RefreshToken", GridServiceServer.RefreshToken),
		unary("Ping", GridServiceServer.Ping),
		unary("CreateContainer", GridServiceServer.CreateContainer),
		unary("ListContainers", GridServiceServer.ListContainers),
		unary("ListItems", GridServiceServer.ListItems),
		unary("CreateItem", GridServiceServer.CreateItem),
		unary("UpdateItemPosition", GridServiceServer.UpdateItemPosition),
		unary("UpdateItemPayload", GridServiceServer.UpdateItemPayload),
		unary("DeleteItem", GridServiceServer.DeleteItem),
		unary("GrantShare", GridServiceServer.GrantShare),
		unary("RevokeShare", GridServiceServer.RevokeShare),
		unary("ListShares", GridServiceServer.ListShares),
		unary("ListComments", GridServiceServer.ListComments),
		unary("AddComment", GridServiceServer.AddComment),
		unary("UpdateComment", GridServiceServer.UpdateComment),
		unary("DeleteComment", GridServiceServer.DeleteComment),
		unary("GetUploadURL", GridServiceServer.GetUploadURL),
		unary("GetDownloadURL", GridServiceServer.GetDownloadURL),
		unary("DeleteObject", GridServiceServer.DeleteObject),
		unary("ListObjects", GridServiceServer.ListObjects),
	},
	Metadata: "gridplanner/grid_service",
}

func RegisterGridServiceServer(s grpc.ServiceRegistrar, srv GridServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
