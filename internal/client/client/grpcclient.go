package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const defaultTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      gridrpc.GridServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(access, refresh string)
}

type Option func(*GRPCClient)

// WithTimeout bounds every call that arrives without a deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithTokenRefreshHook is called after the interceptor obtained a new token
// pair, so it can be persisted.
func WithTokenRefreshHook(fn func(access, refresh string)) Option {
	return func(c *GRPCClient) { c.onRefresh = fn }
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// accessTokenInterceptor attaches the access token and, when the server
// reports it expired, refreshes the pair once and retries the call.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.Tokens()
	if access != "" {
		ctx = withAccessToken(ctx, access)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &gridrpc.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	if s.onRefresh != nil {
		s.onRefresh(resp.AccessToken, resp.RefreshToken)
	}

	ctx = withAccessToken(ctx, resp.AccessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(s.timeoutInterceptor, s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = gridrpc.NewGridServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorNotFound)
	case codes.FailedPrecondition:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrConstraintViolation)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrAlreadyExists)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrorValidation)
	case codes.PermissionDenied:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrPermissionDenied)
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) (string, error) {
	resp, err := s.client.Register(ctx, &gridrpc.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) error {
	resp, err := s.client.Login(ctx, &gridrpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) CreateContainer(ctx context.Context, name string) (models.Container, error) {
	resp, err := s.client.CreateContainer(ctx, &gridrpc.CreateContainerRequest{Name: name})
	if err != nil {
		return models.Container{}, s.mapError(err)
	}
	return containerFromWire(*resp), nil
}

func (s *GRPCClient) ListContainers(ctx context.Context) ([]models.Container, error) {
	resp, err := s.client.ListContainers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Container, 0, len(resp.Containers))
	for _, c := range resp.Containers {
		out = append(out, containerFromWire(c))
	}
	return out, nil
}

func (s *GRPCClient) ListItems(ctx context.Context, containerID string) ([]grid.Item, error) {
	resp, err := s.client.ListItems(ctx, &gridrpc.ListItemsRequest{ContainerID: containerID})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]grid.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, it.ToGrid())
	}
	return out, nil
}

func (s *GRPCClient) CreateItem(ctx context.Context, item grid.Item) (grid.Item, error) {
	resp, err := s.client.CreateItem(ctx, &gridrpc.CreateItemRequest{Item: gridrpc.ItemFromGrid(item)})
	if err != nil {
		return grid.Item{}, s.mapError(err)
	}
	return resp.ToGrid(), nil
}

func (s *GRPCClient) UpdatePosition(ctx context.Context, containerID, itemID string, position int) (grid.Item, error) {
	resp, err := s.client.UpdateItemPosition(ctx, &gridrpc.UpdateItemPositionRequest{
		ContainerID: containerID,
		ItemID:      itemID,
		Position:    position,
	})
	if err != nil {
		return grid.Item{}, s.mapError(err)
	}
	return resp.ToGrid(), nil
}

func (s *GRPCClient) UpdatePayload(ctx context.Context, containerID, itemID string, payload grid.Payload) (grid.Item, error) {
	resp, err := s.client.UpdateItemPayload(ctx, &gridrpc.UpdateItemPayloadRequest{
		ContainerID: containerID,
		ItemID:      itemID,
		Payload:     gridrpc.PayloadFromGrid(payload),
	})
	if err != nil {
		return grid.Item{}, s.mapError(err)
	}
	return resp.ToGrid(), nil
}

func (s *GRPCClient) DeleteItem(ctx context.Context, containerID, itemID string) error {
	_, err := s.client.DeleteItem(ctx, &gridrpc.DeleteItemRequest{ContainerID: containerID, ItemID: itemID})
	return s.mapError(err)
}

func (s *GRPCClient) GrantShare(ctx context.Context, containerID, grantee string) (models.Share, error) {
	resp, err := s.client.GrantShare(ctx, &gridrpc.GrantShareRequest{ContainerID: containerID, Grantee: grantee})
	if err != nil {
		return models.Share{}, s.mapError(err)
	}
	return shareFromWire(*resp), nil
}

func (s *GRPCClient) RevokeShare(ctx context.Context, containerID, grantee string) error {
	_, err := s.client.RevokeShare(ctx, &gridrpc.RevokeShareRequest{ContainerID: containerID, Grantee: grantee})
	return s.mapError(err)
}

func (s *GRPCClient) ListShares(ctx context.Context, containerID string) ([]models.Share, error) {
	resp, err := s.client.ListShares(ctx, &gridrpc.ListSharesRequest{ContainerID: containerID})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Share, 0, len(resp.Shares))
	for _, sh := range resp.Shares {
		out = append(out, shareFromWire(sh))
	}
	return out, nil
}

func (s *GRPCClient) ListComments(ctx context.Context, containerID, itemID string) ([]models.Comment, error) {
	resp, err := s.client.ListComments(ctx, &gridrpc.ListCommentsRequest{ContainerID: containerID, ItemID: itemID})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Comment, 0, len(resp.Comments))
	for _, c := range resp.Comments {
		out = append(out, CommentFromWire(c))
	}
	return out, nil
}

func (s *GRPCClient) AddComment(ctx context.Context, containerID, itemID, content string) (models.Comment, error) {
	resp, err := s.client.AddComment(ctx, &gridrpc.AddCommentRequest{ContainerID: containerID, ItemID: itemID, Content: content})
	if err != nil {
		return models.Comment{}, s.mapError(err)
	}
	return CommentFromWire(*resp), nil
}

func (s *GRPCClient) UpdateComment(ctx context.Context, commentID, content string) (models.Comment, error) {
	resp, err := s.client.UpdateComment(ctx, &gridrpc.UpdateCommentRequest{CommentID: commentID, Content: content})
	if err != nil {
		return models.Comment{}, s.mapError(err)
	}
	return CommentFromWire(*resp), nil
}

func (s *GRPCClient) DeleteComment(ctx context.Context, commentID string) error {
	_, err := s.client.DeleteComment(ctx, &gridrpc.DeleteCommentRequest{CommentID: commentID})
	return s.mapError(err)
}

func (s *GRPCClient) UploadURL(ctx context.Context, containerID, contentType string) (models.SignedURL, error) {
	resp, err := s.client.GetUploadURL(ctx, &gridrpc.UploadURLRequest{ContainerID: containerID, ContentType: contentType})
	if err != nil {
		return models.SignedURL{}, s.mapError(err)
	}
	return signedFromWire(*resp), nil
}

func (s *GRPCClient) DownloadURL(ctx context.Context, key string) (models.SignedURL, error) {
	resp, err := s.client.GetDownloadURL(ctx, &gridrpc.DownloadURLRequest{Key: key})
	if err != nil {
		return models.SignedURL{}, s.mapError(err)
	}
	return signedFromWire(*resp), nil
}

func (s *GRPCClient) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &gridrpc.ObjectRequest{Key: key})
	return s.mapError(err)
}

// ListObjects lists the images stored for a container.
func (s *GRPCClient) ListObjects(ctx context.Context, containerID string) ([]models.Object, error) {
	resp, err := s.client.ListObjects(ctx, &gridrpc.ListObjectsRequest{Prefix: "containers/" + containerID + "/"})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Object, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		out = append(out, models.Object{Key: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	return out, nil
}

var _ Client = (*GRPCClient)(nil)
