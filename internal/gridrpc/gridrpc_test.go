package gridrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type fakeServer struct {
	UnimplementedGridServiceServer
	gotToken string
}

func (f *fakeServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (f *fakeServer) UpdateItemPosition(ctx context.Context, req *UpdateItemPositionRequest) (*Item, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("access_token"); len(v) > 0 {
			f.gotToken = v[0]
		}
	}
	return &Item{ID: req.ItemID, ContainerID: req.ContainerID, Position: req.Position}, nil
}

func (f *fakeServer) DeleteItem(context.Context, *DeleteItemRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.NotFound, "item not found")
}

func dial(t *testing.T, srv GridServiceServer, opts ...grpc.ServerOption) GridServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterGridServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewGridServiceClient(conn)
}

func TestCodec(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&UpdateItemPositionRequest{ContainerID: "c", ItemID: "i", Position: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"container_id":"c","item_id":"i","position":3}`, string(b))

	var out UpdateItemPositionRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, 3, out.Position)

	// protobuf messages keep their own encoding
	b, err = c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, b)
	require.NoError(t, c.Unmarshal(b, &emptypb.Empty{}))
}

func TestItemConversion(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	it := grid.Item{ID: "i", ContainerID: "c", Position: 2, Payload: grid.Payload{ImageKeys: []string{"k"}, ScheduledAt: &ts}}

	back := ItemFromGrid(it).ToGrid()
	assert.Equal(t, it, back)
	back.Payload.ImageKeys[0] = "changed"
	assert.Equal(t, "k", it.Payload.ImageKeys[0])
}

func TestService_RoundTrip(t *testing.T) {
	srv := &fakeServer{}
	client := dial(t, srv)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "access_token", "tok")

	pong, err := client.Ping(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	item, err := client.UpdateItemPosition(ctx, &UpdateItemPositionRequest{ContainerID: "c", ItemID: "i", Position: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, item.Position)
	assert.Equal(t, "tok", srv.gotToken)

	_, err = client.DeleteItem(ctx, &DeleteItemRequest{ContainerID: "c", ItemID: "i"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ListObjects(ctx, &ListObjectsRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestService_InterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	icpt := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return h(ctx, req)
	}
	client := dial(t, &fakeServer{}, grpc.UnaryInterceptor(icpt))

	_, err := client.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{FullMethod("Ping")}, seen)
	assert.True(t, PublicMethods[FullMethod("Ping")])
	assert.False(t, PublicMethods[FullMethod("ListItems")])
}
