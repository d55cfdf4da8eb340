package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestServe_GracefulStopOnCancel(t *testing.T) {
	svc, _ := defaultServices()
	s := newServer(svc)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := gridrpc.NewGridServiceClient(conn)

	_, err = client.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	// both interceptors are installed on the served instance
	_, err = client.ListContainers(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	svc, _ := defaultServices()
	s, err := NewGRPCServer("127.0.0.1:99999", logging.NewNopLogger(), svc, testSecret)
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}
