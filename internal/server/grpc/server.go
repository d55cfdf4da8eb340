package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gridplanner/internal/gridrpc"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"google.golang.org/grpc"
)

// Services groups the business services the gRPC handlers delegate to.
// Storage may be nil when no object store is configured.
type Services struct {
	Users    userSvc
	Grids    gridSvc
	Shares   shareSvc
	Comments commentSvc
	Storage  storageSvc
}

type GRPCServer struct {
	gridrpc.UnimplementedGridServiceServer
	address   string
	users     userSvc
	grids     gridSvc
	shares    shareSvc
	comments  commentSvc
	storage   storageSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		grids:     svc.Grids,
		shares:    svc.Shares,
		comments:  svc.Comments,
		storage:   svc.Storage,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	gridrpc.RegisterGridServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
