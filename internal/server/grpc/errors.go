package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrConstraintViolation, codes.FailedPrecondition},
	{common.ErrAlreadyExists, codes.AlreadyExists},
	{common.ErrorValidation, codes.InvalidArgument},
	{common.ErrPermissionDenied, codes.PermissionDenied},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrUnavailable, codes.Unavailable},
}

// toStatus converts a service error into a gRPC status. Unknown errors are
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
