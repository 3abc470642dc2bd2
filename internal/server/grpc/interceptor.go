package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

// SessionTokenKey is the metadata key carrying the session token.
const SessionTokenKey = "session_token"

var kindCodes = map[common.Kind]codes.Code{
	common.KindValidation:         codes.InvalidArgument,
	common.KindUnauthorized:       codes.Unauthenticated,
	common.KindForbidden:          codes.PermissionDenied,
	common.KindNotFound:           codes.NotFound,
	common.KindMethodNotAllowed:   codes.Unimplemented,
	common.KindServiceUnavailable: codes.Unavailable,
}

// toStatus maps a service error onto a gRPC status. Only the public message
// reaches the caller.
func toStatus(err error) error {
	e := common.AsError(err)
	code, ok := kindCodes[e.Kind]
	if !ok {
		code = codes.Internal
	}
	return status.Error(code, e.Message)
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in handler", "method", info.FullMethod, "panic", fmt.Sprint(r))
			err = status.Error(codes.Internal, common.NewInternalError(nil).Message)
		}
	}()
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	fields := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
	switch code {
	case codes.OK:
		s.logger.Info(ctx, "grpc request completed", fields...)
	case codes.Internal, codes.Unavailable:
		s.logger.Error(ctx, "grpc request completed", fields...)
	default:
		s.logger.Warn(ctx, "grpc request completed", fields...)
	}
	return resp, err
}

// sessionInterceptor attaches the principal behind the session_token
// metadata. Calls without a token run as the anonymous principal; a token
// that does not resolve fails with Unauthenticated.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(SessionTokenKey); len(values) > 0 {
			token = values[0]
		}
	}
	if token == "" {
		return handler(features.WithPrincipal(ctx, features.Anonymous()), req)
	}

	p, err := s.resolvePrincipal(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}
	return handler(features.WithPrincipal(ctx, p), req)
}

func (s *GRPCServer) resolvePrincipal(ctx context.Context, token string) (*features.Principal, error) {
	session, err := s.sessions.FindValidByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, services.ErrNoActiveSession()
		}
		return nil, err
	}
	p, err := features.Authenticated(user, session)
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	return p, nil
}
