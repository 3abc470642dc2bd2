package grpc

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

func (s *GRPCServer) Introspect(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p := features.PrincipalFrom(ctx)
	if p.IsAnonymous() || p.Session == nil {
		return nil, toStatus(services.ErrNoActiveSession())
	}

	names := p.Features.Strings()
	fs := make([]any, len(names))
	for i, n := range names {
		fs[i] = n
	}

	out, err := structpb.NewStruct(map[string]any{
		"session_id": p.Session.ID.String(),
		"user_id":    p.ID.String(),
		"username":   p.User.Username,
		"features":   fs,
		"expires_at": p.Session.ExpiresAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, toStatus(common.NewInternalError(err))
	}
	return out, nil
}

// Authorize answers whether the caller holds the feature named in the
// request. Unknown names are rejected.
func (s *GRPCServer) Authorize(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	f, err := features.Parse(in.GetValue())
	if err != nil {
		return nil, toStatus(common.NewValidationError(err.Error(), "Use one of the known feature names"))
	}
	ok, err := features.Can(features.PrincipalFrom(ctx), f, nil)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}
