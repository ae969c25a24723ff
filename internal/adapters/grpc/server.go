package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hernanharco/authcenter-backend/internal/domain"
)

const (
	serviceName        = "authcenter.identity.v1.IdentityService"
	resolveTokenMethod = "/" + serviceName + "/ResolveToken"
)

// IdentityResolver is the slice of the application service this adapter needs.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (domain.Account, error)
}

type IdentityService interface {
	ResolveToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// IdentityServer lets sibling services turn a session token into an account.
type IdentityServer struct {
	resolver IdentityResolver
}

func NewIdentityServer(resolver IdentityResolver) *IdentityServer {
	return &IdentityServer{resolver: resolver}
}

func Register(server grpc.ServiceRegistrar, svc IdentityService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*IdentityService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ResolveToken",
				Handler:    resolveTokenHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "authcenter/identity/v1/identity.proto",
	}, svc)
}

func (s *IdentityServer) ResolveToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := req.GetFields()["token"].GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}

	account, err := s.resolver.ResolveIdentity(ctx, token)
	if err != nil {
		code := statusCode(err)
		zap.L().With(
			zap.String("module", "grpc"),
			zap.String("layer", "adapter"),
		).Warn("resolve token rejected",
			zap.String("operation", "resolve_token"),
			zap.String("outcome", "failure"),
			zap.String("code", code.String()),
			zap.Error(err),
		)
		return nil, status.Error(code, publicMessage(code))
	}

	resp, err := structpb.NewStruct(map[string]any{
		"account_id": account.ID.String(),
		"username":   account.Username,
		"email":      account.Email,
		"role":       account.Role.String(),
		"status":     account.Status.String(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func statusCode(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return codes.Unauthenticated
	case errors.Is(err, domain.ErrForbidden):
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}

func publicMessage(code codes.Code) string {
	switch code {
	case codes.Unauthenticated:
		return "could not validate credentials"
	case codes.PermissionDenied:
		return "account is inactive"
	default:
		return "internal error"
	}
}

func resolveTokenHandler(svc IdentityService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ResolveToken(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: resolveTokenMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ResolveToken(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
