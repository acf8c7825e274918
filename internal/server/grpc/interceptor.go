package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskhub/internal/common"
	pb "github.com/dmitrijs2005/taskhub/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	tokenKey  ctxKey = "sessionToken"
)

// publicMethods are served without a session.
var publicMethods = map[string]bool{
	pb.FullMethod("Register"):             true,
	pb.FullMethod("Confirm"):              true,
	pb.FullMethod("RequestPasswordReset"): true,
	pb.FullMethod("ResetPassword"):        true,
	pb.FullMethod("Login"):                true,
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) sessionTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var token, userID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		token = firstValue(md, common.SessionTokenHeaderName)
		userID = firstValue(md, common.UserIDHeaderName)
	}
	if token == "" || userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}

	if err := s.sessions.Authenticate(ctx, token, userID); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		s.logger.Error(ctx, "session check failed", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, tokenKey, token)
	return handler(ctx, req)
}

func userIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}
