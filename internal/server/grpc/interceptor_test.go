package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/taskhub/internal/common"
	pb "github.com/dmitrijs2005/taskhub/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withSession(token, userID string) context.Context {
	md := metadata.New(map[string]string{
		common.SessionTokenHeaderName: token,
		common.UserIDHeaderName:       userID,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_PublicMethodWithoutSession(t *testing.T) {
	s := newServer(&fakeAccounts{}, &fakeSessions{}, &fakeInbox{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod("Login")}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.sessionTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not called correctly: called=%v resp=%v", handlerCalled, resp)
	}
}

func TestInterceptor_RejectsWithoutValidSession(t *testing.T) {
	s := newServer(&fakeAccounts{}, &fakeSessions{sessions: map[string]string{"tok": "alice"}}, &fakeInbox{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod("UnreadCount")}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	cases := map[string]context.Context{
		"no metadata":   context.Background(),
		"missing user":  withSession("tok", ""),
		"wrong user":    withSession("tok", "bob"),
		"unknown token": withSession("other", "alice"),
	}
	for name, ctx := range cases {
		_, err := s.sessionTokenInterceptor(ctx, nil, info, h)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("%s: expected Unauthenticated, got %v", name, status.Code(err))
		}
	}
}

func TestInterceptor_StorageFailureIsInternal(t *testing.T) {
	s := newServer(&fakeAccounts{}, &fakeSessions{authErr: common.ErrorInternal}, &fakeInbox{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod("Ping")}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.sessionTokenInterceptor(withSession("tok", "alice"), nil, info, h)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidSession_SetsCaller(t *testing.T) {
	s := newServer(&fakeAccounts{}, &fakeSessions{sessions: map[string]string{"tok": "alice"}}, &fakeInbox{})
	info := &grpc.UnaryServerInfo{FullMethod: pb.FullMethod("Logout")}

	var gotUser, gotToken string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotUser, gotToken = userIDFrom(ctx), tokenFrom(ctx)
		return "ok", nil
	}

	if _, err := s.sessionTokenInterceptor(withSession("tok", "alice"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "alice" || gotToken != "tok" {
		t.Fatalf("caller not propagated: user=%q token=%q", gotUser, gotToken)
	}
}
