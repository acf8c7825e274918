package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskhub/internal/common"
	pb "github.com/dmitrijs2005/taskhub/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.SessionClient

	mu           sync.RWMutex
	sessionToken string
	userID       string
}

func withSession(ctx context.Context, token, userID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)
	md.Set(common.UserIDHeaderName, userID)

	return metadata.NewOutgoingContext(ctx, md)
}

// sessionInterceptor attaches the current session to every call made after
// a successful login.
func (s *GRPCClient) sessionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token, userID := s.Session(); token != "" {
		ctx = withSession(ctx, token, userID)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewTaskhubClientService(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.sessionInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewSessionClient(conn)
	return nil
}

// Session returns the token and user id of the current session, if any.
func (s *GRPCClient) Session() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken, s.userID
}

func (s *GRPCClient) setSession(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionToken, s.userID = token, userID
}

func (s *GRPCClient) Register(ctx context.Context, userName, password string) (string, error) {

	resp, err := s.client.Register(ctx, &pb.RegisterRequest{Username: userName, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.UserID, nil
}

func (s *GRPCClient) Confirm(ctx context.Context, token string) error {
	_, err := s.client.Confirm(ctx, &pb.ConfirmRequest{Token: token})
	return s.mapError(err)
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, userName string) error {
	_, err := s.client.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{Username: userName})
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: token, NewPassword: newPassword})
	return s.mapError(err)
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) error {

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Username: userName, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	s.setSession(resp.SessionToken, resp.UserID)
	return nil
}

// Logout ends the server session and forgets it locally even when the
// server could not be reached.
func (s *GRPCClient) Logout(ctx context.Context) error {
	if token, _ := s.Session(); token == "" {
		return ErrNotLoggedIn
	}
	_, err := s.client.Logout(ctx, &pb.Empty{})
	s.setSession("", "")
	return s.mapError(err)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &pb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) UnreadCount(ctx context.Context) (int64, error) {
	resp, err := s.client.UnreadCount(ctx, &pb.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Count, nil
}

func (s *GRPCClient) History(ctx context.Context, counterpartyID string, limit int) ([]*pb.Message, error) {
	resp, err := s.client.History(ctx, &pb.HistoryRequest{CounterpartyID: counterpartyID, Limit: int32(limit)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Messages, nil
}

func (s *GRPCClient) MarkRead(ctx context.Context, counterpartyID string) (int64, error) {
	resp, err := s.client.MarkRead(ctx, &pb.MarkReadRequest{CounterpartyID: counterpartyID})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Updated, nil
}

func (s *GRPCClient) ProjectHistory(ctx context.Context, projectID string, limit int) ([]*pb.Message, error) {
	resp, err := s.client.ProjectHistory(ctx, &pb.ProjectHistoryRequest{ProjectID: projectID, Limit: int32(limit)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Messages, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
