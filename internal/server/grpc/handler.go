package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskhub/internal/common"
	pb "github.com/dmitrijs2005/taskhub/internal/proto"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type accountSvc interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Confirm(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, userName string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type sessionSvc interface {
	Login(ctx context.Context, userName, password, originAddress string) (*models.SessionToken, error)
	Authenticate(ctx context.Context, token, userID string) error
	Logout(ctx context.Context, token string) error
}

type inboxSvc interface {
	UnreadCount(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID, counterpartyID string, limit int) ([]*models.Message, error)
	MarkRead(ctx context.Context, userID, counterpartyID string) (int64, error)
	ProjectHistory(ctx context.Context, userID, projectID string, limit int) ([]*models.Message, error)
}

// toStatus maps service errors to gRPC codes. Unknown errors never leak
// their text to the caller.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, "invalid token")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.FailedPrecondition, "token expired")
	case errors.Is(err, common.ErrAccountUnconfirmed):
		return status.Error(codes.FailedPrecondition, "account not confirmed")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func originAddress(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Confirm(ctx context.Context, req *pb.ConfirmRequest) (*pb.Empty, error) {
	if err := s.accounts.Confirm(ctx, req.Token); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *pb.RequestPasswordResetRequest) (*pb.Empty, error) {
	if err := s.accounts.RequestPasswordReset(ctx, req.Username); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.Empty, error) {
	if err := s.accounts.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {

	session, err := s.sessions.Login(ctx, req.Username, req.Password, originAddress(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.LoginResponse{UserID: session.UserID, SessionToken: session.Value}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *pb.Empty) (*pb.Empty, error) {
	if err := s.sessions.Logout(ctx, tokenFrom(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *pb.Empty) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) UnreadCount(ctx context.Context, _ *pb.Empty) (*pb.UnreadCountResponse, error) {
	n, err := s.inbox.UnreadCount(ctx, userIDFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UnreadCountResponse{Count: n}, nil
}

func (s *GRPCServer) History(ctx context.Context, req *pb.HistoryRequest) (*pb.HistoryResponse, error) {
	msgs, err := s.inbox.History(ctx, userIDFrom(ctx), req.CounterpartyID, int(req.Limit))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.HistoryResponse{Messages: messagesToPB(msgs)}, nil
}

func (s *GRPCServer) MarkRead(ctx context.Context, req *pb.MarkReadRequest) (*pb.MarkReadResponse, error) {
	n, err := s.inbox.MarkRead(ctx, userIDFrom(ctx), req.CounterpartyID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.MarkReadResponse{Updated: n}, nil
}

func (s *GRPCServer) ProjectHistory(ctx context.Context, req *pb.ProjectHistoryRequest) (*pb.HistoryResponse, error) {
	msgs, err := s.inbox.ProjectHistory(ctx, userIDFrom(ctx), req.ProjectID, int(req.Limit))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.HistoryResponse{Messages: messagesToPB(msgs)}, nil
}

func messagesToPB(msgs []*models.Message) []*pb.Message {
	out := make([]*pb.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &pb.Message{
			ID:              m.ID,
			Kind:            string(m.Kind),
			SenderID:        m.SenderID,
			RecipientUserID: m.RecipientUserID,
			ProjectID:       m.ProjectID,
			Subject:         m.Subject,
			Content:         m.Content,
			CreatedAt:       m.CreatedAt,
			ReadAt:          m.ReadAt,
		})
	}
	return out
}
