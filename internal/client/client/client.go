package client

import (
	"context"

	pb "github.com/dmitrijs2005/taskhub/internal/proto"
)

type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) (string, error)
	Confirm(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
	History(ctx context.Context, counterpartyID string, limit int) ([]*pb.Message, error)
	MarkRead(ctx context.Context, counterpartyID string) (int64, error)
	ProjectHistory(ctx context.Context, projectID string, limit int) ([]*pb.Message, error)
	Session() (token, userID string)
}
