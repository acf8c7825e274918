package grpc

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// ---- fakes ----

type fakeAccounts struct {
	regUser *models.User
	err     error

	confirmed []string
	resets    []string
}

func (f *fakeAccounts) Register(_ context.Context, userName, _ string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.regUser, nil
}
func (f *fakeAccounts) Confirm(_ context.Context, token string) error {
	f.confirmed = append(f.confirmed, token)
	return f.err
}
func (f *fakeAccounts) RequestPasswordReset(_ context.Context, userName string) error {
	f.resets = append(f.resets, userName)
	return f.err
}
func (f *fakeAccounts) ResetPassword(context.Context, string, string) error { return f.err }

type fakeSessions struct {
	sessions map[string]string // token -> user
	loginErr error
	authErr  error

	lastOrigin string
	loggedOut  []string
}

func (f *fakeSessions) Login(_ context.Context, userName, password, origin string) (*models.SessionToken, error) {
	f.lastOrigin = origin
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.SessionToken{Token: models.Token{Value: "tok-" + userName, UserID: "id-" + userName, Active: true}}, nil
}
func (f *fakeSessions) Authenticate(_ context.Context, token, userID string) error {
	if f.authErr != nil {
		return f.authErr
	}
	if f.sessions[token] != userID || userID == "" {
		return common.ErrorUnauthorized
	}
	return nil
}
func (f *fakeSessions) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	delete(f.sessions, token)
	return nil
}

type fakeInbox struct {
	unread  int64
	history []*models.Message
	err     error

	lastUser  string
	lastLimit int
}

func (f *fakeInbox) UnreadCount(_ context.Context, userID string) (int64, error) {
	f.lastUser = userID
	return f.unread, f.err
}
func (f *fakeInbox) History(_ context.Context, userID, _ string, limit int) ([]*models.Message, error) {
	f.lastUser, f.lastLimit = userID, limit
	return f.history, f.err
}
func (f *fakeInbox) MarkRead(_ context.Context, userID, _ string) (int64, error) {
	f.lastUser = userID
	return int64(len(f.history)), f.err
}
func (f *fakeInbox) ProjectHistory(_ context.Context, userID, _ string, limit int) ([]*models.Message, error) {
	f.lastUser, f.lastLimit = userID, limit
	return f.history, f.err
}

// ---- helpers ----

func newServer(a *fakeAccounts, s *fakeSessions, i *fakeInbox) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), a, s, i)
}
