package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// Notifier pushes a server-originated notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, content string) error
}

// SessionService logs users in and out and is the single authentication
// gate for every authenticated call.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *TokenIssuer
	hasher      PasswordHasher
	notifier    Notifier
	log         logging.Logger
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, issuer *TokenIssuer, hasher PasswordHasher, l logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		hasher:      hasher,
		log:         l.With("module", "sessions"),
		now:         time.Now,
	}
}

// SetNotifier installs the notifier told about every successful sign-in.
func (s *SessionService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Login verifies credentials of a confirmed account and opens a session.
func (s *SessionService) Login(ctx context.Context, userName, password, originAddress string) (*models.SessionToken, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "password compare failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !user.Confirmed {
		return nil, common.ErrAccountUnconfirmed
	}

	session, err := s.issuer.IssueSessionToken(ctx, s.db, user, originAddress)
	if err != nil {
		s.log.Error(ctx, "session issue failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	s.log.Info(ctx, "user logged in", "user_id", user.ID, "token", common.ShortToken(session.Value), "origin", originAddress)

	if s.notifier != nil {
		msg := fmt.Sprintf("new sign-in from %s", originAddress)
		if err := s.notifier.Notify(ctx, user.ID, msg); err != nil {
			s.log.Warn(ctx, "sign-in notification failed", "user_id", user.ID, "error", err)
		}
	}
	return session, nil
}

// Authenticate admits a call when token is an active session owned by
// userID and records the access. Storage errors fail closed with
// common.ErrorInternal.
func (s *SessionService) Authenticate(ctx context.Context, token, userID string) error {
	if token == "" || userID == "" {
		return common.ErrorUnauthorized
	}
	repo := s.repomanager.Tokens(s.db)
	now := s.now()

	ok, err := repo.IsActiveForUser(ctx, token, userID, now)
	if err != nil {
		s.log.Error(ctx, "token check failed", "token", common.ShortToken(token), "error", err)
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrorUnauthorized
	}

	// Touch only matches sessions, which keeps validation tokens out.
	touched, err := repo.Touch(ctx, token, now)
	if err != nil {
		s.log.Error(ctx, "touch failed", "token", common.ShortToken(token), "error", err)
		return common.ErrorInternal
	}
	if !touched {
		return common.ErrorUnauthorized
	}
	return nil
}

// Logout ends the session. Logging out an already inactive session is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	changed, err := s.repomanager.Tokens(s.db).RecordLogout(ctx, token, s.now())
	if err != nil {
		s.log.Error(ctx, "logout failed", "token", common.ShortToken(token), "error", err)
		return common.ErrorInternal
	}
	if changed {
		s.log.Info(ctx, "user logged out", "token", common.ShortToken(token))
	}
	return nil
}
