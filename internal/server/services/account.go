package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	mailer "github.com/dmitrijs2005/taskhub/internal/server/mail"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// AccountService implements the flows driven by validation tokens:
// registration with confirmation and password reset. Usernames are email
// addresses and double as the mail recipient.
type AccountService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	issuer        *TokenIssuer
	hasher        PasswordHasher
	mailer        mailer.Mailer
	log           logging.Logger
	now           func() time.Time
	confirmWindow time.Duration
	resetWindow   time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, issuer *TokenIssuer, hasher PasswordHasher, ml mailer.Mailer, cfg *config.Config, l logging.Logger) *AccountService {
	return &AccountService{
		db:            db,
		repomanager:   m,
		issuer:        issuer,
		hasher:        hasher,
		mailer:        ml,
		log:           l.With("module", "accounts"),
		now:           time.Now,
		confirmWindow: cfg.AccountTokenValidity,
		resetWindow:   cfg.ResetTokenValidity,
	}
}

func validateCredentials(userName, password string) error {
	if _, err := mail.ParseAddress(userName); err != nil {
		return fmt.Errorf("%w: username must be an email address", common.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// Register creates an unconfirmed account and mails its confirmation token.
// The account is not created when the mail cannot be sent.
func (s *AccountService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
		if err != nil {
			return err
		}
		token, err := s.issuer.IssueValidationToken(ctx, tx, u, models.PurposeConfirmAccount, s.confirmWindow)
		if err != nil {
			return err
		}
		if err := s.mailer.Send(ctx, mailer.Message{
			To:      u.UserName,
			Subject: mailer.ConfirmSubject,
			Body:    mailer.ConfirmBody(token.Value, s.confirmWindow),
			Token:   token.Value,
		}); err != nil {
			return fmt.Errorf("error sending confirmation: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// consume checks that value is a live validation token of the given purpose
// and deactivates it inside tx. It returns the token owner.
func (s *AccountService) consume(ctx context.Context, tx dbx.DBTX, value string, purpose models.TokenPurpose) (string, error) {
	repo := s.repomanager.Tokens(tx)
	t, err := repo.FindValidation(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", err
	}
	if !t.Active || t.Purpose != purpose {
		return "", common.ErrInvalidToken
	}
	if t.Expired(s.now()) {
		return "", common.ErrTokenExpired
	}

	changed, err := repo.Deactivate(ctx, value)
	if err != nil {
		return "", err
	}
	if !changed {
		// consumed concurrently
		return "", common.ErrInvalidToken
	}
	return t.UserID, nil
}

// Confirm consumes a confirm_account token and marks its owner confirmed.
func (s *AccountService) Confirm(ctx context.Context, token string) error {
	var userID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.consume(ctx, tx, token, models.PurposeConfirmAccount)
		if err != nil {
			return err
		}
		userID = id
		return s.repomanager.Users(tx).MarkConfirmed(ctx, id)
	})
	if err != nil {
		return tokenFlowError(err)
	}
	s.log.Info(ctx, "account confirmed", "user_id", userID)
	return nil
}

// RequestPasswordReset mails a reset token. Unknown usernames succeed
// silently so the call does not reveal which accounts exist.
func (s *AccountService) RequestPasswordReset(ctx context.Context, userName string) error {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return common.ErrorInternal
	}

	token, err := s.issuer.IssueValidationToken(ctx, s.db, user, models.PurposeResetPassword, s.resetWindow)
	if err != nil {
		s.log.Error(ctx, "reset token issue failed", "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}
	if err := s.mailer.Send(ctx, mailer.Message{
		To:      user.UserName,
		Subject: mailer.ResetSubject,
		Body:    mailer.ResetBody(token.Value, s.resetWindow),
		Token:   token.Value,
	}); err != nil {
		s.log.Error(ctx, "reset mail failed", "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// ResetPassword consumes a reset_password token, stores the new hash and
// ends every open session of the owner.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, minPasswordLength)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	var (
		userID string
		ended  int64
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.consume(ctx, tx, token, models.PurposeResetPassword)
		if err != nil {
			return err
		}
		userID = id
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
		ended, err = s.repomanager.Tokens(tx).DeactivateUserSessions(ctx, id, s.now())
		return err
	})
	if err != nil {
		return tokenFlowError(err)
	}
	s.log.Info(ctx, "password reset", "user_id", userID, "sessions_ended", ended)
	return nil
}

func tokenFlowError(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return err
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrInvalidToken
	default:
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
}
