// Package services contains server-side business logic: token issuance,
// session authentication, account flows and the idle-session sweeper.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// issueAttempts bounds retries when a freshly drawn value collides with a
// stored one.
const issueAttempts = 3

// TokenIssuer mints opaque random tokens and stores them. Every call draws
// fresh entropy, so it is safe for concurrent use.
type TokenIssuer struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	random      func(size int) (string, error)
}

func NewTokenIssuer(m repomanager.RepositoryManager) *TokenIssuer {
	return &TokenIssuer{repomanager: m, now: time.Now, random: common.MakeRandURLString}
}

// IssueValidationToken creates a single-purpose token for user valid for ttl
// from now. A nil user is rejected with common.ErrInvalidInput.
func (i *TokenIssuer) IssueValidationToken(ctx context.Context, db dbx.DBTX, user *models.User, purpose models.TokenPurpose, ttl time.Duration) (*models.ValidationToken, error) {
	if user == nil || user.ID == "" {
		return nil, common.ErrInvalidInput
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: non-positive ttl %s", common.ErrInvalidInput, ttl)
	}

	repo := i.repomanager.Tokens(db)
	for attempt := 1; ; attempt++ {
		value, err := i.random(common.TokenSize)
		if err != nil {
			return nil, fmt.Errorf("error generating token: %w", err)
		}
		now := i.now()
		t := &models.ValidationToken{
			Token:          models.Token{Value: value, UserID: user.ID},
			Purpose:        purpose,
			CreationTime:   now,
			ExpirationTime: now.Add(ttl),
		}
		err = repo.CreateValidation(ctx, t)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, common.ErrAlreadyExists) || attempt == issueAttempts {
			return nil, fmt.Errorf("error storing validation token: %w", err)
		}
	}
}

// IssueSessionToken opens a new session for user from originAddress.
func (i *TokenIssuer) IssueSessionToken(ctx context.Context, db dbx.DBTX, user *models.User, originAddress string) (*models.SessionToken, error) {
	if user == nil || user.ID == "" {
		return nil, common.ErrInvalidInput
	}

	repo := i.repomanager.Tokens(db)
	for attempt := 1; ; attempt++ {
		value, err := i.random(common.TokenSize)
		if err != nil {
			return nil, fmt.Errorf("error generating token: %w", err)
		}
		now := i.now()
		t := &models.SessionToken{
			Token:          models.Token{Value: value, UserID: user.ID},
			LoginTime:      now,
			LastAccessTime: now,
			OriginAddress:  originAddress,
		}
		err = repo.CreateSession(ctx, t)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, common.ErrAlreadyExists) || attempt == issueAttempts {
			return nil, fmt.Errorf("error storing session token: %w", err)
		}
	}
}
