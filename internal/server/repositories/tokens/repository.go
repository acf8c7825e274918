// Package tokens declares the server-side repository contract for the
// token store: validation and session tokens, their activity checks and
// their monotonic deactivation.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// Repository is the durable token store. Every method maps to a single
// statement, so concurrent callers racing on the same token only ever
// observe active=true or active=false.
type Repository interface {
	// CreateValidation inserts t and fills in its ID. A duplicate value is
	// reported as common.ErrAlreadyExists.
	CreateValidation(ctx context.Context, t *models.ValidationToken) error

	// CreateSession inserts t and fills in its ID. A duplicate value is
	// reported as common.ErrAlreadyExists.
	CreateSession(ctx context.Context, t *models.SessionToken) error

	// IsActiveForUser reports whether value exists, is active, belongs to
	// userID and, for validation tokens, has not expired at now.
	IsActiveForUser(ctx context.Context, value, userID string, now time.Time) (bool, error)

	// Deactivate clears the active flag. It reports whether a row changed.
	Deactivate(ctx context.Context, value string) (bool, error)

	// DeactivateIdle ends a session only if it was last used before cutoff,
	// so a session touched after it was found idle survives. It reports
	// whether a row changed.
	DeactivateIdle(ctx context.Context, value string, cutoff time.Time) (bool, error)

	// RecordLogout sets logout_time and clears the active flag of a session
	// in one statement. It reports whether a row changed.
	RecordLogout(ctx context.Context, value string, now time.Time) (bool, error)

	// Touch refreshes last_access_time of an active session.
	Touch(ctx context.Context, value string, now time.Time) (bool, error)

	// FindIdleSessions returns every active session whose last access is
	// older than now-timeout.
	FindIdleSessions(ctx context.Context, timeout time.Duration, now time.Time) ([]*models.SessionToken, error)

	// ResolveOwner returns the owner of an active session token or
	// common.ErrorNotFound.
	ResolveOwner(ctx context.Context, value string) (string, error)

	// FindValidation returns the validation token with this value or
	// common.ErrorNotFound.
	FindValidation(ctx context.Context, value string) (*models.ValidationToken, error)

	// ActiveSessionTokens lists the active session tokens of the given users.
	ActiveSessionTokens(ctx context.Context, userIDs ...string) ([]models.SessionRef, error)

	// DeactivateUserSessions ends every active session of userID and
	// returns how many were ended.
	DeactivateUserSessions(ctx context.Context, userID string, now time.Time) (int64, error)
}
