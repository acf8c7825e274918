package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateValidation(ctx context.Context, t *models.ValidationToken) error {
	query := `
		INSERT INTO tokens (value, user_id, kind, purpose, active, created_at, expires_at)
		VALUES ($1, $2, 'validation', $3, TRUE, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, t.Value, t.UserID, string(t.Purpose), t.CreationTime, t.ExpirationTime).Scan(&t.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	t.Active = true
	return nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, t *models.SessionToken) error {
	query := `
		INSERT INTO tokens (value, user_id, kind, active, login_time, last_access_time, origin_address)
		VALUES ($1, $2, 'session', TRUE, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, t.Value, t.UserID, t.LoginTime, t.LastAccessTime, t.OriginAddress).Scan(&t.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	t.Active = true
	return nil
}

func (r *PostgresRepository) IsActiveForUser(ctx context.Context, value, userID string, now time.Time) (bool, error) {
	query := `
		SELECT user_id, kind, active, expires_at
		FROM tokens
		WHERE value = $1
	`
	var (
		state   models.TokenState
		kind    string
		expires sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&state.UserID, &kind, &state.Active, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	state.Kind = models.TokenKind(kind)
	if expires.Valid {
		state.ExpirationTime = &expires.Time
	}
	return state.ActiveFor(userID, now), nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, value string) (bool, error) {
	query := `
		UPDATE tokens SET active = FALSE
		WHERE value = $1 AND active
	`
	return r.exec(ctx, query, value)
}

func (r *PostgresRepository) DeactivateIdle(ctx context.Context, value string, cutoff time.Time) (bool, error) {
	query := `
		UPDATE tokens SET active = FALSE
		WHERE value = $1 AND kind = 'session' AND active AND last_access_time < $2
	`
	return r.exec(ctx, query, value, cutoff)
}

func (r *PostgresRepository) RecordLogout(ctx context.Context, value string, now time.Time) (bool, error) {
	query := `
		UPDATE tokens SET active = FALSE, logout_time = $2
		WHERE value = $1 AND kind = 'session' AND active
	`
	return r.exec(ctx, query, value, now)
}

func (r *PostgresRepository) Touch(ctx context.Context, value string, now time.Time) (bool, error) {
	query := `
		UPDATE tokens SET last_access_time = $2
		WHERE value = $1 AND kind = 'session' AND active
	`
	return r.exec(ctx, query, value, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	changed, err := dbx.RowsChanged(res)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return changed, nil
}

func (r *PostgresRepository) FindIdleSessions(ctx context.Context, timeout time.Duration, now time.Time) ([]*models.SessionToken, error) {
	query := `
		SELECT id, value, user_id, login_time, last_access_time, origin_address
		FROM tokens
		WHERE kind = 'session' AND active AND last_access_time < $1
		ORDER BY last_access_time
	`
	rows, err := r.db.QueryContext(ctx, query, now.Add(-timeout))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SessionToken
	for rows.Next() {
		s := &models.SessionToken{Token: models.Token{Active: true}}
		var origin sql.NullString
		if err := rows.Scan(&s.ID, &s.Value, &s.UserID, &s.LoginTime, &s.LastAccessTime, &origin); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.OriginAddress = origin.String
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ResolveOwner(ctx context.Context, value string) (string, error) {
	query := `
		SELECT user_id
		FROM tokens
		WHERE value = $1 AND kind = 'session' AND active
	`
	var userID string
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

func (r *PostgresRepository) FindValidation(ctx context.Context, value string) (*models.ValidationToken, error) {
	query := `
		SELECT id, value, user_id, active, purpose, created_at, expires_at
		FROM tokens
		WHERE value = $1 AND kind = 'validation'
	`
	t := &models.ValidationToken{}
	var purpose string
	err := r.db.QueryRowContext(ctx, query, value).Scan(&t.ID, &t.Value, &t.UserID, &t.Active, &purpose, &t.CreationTime, &t.ExpirationTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.Purpose = models.TokenPurpose(purpose)
	return t, nil
}

func (r *PostgresRepository) ActiveSessionTokens(ctx context.Context, userIDs ...string) ([]models.SessionRef, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(userIDs))
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `
		SELECT user_id, value
		FROM tokens
		WHERE kind = 'session' AND active AND user_id IN (` + strings.Join(placeholders, ", ") + `)
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var refs []models.SessionRef
	for rows.Next() {
		var ref models.SessionRef
		if err := rows.Scan(&ref.UserID, &ref.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return refs, nil
}

func (r *PostgresRepository) DeactivateUserSessions(ctx context.Context, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE tokens SET active = FALSE, logout_time = $2
		WHERE user_id = $1 AND kind = 'session' AND active
	`
	res, err := r.db.ExecContext(ctx, query, userID, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
