package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// DefaultLimit caps history queries when the caller passes a non-positive limit.
const DefaultLimit = 50

const selectColumns = `id, kind, sender_id, recipient_user_id, project_id, subject, content, created_at, read_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) Persist(ctx context.Context, m models.NewMessage) (*models.Message, error) {
	query := `
		INSERT INTO messages (kind, sender_id, recipient_user_id, project_id, subject, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	msg := &models.Message{
		Kind:            m.Kind,
		SenderID:        m.SenderID,
		RecipientUserID: m.RecipientUserID,
		ProjectID:       m.ProjectID,
		Subject:         m.Subject,
		Content:         m.Content,
	}
	err := r.db.QueryRowContext(ctx, query,
		string(m.Kind), m.SenderID, nullable(m.RecipientUserID), nullable(m.ProjectID), m.Subject, m.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT count(*) FROM messages
		WHERE recipient_user_id = $1 AND read_at IS NULL
	`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// History returns common.ErrInvalidInput for a malformed counterparty id.
func (r *PostgresRepository) History(ctx context.Context, userID, counterpartyID string, limit int) ([]*models.Message, error) {
	if _, err := uuid.Parse(counterpartyID); err != nil {
		return nil, fmt.Errorf("%w: counterparty id", common.ErrInvalidInput)
	}
	query := `
		SELECT ` + selectColumns + ` FROM messages
		WHERE kind = 'direct'
		  AND ((sender_id = $1 AND recipient_user_id = $2) OR (sender_id = $2 AND recipient_user_id = $1))
		ORDER BY created_at DESC
		LIMIT $3
	`
	return r.list(ctx, query, userID, counterpartyID, normalizeLimit(limit))
}

func (r *PostgresRepository) MarkRead(ctx context.Context, userID, counterpartyID string) (int64, error) {
	if _, err := uuid.Parse(counterpartyID); err != nil {
		return 0, fmt.Errorf("%w: counterparty id", common.ErrInvalidInput)
	}
	query := `
		UPDATE messages SET read_at = now()
		WHERE recipient_user_id = $1 AND sender_id = $2 AND read_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, userID, counterpartyID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ProjectHistory(ctx context.Context, projectID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT ` + selectColumns + ` FROM messages
		WHERE kind = 'project' AND project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, projectID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultLimit {
		return DefaultLimit
	}
	return limit
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var (
			m         models.Message
			kind      string
			recipient sql.NullString
			project   sql.NullString
			readAt    sql.NullTime
		)
		if err := rows.Scan(&m.ID, &kind, &m.SenderID, &recipient, &project, &m.Subject, &m.Content, &m.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Kind = models.MessageKind(kind)
		m.RecipientUserID = recipient.String
		m.ProjectID = project.String
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
