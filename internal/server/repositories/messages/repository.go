// Package messages is the durable messaging store: every routed frame is
// persisted here before any live delivery is attempted, and offline
// recipients read it back through the retrieval queries.
package messages

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

type Repository interface {
	// Persist stores m and returns the canonical record with the id and
	// server timestamp assigned by the database.
	Persist(ctx context.Context, m models.NewMessage) (*models.Message, error)

	// UnreadCount counts messages addressed to userID that were never read.
	UnreadCount(ctx context.Context, userID string) (int64, error)

	// History returns the most recent direct messages exchanged between
	// userID and counterpartyID, newest first.
	History(ctx context.Context, userID, counterpartyID string, limit int) ([]*models.Message, error)

	// MarkRead marks every unread message from counterpartyID to userID
	// as read and returns how many changed.
	MarkRead(ctx context.Context, userID, counterpartyID string) (int64, error)

	// ProjectHistory returns the most recent project messages, newest first.
	ProjectHistory(ctx context.Context, projectID string, limit int) ([]*models.Message, error)
}
