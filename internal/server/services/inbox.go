package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// InboxService serves the stored messages to their participants, which is
// how recipients that were offline at send time catch up.
type InboxService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewInboxService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *InboxService {
	return &InboxService{db: db, repomanager: m, log: l.With("module", "inbox")}
}

func (s *InboxService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.Messages(s.db).UnreadCount(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "unread count failed", "user_id", userID, "error", err)
		return 0, common.ErrorInternal
	}
	return n, nil
}

func (s *InboxService) History(ctx context.Context, userID, counterpartyID string, limit int) ([]*models.Message, error) {
	if counterpartyID == "" {
		return nil, common.ErrInvalidInput
	}
	msgs, err := s.repomanager.Messages(s.db).History(ctx, userID, counterpartyID, limit)
	if errors.Is(err, common.ErrInvalidInput) {
		return nil, common.ErrInvalidInput
	}
	if err != nil {
		s.log.Error(ctx, "history failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return msgs, nil
}

func (s *InboxService) MarkRead(ctx context.Context, userID, counterpartyID string) (int64, error) {
	if counterpartyID == "" {
		return 0, common.ErrInvalidInput
	}
	n, err := s.repomanager.Messages(s.db).MarkRead(ctx, userID, counterpartyID)
	if errors.Is(err, common.ErrInvalidInput) {
		return 0, common.ErrInvalidInput
	}
	if err != nil {
		s.log.Error(ctx, "mark read failed", "user_id", userID, "error", err)
		return 0, common.ErrorInternal
	}
	return n, nil
}

// ProjectHistory returns project messages to members only. Projects the
// caller does not belong to are reported as common.ErrorNotFound.
func (s *InboxService) ProjectHistory(ctx context.Context, userID, projectID string, limit int) ([]*models.Message, error) {
	members, err := s.repomanager.Projects(s.db).Members(ctx, projectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "project members lookup failed", "project_id", projectID, "error", err)
		return nil, common.ErrorInternal
	}
	if !slices.Contains(members, userID) {
		return nil, common.ErrorNotFound
	}

	msgs, err := s.repomanager.Messages(s.db).ProjectHistory(ctx, projectID, limit)
	if err != nil {
		s.log.Error(ctx, "project history failed", "project_id", projectID, "error", err)
		return nil, common.ErrorInternal
	}
	return msgs, nil
}
