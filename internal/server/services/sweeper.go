package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

// IdleSweeper periodically deactivates sessions unused for longer than the
// idle timeout. Live connections are not closed; they fail their next check.
type IdleSweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	timeout     time.Duration
	interval    time.Duration
	log         logging.Logger
	now         func() time.Time
}

func NewIdleSweeper(db *sql.DB, m repomanager.RepositoryManager, timeout, interval time.Duration, l logging.Logger) *IdleSweeper {
	return &IdleSweeper{
		db:          db,
		repomanager: m,
		timeout:     timeout,
		interval:    interval,
		log:         l.With("module", "sweeper"),
		now:         time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (s *IdleSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info(ctx, "idle sweeper started", "timeout", s.timeout.String(), "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "idle sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, s.now()); err != nil {
				s.log.Error(ctx, "idle sweep failed", "error", err)
			}
		}
	}
}

// Sweep deactivates every session idle at now and returns how many changed.
// A session used after the lookup is left active. A failure on one session
// does not stop the others.
func (s *IdleSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	repo := s.repomanager.Tokens(s.db)

	idle, err := repo.FindIdleSessions(ctx, s.timeout, now)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-s.timeout)
	expired := 0
	for _, session := range idle {
		changed, err := repo.DeactivateIdle(ctx, session.Value, cutoff)
		if err != nil {
			s.log.Warn(ctx, "deactivate failed", "token", common.ShortToken(session.Value), "error", err)
			continue
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		s.log.Info(ctx, "idle sessions expired", "count", expired)
	}
	return expired, nil
}
