package jobs

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/bot/draft"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/metrics"
)

// Recomputer — app.Leaderboard.
type Recomputer interface {
	RecomputeActive(ctx context.Context) (int, error)
}

// RankingRefresh пересчитывает рейтинг активного семестра.
func RankingRefresh(r Recomputer, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := r.RecomputeActive(ctx)
		if err != nil {
			return err
		}
		log.Debug("active ranking refreshed", zap.Int("ranked", n))
		return nil
	}
}

// PendingBacklog выставляет gauge очереди заявок.
func PendingBacklog(database *sql.DB) Job {
	return func(ctx context.Context) error {
		n, err := db.CountPending(ctx, database)
		if err != nil {
			return err
		}
		metrics.PendingBacklog.Set(float64(n))
		return nil
	}
}

// DraftSweep чистит брошенные черновики.
func DraftSweep(s *draft.Store, now func() time.Time) Job {
	return func(context.Context) error {
		s.Sweep(now())
		return nil
	}
}
