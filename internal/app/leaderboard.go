package app

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/cache"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/metrics"
	"github.com/Spok95/session-bot/internal/models"
)

// RankCache — кэш top-N (cache.Leaderboard). Методы должны работать и на nil-кэше.
type RankCache interface {
	Get(ctx context.Context, semesterID int64, limit int) ([]models.RankingRow, error)
	Set(ctx context.Context, semesterID int64, limit int, rows []models.RankingRow) error
	Invalidate(ctx context.Context, semesterID int64) error
}

// Leaderboard — чтение рейтинга через кэш и пересчёт с его сбросом.
type Leaderboard struct {
	DB    *sql.DB
	Cache RankCache
	Log   *zap.Logger
	Now   func() time.Time

	// gens — номер пересчёта по семестру; чтение, начатое до пересчёта,
	// не оставляет в кэше старый снимок.
	mu   sync.Mutex
	gens map[int64]uint64
}

// NewLeaderboard: c может быть nil, тогда всё читается из БД.
func NewLeaderboard(database *sql.DB, c *cache.Leaderboard, log *zap.Logger) *Leaderboard {
	return &Leaderboard{DB: database, Cache: c, Log: log, Now: time.Now}
}

func (l *Leaderboard) gen(semesterID int64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[semesterID]
}

func (l *Leaderboard) bump(semesterID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gens == nil {
		l.gens = make(map[int64]uint64)
	}
	l.gens[semesterID]++
}

func (l *Leaderboard) Recompute(ctx context.Context, semesterID int64) (int, error) {
	t0 := time.Now()
	n, err := db.CalculateRankings(ctx, l.DB, semesterID)
	metrics.ObserveRanking(time.Since(t0))
	if err != nil {
		return 0, err
	}
	l.bump(semesterID)
	if err := l.Cache.Invalidate(ctx, semesterID); err != nil {
		l.Log.Warn("ranking cache invalidate failed", zap.Int64("semester_id", semesterID), zap.Error(err))
	}
	l.Log.Info("ranking recomputed", zap.Int64("semester_id", semesterID), zap.Int("ranked", n),
		zap.Duration("took", time.Since(t0)))
	return n, nil
}

// RecomputeActive пересчитывает активный семестр; без активного семестра — no-op.
func (l *Leaderboard) RecomputeActive(ctx context.Context) (int, error) {
	sem, err := l.Active(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return l.Recompute(ctx, sem.ID)
}

func (l *Leaderboard) Active(ctx context.Context) (*models.Semester, error) {
	return db.GetActiveSemester(ctx, l.DB, l.Now())
}

// View — рейтинг для показа: сначала пересчёт, потом top-N.
func (l *Leaderboard) View(ctx context.Context, semesterID int64, limit int) ([]models.RankingRow, error) {
	if _, err := l.Recompute(ctx, semesterID); err != nil {
		return nil, err
	}
	return l.Top(ctx, semesterID, limit)
}

// Top — первые limit строк сохранённого рейтинга.
func (l *Leaderboard) Top(ctx context.Context, semesterID int64, limit int) ([]models.RankingRow, error) {
	rows, err := l.Cache.Get(ctx, semesterID, limit)
	if err == nil {
		metrics.RankingCache.WithLabelValues("hit").Inc()
		return rows, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Log.Warn("ranking cache read failed", zap.Error(err))
	}
	metrics.RankingCache.WithLabelValues("miss").Inc()

	g := l.gen(semesterID)
	rows, err = db.GetRankings(ctx, l.DB, semesterID, limit)
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, semesterID, limit, rows); err != nil {
		l.Log.Warn("ranking cache write failed", zap.Error(err))
	}
	// пересчёт прошёл между чтением и записью: записанный снимок мог устареть
	if l.gen(semesterID) != g {
		if err := l.Cache.Invalidate(ctx, semesterID); err != nil {
			l.Log.Warn("ranking cache invalidate failed", zap.Int64("semester_id", semesterID), zap.Error(err))
		}
	}
	return rows, nil
}

func (l *Leaderboard) Standing(ctx context.Context, userID string, semesterID int64) (*models.RankingRow, error) {
	return db.GetUserRanking(ctx, l.DB, userID, semesterID)
}
