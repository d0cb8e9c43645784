//go:build testutil
// +build testutil

package app_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Spok95/session-bot/internal/app"
	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/cache"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/testutil/testdb"
)

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	require.NoError(t, err)
	defer h.Close()

	board := app.NewLeaderboard(h.DB, nil, zaptest.NewLogger(t))

	n, err := board.RecomputeActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = db.SeedDefaultSemester(ctx, h.DB, time.Now())
	require.NoError(t, err)
	sem, err := board.Active(ctx)
	require.NoError(t, err)

	_, err = db.EnsureUser(ctx, h.DB, "1", "p1", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.UpdateProfile(ctx, h.DB, "1", models.Profile{LastName: "A", FirstName: "B", Class: "C", Email: "a@myges.fr"}))
	types, err := db.ListSessionTypes(ctx, h.DB, false)
	require.NoError(t, err)
	pid, err := db.SubmitPending(ctx, h.DB, "1", db.FormatDate(time.Now()), []models.SessionLine{{SessionTypeID: types[0].ID, Count: 2}})
	require.NoError(t, err)
	_, err = db.ResolvePending(ctx, h.DB, pid, "admin", true)
	require.NoError(t, err)

	n, err = board.RecomputeActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err := board.Top(ctx, sem.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "1", top[0].UserID)

	st, err := board.Standing(ctx, "1", sem.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rank)

	_, err = board.Standing(ctx, "2", sem.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// memCache — кэш в памяти; onSet вызывается перед записью.
type memCache struct {
	mu    sync.Mutex
	rows  map[int64][]models.RankingRow
	onSet func()
}

func (c *memCache) Get(_ context.Context, semesterID int64, _ int) ([]models.RankingRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.rows[semesterID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return rows, nil
}

func (c *memCache) Set(_ context.Context, semesterID int64, _ int, rows []models.RankingRow) error {
	if c.onSet != nil {
		f := c.onSet
		c.onSet = nil
		f()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[semesterID] = rows
	return nil
}

func (c *memCache) Invalidate(_ context.Context, semesterID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, semesterID)
	return nil
}

func rankedMember(t *testing.T, ctx context.Context, database *sql.DB, id string) {
	t.Helper()
	_, err := db.EnsureUser(ctx, database, id, "p"+id, time.Now())
	require.NoError(t, err)
	require.NoError(t, db.UpdateProfile(ctx, database, id, models.Profile{
		LastName: "L" + id, FirstName: "F", Class: "C", Email: "u" + id + "@myges.fr"}))
}

func approveSessions(t *testing.T, ctx context.Context, database *sql.DB, userID string, typeID int64, count int) {
	t.Helper()
	pid, err := db.SubmitPending(ctx, database, userID, db.FormatDate(time.Now()),
		[]models.SessionLine{{SessionTypeID: typeID, Count: count}})
	require.NoError(t, err)
	_, err = db.ResolvePending(ctx, database, pid, "admin", true)
	require.NoError(t, err)
}

func TestViewReflectsApprovalsSinceLastRecompute(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	require.NoError(t, err)
	defer h.Close()

	_, err = db.SeedDefaultSemester(ctx, h.DB, time.Now())
	require.NoError(t, err)
	c := &memCache{rows: map[int64][]models.RankingRow{}}
	board := &app.Leaderboard{DB: h.DB, Cache: c, Log: zaptest.NewLogger(t), Now: time.Now}
	sem, err := board.Active(ctx)
	require.NoError(t, err)
	typeID, err := db.CreateSessionType(ctx, h.DB, "Ladder", "", 1)
	require.NoError(t, err)

	rankedMember(t, ctx, h.DB, "1")
	rankedMember(t, ctx, h.DB, "2")
	approveSessions(t, ctx, h.DB, "1", typeID, 5)
	approveSessions(t, ctx, h.DB, "2", typeID, 1)

	top, err := board.View(ctx, sem.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "1", top[0].UserID)

	// "2" обгоняет "1"; следующий показ видит это без /recalc, несмотря на кэш
	approveSessions(t, ctx, h.DB, "2", typeID, 10)
	top, err = board.View(ctx, sem.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "2", top[0].UserID)
	assert.Equal(t, int64(11), top[0].TotalPoints)
	assert.Equal(t, 1, top[0].Rank)
}

func TestTopDoesNotCacheSnapshotOlderThanRecompute(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	require.NoError(t, err)
	defer h.Close()

	_, err = db.SeedDefaultSemester(ctx, h.DB, time.Now())
	require.NoError(t, err)
	c := &memCache{rows: map[int64][]models.RankingRow{}}
	board := &app.Leaderboard{DB: h.DB, Cache: c, Log: zaptest.NewLogger(t), Now: time.Now}
	sem, err := board.Active(ctx)
	require.NoError(t, err)
	typeID, err := db.CreateSessionType(ctx, h.DB, "Ladder", "", 1)
	require.NoError(t, err)

	rankedMember(t, ctx, h.DB, "1")
	approveSessions(t, ctx, h.DB, "1", typeID, 2)
	_, err = board.Recompute(ctx, sem.ID)
	require.NoError(t, err)

	rankedMember(t, ctx, h.DB, "2")
	approveSessions(t, ctx, h.DB, "2", typeID, 9)

	// пересчёт вклинивается между чтением из БД и записью в кэш
	c.onSet = func() {
		_, err := board.Recompute(ctx, sem.ID)
		require.NoError(t, err)
	}
	stale, err := board.Top(ctx, sem.ID, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	_, err = c.Get(ctx, sem.ID, 10)
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "snapshot read before the recompute must not stay cached")

	fresh, err := board.Top(ctx, sem.ID, 10)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "2", fresh[0].UserID)
}
