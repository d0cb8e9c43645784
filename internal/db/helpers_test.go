//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/testutil/testdb"
)

func startDB(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h, err := testdb.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return ctx, h.DB
}

// mustUser заводит участника с заполненным профилем.
func mustUser(t *testing.T, ctx context.Context, database *sql.DB, id string) {
	t.Helper()
	_, err := db.EnsureUser(ctx, database, id, "nick_"+id, time.Now())
	require.NoError(t, err)
	require.NoError(t, db.UpdateProfile(ctx, database, id, models.Profile{
		LastName: "DOE" + id, FirstName: "John", Class: "B1", Email: "u" + id + "@myges.fr",
	}))
}

func mustType(t *testing.T, ctx context.Context, database *sql.DB, name string, points int) int64 {
	t.Helper()
	id, err := db.CreateSessionType(ctx, database, name, "", points)
	require.NoError(t, err)
	return id
}

// mustActiveSemester — активный семестр, покрывающий сегодняшний день.
func mustActiveSemester(t *testing.T, ctx context.Context, database *sql.DB, name string) int64 {
	t.Helper()
	now := time.Now()
	id, err := db.CreateSemester(ctx, database, models.SemesterInput{
		Name:      name,
		StartDate: db.FormatDate(now.AddDate(0, -1, 0)),
		EndDate:   db.FormatDate(now.AddDate(0, 1, 0)),
	})
	require.NoError(t, err)
	require.NoError(t, db.SetActiveSemester(ctx, database, id))
	return id
}

// approve подаёт и сразу одобряет заявку.
func approve(t *testing.T, ctx context.Context, database *sql.DB, userID string, lines ...models.SessionLine) *models.Resolution {
	t.Helper()
	pid, err := db.SubmitPending(ctx, database, userID, db.FormatDate(time.Now()), lines)
	require.NoError(t, err)
	res, err := db.ResolvePending(ctx, database, pid, "staff", true)
	require.NoError(t, err)
	return res
}

func scoreOf(t *testing.T, ctx context.Context, database *sql.DB, id string) int64 {
	t.Helper()
	u, err := db.GetUser(ctx, database, id)
	require.NoError(t, err)
	return u.ScoreTotal
}
