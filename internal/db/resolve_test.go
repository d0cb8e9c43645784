//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
)

func historyRows(t *testing.T, ctx context.Context, database *sql.DB, pendingID int64) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRowContext(ctx,
		`SELECT count(*) FROM session_history WHERE pending_id = $1`, pendingID).Scan(&n))
	return n
}

func TestResolvePendingTransaction(t *testing.T) {
	ctx, database := startDB(t)
	mustUser(t, ctx, database, "1")
	normal := mustType(t, ctx, database, "Normal", 2)
	special := mustType(t, ctx, database, "Special", 5)

	t.Run("no semester covers the approval: history without semester", func(t *testing.T) {
		// прошлый неактивный семестр не должен подхватываться
		_, err := db.CreateSemester(ctx, database, models.SemesterInput{
			Name: "Old", StartDate: "01/01/2001", EndDate: "30/06/2001"})
		require.NoError(t, err)

		res := approve(t, ctx, database, "1", models.SessionLine{SessionTypeID: normal, Count: 1})
		assert.Nil(t, res.SemesterID)

		hist, err := db.GetUserHistory(ctx, database, "1", 0)
		require.NoError(t, err)
		require.NotEmpty(t, hist)
		for _, h := range hist {
			if h.PendingID != nil && *h.PendingID == res.PendingID {
				assert.Nil(t, h.SemesterID)
			}
		}
	})

	t.Run("points changed between submit and approve: current value is used", func(t *testing.T) {
		pid, err := db.SubmitPending(ctx, database, "1", "10/03/2025", []models.SessionLine{{SessionTypeID: special, Count: 3}})
		require.NoError(t, err)
		require.NoError(t, db.UpdateSessionType(ctx, database, special, "Special", "", 8))

		p, err := db.GetPendingByID(ctx, database, pid)
		require.NoError(t, err)
		assert.Equal(t, 24, p.TotalPoints())

		before := scoreOf(t, ctx, database, "1")
		res, err := db.ResolvePending(ctx, database, pid, "staff", true)
		require.NoError(t, err)
		assert.Equal(t, 24, res.TotalPoints)
		assert.Equal(t, before+24, scoreOf(t, ctx, database, "1"))

		hist, err := db.GetUserHistory(ctx, database, "1", 0)
		require.NoError(t, err)
		for _, h := range hist {
			if h.PendingID != nil && *h.PendingID == pid {
				assert.Equal(t, 24, h.PointsGained)
			}
		}
	})

	t.Run("failure on a later line rolls the whole approval back", func(t *testing.T) {
		pid, err := db.SubmitPending(ctx, database, "1", "11/03/2025", []models.SessionLine{
			{SessionTypeID: normal, Count: 2},
			{SessionTypeID: special, Count: 1},
		})
		require.NoError(t, err)

		// вторая строка упадёт на вставке в историю, первая к этому моменту уже вставлена
		_, err = database.ExecContext(ctx, fmt.Sprintf(
			`ALTER TABLE session_history ADD CONSTRAINT reject_special CHECK (session_type_id <> %d) NOT VALID`, special))
		require.NoError(t, err)
		defer func() {
			_, err := database.ExecContext(ctx, `ALTER TABLE session_history DROP CONSTRAINT reject_special`)
			require.NoError(t, err)
		}()

		before := scoreOf(t, ctx, database, "1")
		_, err = db.ResolvePending(ctx, database, pid, "staff", true)
		require.Error(t, err)

		p, err := db.GetPendingByID(ctx, database, pid)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, p.Status)
		assert.Nil(t, p.ResolvedBy)
		assert.Zero(t, historyRows(t, ctx, database, pid))
		assert.Equal(t, before, scoreOf(t, ctx, database, "1"))

		list, err := db.GetPending(ctx, database)
		require.NoError(t, err)
		var found bool
		for _, it := range list {
			found = found || it.ID == pid
		}
		assert.True(t, found, "session stays in the pending list")
	})
}
