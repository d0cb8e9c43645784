//go:build testutil
// +build testutil

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
)

func strPtr(s string) *string { return &s }

func TestRankings_EndToEnd(t *testing.T) {
	ctx, database := startDB(t)
	mustUser(t, ctx, database, "42")
	coaching := mustType(t, ctx, database, "Coaching", 3)
	semID := mustActiveSemester(t, ctx, database, "S")

	approve(t, ctx, database, "42", models.SessionLine{SessionTypeID: coaching, Count: 2})
	assert.Equal(t, int64(6), scoreOf(t, ctx, database, "42"))

	n, err := db.CalculateRankings(ctx, database, semID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := db.GetUserRanking(ctx, database, "42", semID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), r.TotalPoints)
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, 100.0, r.Percentile)
	// 100-й перцентиль попадает в последний порог шкалы по умолчанию
	assert.Equal(t, 1.0, r.FinalNote)
	assert.Equal(t, "John DOE42", r.DisplayName())

	t.Run("single-threshold scale gives the top note", func(t *testing.T) {
		require.NoError(t, db.UpdateSetting(ctx, database, models.SettingPercentileThresholds, "[100]", nil))
		require.NoError(t, db.UpdateSetting(ctx, database, models.SettingPercentileNotes, "[4]", nil))

		_, err := db.CalculateRankings(ctx, database, semID)
		require.NoError(t, err)
		r, err := db.GetUserRanking(ctx, database, "42", semID)
		require.NoError(t, err)
		assert.Equal(t, 4.0, r.FinalNote)
	})
}

func TestCalculateRankings(t *testing.T) {
	ctx, database := startDB(t)
	normal := mustType(t, ctx, database, "Normal", 1)
	semID := mustActiveSemester(t, ctx, database, "S")

	// a:10, b:5, c:5 (b одобрен раньше c), d:1, e — без сессий
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustUser(t, ctx, database, id)
	}
	approve(t, ctx, database, "a", models.SessionLine{SessionTypeID: normal, Count: 10})
	approve(t, ctx, database, "b", models.SessionLine{SessionTypeID: normal, Count: 5})
	approve(t, ctx, database, "c", models.SessionLine{SessionTypeID: normal, Count: 5})
	approve(t, ctx, database, "d", models.SessionLine{SessionTypeID: normal, Count: 1})

	n, err := db.CalculateRankings(ctx, database, semID)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	first, err := db.GetRankings(ctx, database, semID, 0)
	require.NoError(t, err)
	require.Len(t, first, 4)

	wantIDs := []string{"a", "b", "c", "d"}
	wantNotes := []float64{4, 3, 2, 1}
	for i, r := range first {
		assert.Equal(t, wantIDs[i], r.UserID)
		assert.Equal(t, i+1, r.Rank)
		assert.InDelta(t, float64(i+1)/4*100, r.Percentile, 1e-9)
		assert.Equal(t, wantNotes[i], r.FinalNote)
	}

	_, err = db.GetUserRanking(ctx, database, "e", semID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	t.Run("recompute without changes is identical and replaces rows", func(t *testing.T) {
		_, err := db.CalculateRankings(ctx, database, semID)
		require.NoError(t, err)
		second, err := db.GetRankings(ctx, database, semID, 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		cnt, err := db.CountRankings(ctx, database, semID)
		require.NoError(t, err)
		assert.Equal(t, 4, cnt)
	})

	t.Run("limit", func(t *testing.T) {
		top, err := db.GetRankings(ctx, database, semID, 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "a", top[0].UserID)
	})

	t.Run("new approvals move ranks", func(t *testing.T) {
		approve(t, ctx, database, "e", models.SessionLine{SessionTypeID: normal, Count: 20})
		n, err := db.CalculateRankings(ctx, database, semID)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		r, err := db.GetUserRanking(ctx, database, "e", semID)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Rank)
		assert.Equal(t, 20.0, r.Percentile)
	})

	t.Run("unknown semester", func(t *testing.T) {
		_, err := db.CalculateRankings(ctx, database, 9999)
		require.ErrorIs(t, err, apperr.ErrSemesterNotFound)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("malformed settings keep previous rankings", func(t *testing.T) {
		require.NoError(t, db.UpdateSetting(ctx, database, models.SettingPercentileNotes, "[4,3", strPtr("broken")))
		_, err := db.CalculateRankings(ctx, database, semID)
		require.ErrorIs(t, err, apperr.ErrMalformedSettingsJSON)

		cnt, err := db.CountRankings(ctx, database, semID)
		require.NoError(t, err)
		assert.Equal(t, 5, cnt)
	})
}

func TestCalculateRankings_EmptySemesterClearsStaleRows(t *testing.T) {
	ctx, database := startDB(t)
	mustUser(t, ctx, database, "1")
	normal := mustType(t, ctx, database, "Normal", 1)
	semID := mustActiveSemester(t, ctx, database, "S")
	approve(t, ctx, database, "1", models.SessionLine{SessionTypeID: normal, Count: 1})

	n, err := db.CalculateRankings(ctx, database, semID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// история становится невалидной — рейтинг должен опустеть
	_, err = database.ExecContext(ctx, `UPDATE session_history SET validated = FALSE`)
	require.NoError(t, err)

	n, err = db.CalculateRankings(ctx, database, semID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	cnt, err := db.CountRankings(ctx, database, semID)
	require.NoError(t, err)
	assert.Equal(t, 0, cnt)
}
