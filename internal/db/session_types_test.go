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

func TestSessionTypes(t *testing.T) {
	ctx, database := startDB(t)

	t.Run("seeded defaults", func(t *testing.T) {
		list, err := db.ListSessionTypes(ctx, database, false)
		require.NoError(t, err)
		names := make(map[string]int)
		for _, st := range list {
			names[st.Name] = st.Points
		}
		assert.Equal(t, 1, names["Partie normale"])
		assert.Equal(t, 3, names["Session coaching"])
	})

	t.Run("validation", func(t *testing.T) {
		_, err := db.CreateSessionType(ctx, database, "Zero", "", 0)
		require.ErrorIs(t, err, apperr.ErrInvalidPointValue)
		_, err = db.CreateSessionType(ctx, database, "Neg", "", -2)
		require.ErrorIs(t, err, apperr.ErrInvalidPointValue)
		_, err = db.CreateSessionType(ctx, database, "Partie normale", "", 1)
		require.ErrorIs(t, err, apperr.ErrDuplicateName)
	})

	t.Run("update and toggle", func(t *testing.T) {
		id := mustType(t, ctx, database, "Tournoi", 5)
		require.NoError(t, db.UpdateSessionType(ctx, database, id, "Tournoi officiel", "LAN", 6))
		st, err := db.GetSessionType(ctx, database, id)
		require.NoError(t, err)
		assert.Equal(t, "Tournoi officiel", st.Name)
		assert.Equal(t, 6, st.Points)

		require.ErrorIs(t, db.UpdateSessionType(ctx, database, id, "Tournoi officiel", "", 0), apperr.ErrInvalidPointValue)
		require.ErrorIs(t, db.UpdateSessionType(ctx, database, 9999, "x", "", 1), apperr.ErrNotFound)

		require.NoError(t, db.SetSessionTypeActive(ctx, database, id, false))
		active, err := db.ListSessionTypes(ctx, database, false)
		require.NoError(t, err)
		for _, st := range active {
			assert.NotEqual(t, id, st.ID)
		}
		all, err := db.ListSessionTypes(ctx, database, true)
		require.NoError(t, err)
		assert.Greater(t, len(all), len(active))
	})

	t.Run("delete is hard only when unreferenced", func(t *testing.T) {
		free := mustType(t, ctx, database, "Free", 1)
		hard, err := db.DeleteSessionType(ctx, database, free)
		require.NoError(t, err)
		assert.True(t, hard)
		_, err = db.GetSessionType(ctx, database, free)
		require.ErrorIs(t, err, apperr.ErrNotFound)

		mustUser(t, ctx, database, "1")
		usedPending := mustType(t, ctx, database, "InPending", 1)
		_, err = db.SubmitPending(ctx, database, "1", "01/01/2025", []models.SessionLine{{SessionTypeID: usedPending, Count: 1}})
		require.NoError(t, err)
		hard, err = db.DeleteSessionType(ctx, database, usedPending)
		require.NoError(t, err)
		assert.False(t, hard)
		st, err := db.GetSessionType(ctx, database, usedPending)
		require.NoError(t, err)
		assert.False(t, st.IsActive)

		usedHistory := mustType(t, ctx, database, "InHistory", 1)
		approve(t, ctx, database, "1", models.SessionLine{SessionTypeID: usedHistory, Count: 1})
		hard, err = db.DeleteSessionType(ctx, database, usedHistory)
		require.NoError(t, err)
		assert.False(t, hard)

		_, err = db.DeleteSessionType(ctx, database, 9999)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
