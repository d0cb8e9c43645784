package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/models"
)

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	l, err := New(ctx, "", 0)
	require.NoError(t, err)
	require.Nil(t, l)

	_, err = l.Get(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, l.Set(ctx, 1, 10, []models.RankingRow{{UserID: "1"}}))
	assert.NoError(t, l.Invalidate(ctx, 1))
	assert.NoError(t, l.Close())
}

func TestBadURL(t *testing.T) {
	_, err := New(context.Background(), "http://nope", 0)
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "leaderboard:semester:12", semesterKey(12))
	assert.Equal(t, "limit:10", limitField(10))
}
