package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Spok95/session-bot/internal/bot/draft"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRunnerCountsErrorsAndSurvivesPanic(t *testing.T) {
	r := New(context.Background(), zaptest.NewLogger(t))

	before := counterValue(t, jobErrors.WithLabelValues("flaky"))
	r.run("flaky", func(context.Context) error { return errors.New("boom") })
	r.run("flaky", func(context.Context) error { panic("oops") })
	r.run("flaky", func(context.Context) error { return nil })

	assert.Equal(t, before+2, counterValue(t, jobErrors.WithLabelValues("flaky")))
	assert.GreaterOrEqual(t, counterValue(t, jobRuns.WithLabelValues("flaky")), 3.0)
}

func TestRunnerEveryStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx, zaptest.NewLogger(t))

	var calls int32
	r.Every(5*time.Millisecond, "tick", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls))
}

type fakeRecomputer struct {
	n   int
	err error
}

func (f fakeRecomputer) RecomputeActive(context.Context) (int, error) { return f.n, f.err }

func TestRankingRefresh(t *testing.T) {
	log := zaptest.NewLogger(t)
	assert.NoError(t, RankingRefresh(fakeRecomputer{n: 3}, log)(context.Background()))
	assert.Error(t, RankingRefresh(fakeRecomputer{err: errors.New("db down")}, log)(context.Background()))
}

func TestDraftSweep(t *testing.T) {
	s := draft.NewStore(time.Minute)
	t0 := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	k := draft.Key{ChatID: 1, UserID: "100"}
	s.Start(k, "01/10/2025", t0)

	now := t0.Add(2 * time.Minute)
	require.NoError(t, DraftSweep(s, func() time.Time { return now })(context.Background()))
	assert.False(t, s.With(k, 0, t0, func(*draft.Builder) {}))
}
