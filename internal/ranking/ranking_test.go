package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/models"
)

func defaultParams() Params {
	return Params{NoteMax: 4, Thresholds: DefaultThresholds, Notes: DefaultNotes}
}

func TestLoadParams(t *testing.T) {
	t.Run("defaults when absent", func(t *testing.T) {
		p, err := LoadParams(map[string]string{}, 5)
		require.NoError(t, err)
		assert.Equal(t, 5.0, p.NoteMax)
		assert.Equal(t, DefaultThresholds, p.Thresholds)
		assert.Equal(t, DefaultNotes, p.Notes)
	})

	t.Run("NOTE_MAX overrides semester", func(t *testing.T) {
		p, err := LoadParams(map[string]string{models.SettingNoteMax: "20"}, 4)
		require.NoError(t, err)
		assert.Equal(t, 20.0, p.NoteMax)
	})

	t.Run("custom arrays", func(t *testing.T) {
		p, err := LoadParams(map[string]string{
			models.SettingPercentileThresholds: "[10, 100]",
			models.SettingPercentileNotes:      "[20, 10]",
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultNoteMax, p.NoteMax)
		assert.Equal(t, []float64{10, 100}, p.Thresholds)
		assert.Equal(t, []float64{20, 10}, p.Notes)
	})

	bad := map[string]map[string]string{
		"not json":        {models.SettingPercentileThresholds: "25,50"},
		"empty array":     {models.SettingPercentileNotes: "[]"},
		"length mismatch": {models.SettingPercentileThresholds: "[50, 100]"},
		"strings":         {models.SettingPercentileNotes: `["a","b","c","d"]`},
		"note max zero":   {models.SettingNoteMax: "0"},
		"note max text":   {models.SettingNoteMax: "four"},
	}
	for name, settings := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := LoadParams(settings, 4)
			require.ErrorIs(t, err, apperr.ErrMalformedSettingsJSON)
		})
	}
}

func TestValidateSetting(t *testing.T) {
	assert.NoError(t, ValidateSetting(models.SettingNoteMax, "4.5"))
	assert.NoError(t, ValidateSetting(models.SettingPercentileNotes, "[4,3,2,1]"))
	assert.NoError(t, ValidateSetting("WELCOME_TEXT", "anything"))
	assert.ErrorIs(t, ValidateSetting(models.SettingPercentileThresholds, "{"), apperr.ErrMalformedSettingsJSON)
	assert.ErrorIs(t, ValidateSetting(models.SettingNoteMax, "-1"), apperr.ErrMalformedSettingsJSON)
}

func TestGrade(t *testing.T) {
	p := defaultParams()
	cases := []struct {
		pct  float64
		want float64
	}{
		{10, 4},
		{25, 4},
		{25.01, 3},
		{50, 3},
		{75, 2},
		{100, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.Grade(c.pct), "percentile %v", c.pct)
	}

	// порог не найден — notes[0]
	low := Params{Thresholds: []float64{10, 20}, Notes: []float64{5, 1}}
	assert.Equal(t, 5.0, low.Grade(90))
}

func TestAssign(t *testing.T) {
	t.Run("ranks and percentiles", func(t *testing.T) {
		got := Assign([]UserTotal{
			{UserID: "b", TotalPoints: 5},
			{UserID: "a", TotalPoints: 10},
			{UserID: "c", TotalPoints: 3},
			{UserID: "d", TotalPoints: 1},
		}, defaultParams())

		require.Len(t, got, 4)
		wantIDs := []string{"a", "b", "c", "d"}
		wantGrades := []float64{4, 3, 2, 1}
		for i, s := range got {
			assert.Equal(t, wantIDs[i], s.UserID)
			assert.Equal(t, i+1, s.Rank)
			assert.Equal(t, float64(i+1)*100/4, s.Percentile)
			assert.Equal(t, wantGrades[i], s.Grade)
		}
	})

	t.Run("ties keep input order with distinct ranks", func(t *testing.T) {
		got := Assign([]UserTotal{
			{UserID: "first", TotalPoints: 7},
			{UserID: "second", TotalPoints: 7},
		}, defaultParams())
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].UserID)
		assert.Equal(t, 1, got[0].Rank)
		assert.Equal(t, "second", got[1].UserID)
		assert.Equal(t, 2, got[1].Rank)
	})

	t.Run("single user is at 100th percentile", func(t *testing.T) {
		got := Assign([]UserTotal{{UserID: "solo", TotalPoints: 3}}, defaultParams())
		require.Len(t, got, 1)
		assert.Equal(t, 100.0, got[0].Percentile)
		assert.Equal(t, 1.0, got[0].Grade)
	})

	t.Run("first is exactly 100/N, last exactly 100", func(t *testing.T) {
		for n := 1; n <= 200; n++ {
			totals := make([]UserTotal, n)
			for i := range totals {
				totals[i] = UserTotal{UserID: fmt.Sprint(i), TotalPoints: int64(n - i)}
			}
			got := Assign(totals, defaultParams())
			require.Len(t, got, n)
			assert.Equal(t, 100/float64(n), got[0].Percentile, "n=%d", n)
			assert.Equal(t, 100.0, got[n-1].Percentile, "n=%d", n)
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Assign(nil, defaultParams()))
	})

	t.Run("deterministic", func(t *testing.T) {
		in := []UserTotal{{"x", 2}, {"y", 9}, {"z", 2}}
		assert.Equal(t, Assign(in, defaultParams()), Assign(in, defaultParams()))
	})
}
