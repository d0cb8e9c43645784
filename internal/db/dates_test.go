package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/session-bot/internal/apperr"
)

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := ParseDate(" 05/09/2025 ")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC), d)
		assert.Equal(t, "05/09/2025", FormatDate(d))
	})

	for _, in := range []string{"2025-09-05", "5/9/2025", "31/02/2025", "", "05.09.2025"} {
		t.Run("invalid_"+in, func(t *testing.T) {
			_, err := ParseDate(in)
			assert.ErrorIs(t, err, apperr.ErrInvalidDateFormat)
		})
	}
}

func TestCalendarYearBounds(t *testing.T) {
	from, to := CalendarYearBounds(time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, "Année 2026", DefaultSemesterName(2026))
}
