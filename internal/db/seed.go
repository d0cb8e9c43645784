package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

// SeedDefaultSemester создаёт активный семестр на текущий календарный год,
// если семестров ещё нет. Типы сессий и настройки по умолчанию заводятся миграцией.
func SeedDefaultSemester(ctx context.Context, database *sql.DB, now time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	start, end := CalendarYearBounds(now)
	res, err := database.ExecContext(ctx, `
		INSERT INTO semesters (name, start_date, end_date, is_active, note_max)
		SELECT $1, $2::date, $3::date, TRUE, $4
		WHERE NOT EXISTS (SELECT 1 FROM semesters)`,
		DefaultSemesterName(now.Year()), start.Format(sqlDate), end.Format(sqlDate), models.DefaultNoteMax)
	if err != nil {
		return false, fmt.Errorf("db.SeedDefaultSemester: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
