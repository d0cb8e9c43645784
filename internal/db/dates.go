package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/session-bot/internal/apperr"
)

// DateLayout — внешний формат дат (ввод пользователя и сообщения): ДД/ММ/ГГГГ.
const DateLayout = "02/01/2006"

// sqlDate — как даты передаются в запросы (`$n::date`).
const sqlDate = "2006-01-02"

// ParseDate разбирает дату строго по DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.E("db.ParseDate", apperr.ErrInvalidDateFormat, fmt.Errorf("%q: %w", s, err))
	}
	return t, nil
}

// FormatDate — обратное к ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CalendarYearBounds — первый и последний день календарного года момента t.
// Семестр по умолчанию покрывает весь год.
func CalendarYearBounds(t time.Time) (time.Time, time.Time) {
	y := t.Year()
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// DefaultSemesterName форматирует подпись семестра по умолчанию: "Année 2025".
func DefaultSemesterName(year int) string {
	return fmt.Sprintf("Année %d", year)
}
