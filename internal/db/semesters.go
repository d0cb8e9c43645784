package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

const semesterColumns = `id, name, start_date, end_date, is_active, created_at, note_max`

func scanSemester(row rowScanner) (*models.Semester, error) {
	var s models.Semester
	if err := row.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.NoteMax); err != nil {
		return nil, err
	}
	return &s, nil
}

type semesterFields struct {
	name    string
	start   time.Time
	end     time.Time
	noteMax float64
}

func parseSemesterInput(op string, in models.SemesterInput) (semesterFields, error) {
	f := semesterFields{name: strings.TrimSpace(in.Name), noteMax: in.NoteMax}
	if f.name == "" {
		return f, apperr.E(op, apperr.ErrInvalidInput, errors.New("empty name"))
	}
	var err error
	if f.start, err = ParseDate(in.StartDate); err != nil {
		return f, err
	}
	if f.end, err = ParseDate(in.EndDate); err != nil {
		return f, err
	}
	if !f.start.Before(f.end) {
		return f, apperr.E(op, apperr.ErrInvalidDateRange,
			fmt.Errorf("%s >= %s", FormatDate(f.start), FormatDate(f.end)))
	}
	if f.noteMax <= 0 {
		f.noteMax = models.DefaultNoteMax
	}
	return f, nil
}

// CreateSemester — новый (неактивный) семестр. Даты ДД/ММ/ГГГГ, начало строго раньше конца.
func CreateSemester(ctx context.Context, database *sql.DB, in models.SemesterInput) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.CreateSemester"
	f, err := parseSemesterInput(op, in)
	if err != nil {
		return 0, err
	}
	var id int64
	err = database.QueryRowContext(ctx, `
		INSERT INTO semesters (name, start_date, end_date, note_max)
		VALUES ($1, $2::date, $3::date, $4) RETURNING id`,
		f.name, f.start.Format(sqlDate), f.end.Format(sqlDate), f.noteMax,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func UpdateSemester(ctx context.Context, database *sql.DB, id int64, in models.SemesterInput) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.UpdateSemester"
	f, err := parseSemesterInput(op, in)
	if err != nil {
		return err
	}
	res, err := database.ExecContext(ctx, `
		UPDATE semesters SET name = $1, start_date = $2::date, end_date = $3::date, note_max = $4
		WHERE id = $5`,
		f.name, f.start.Format(sqlDate), f.end.Format(sqlDate), f.noteMax, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E(op, apperr.ErrNotFound, fmt.Errorf("semester %d", id))
	}
	return nil
}

func GetSemester(ctx context.Context, database *sql.DB, id int64) (*models.Semester, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return getSemester(ctx, database, id, false)
}

func getSemester(ctx context.Context, q querier, id int64, forUpdate bool) (*models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	s, err := scanSemester(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetSemester", apperr.ErrSemesterNotFound, fmt.Errorf("semester %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetSemester: %w", err)
	}
	return s, nil
}

func ListSemesters(ctx context.Context, database *sql.DB) ([]models.Semester, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("db.ListSemesters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Semester
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// SetActiveSemester делает семестр id единственным активным.
// Все строки semesters блокируются, поэтому параллельные вызовы выполняются по очереди
// и читатели видят либо старое, либо новое состояние.
func SetActiveSemester(ctx context.Context, database *sql.DB, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.SetActiveSemester"
	tx, err := beginTx(ctx, database)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM semesters ORDER BY id FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	found := false
	for rows.Next() {
		var sid int64
		if err := rows.Scan(&sid); err != nil {
			_ = rows.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
		if sid == id {
			found = true
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return apperr.E(op, apperr.ErrSemesterNotFound, fmt.Errorf("semester %d", id))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
		return fmt.Errorf("%s: clear: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_active = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: set: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetActiveSemester — помеченный активным семестр; если такого нет, семестр,
// в диапазон которого (включительно) попадает today. При пересечении диапазонов
// берётся созданный последним.
func GetActiveSemester(ctx context.Context, database *sql.DB, today time.Time) (*models.Semester, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return activeSemester(ctx, database, today)
}

func activeSemester(ctx context.Context, q querier, today time.Time) (*models.Semester, error) {
	s, err := scanSemester(q.QueryRowContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters WHERE is_active LIMIT 1`))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db.GetActiveSemester: %w", err)
	}

	s, err = scanSemester(q.QueryRowContext(ctx, `
		SELECT `+semesterColumns+` FROM semesters
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, today.Format(sqlDate)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetActiveSemester", apperr.ErrSemesterNotFound, errors.New("no active semester"))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetActiveSemester: %w", err)
	}
	return s, nil
}

// DeleteSemester удаляет семестр вместе с его рейтингом. Если на семестр ссылается
// история сессий — ErrSemesterInUse, строка остаётся.
func DeleteSemester(ctx context.Context, database *sql.DB, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.DeleteSemester"
	tx, err := beginTx(ctx, database)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getSemester(ctx, tx, id, true); err != nil {
		return err
	}

	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_history WHERE semester_id = $1`, id).Scan(&refs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if refs > 0 {
		return apperr.E(op, apperr.ErrSemesterInUse, fmt.Errorf("semester %d: %d history entries", id, refs))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM semester_rankings WHERE semester_id = $1`, id); err != nil {
		return fmt.Errorf("%s: rankings: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
