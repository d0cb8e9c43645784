package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

func validateSessionType(op, name string, points int) error {
	if strings.TrimSpace(name) == "" {
		return apperr.E(op, apperr.ErrInvalidInput, errors.New("empty name"))
	}
	if points <= 0 {
		return apperr.E(op, apperr.ErrInvalidPointValue, fmt.Errorf("points=%d", points))
	}
	return nil
}

// CreateSessionType — новый тип сессии. Имя уникально, очки > 0.
func CreateSessionType(ctx context.Context, database *sql.DB, name, description string, points int) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.CreateSessionType"
	if err := validateSessionType(op, name, points); err != nil {
		return 0, err
	}
	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO session_types (name, description, points, is_active)
		VALUES ($1, $2, $3, TRUE) RETURNING id`,
		strings.TrimSpace(name), strings.TrimSpace(description), points,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, apperr.E(op, apperr.ErrDuplicateName, fmt.Errorf("%q", name))
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateSessionType меняет имя/описание/стоимость. Уже начисленные очки в истории не пересчитываются.
func UpdateSessionType(ctx context.Context, database *sql.DB, id int64, name, description string, points int) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.UpdateSessionType"
	if err := validateSessionType(op, name, points); err != nil {
		return err
	}
	res, err := database.ExecContext(ctx, `
		UPDATE session_types SET name = $1, description = $2, points = $3 WHERE id = $4`,
		strings.TrimSpace(name), strings.TrimSpace(description), points, id)
	if isUniqueViolation(err) {
		return apperr.E(op, apperr.ErrDuplicateName, fmt.Errorf("%q", name))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E(op, apperr.ErrNotFound, fmt.Errorf("session type %d", id))
	}
	return nil
}

// SetSessionTypeActive включить/выключить тип.
func SetSessionTypeActive(ctx context.Context, database *sql.DB, id int64, active bool) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := database.ExecContext(ctx, `UPDATE session_types SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("db.SetSessionTypeActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E("db.SetSessionTypeActive", apperr.ErrNotFound, fmt.Errorf("session type %d", id))
	}
	return nil
}

func scanSessionType(row rowScanner) (*models.SessionType, error) {
	var t models.SessionType
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Points, &t.IsActive); err != nil {
		return nil, err
	}
	return &t, nil
}

func GetSessionType(ctx context.Context, database *sql.DB, id int64) (*models.SessionType, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	t, err := scanSessionType(database.QueryRowContext(ctx,
		`SELECT id, name, description, points, is_active FROM session_types WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetSessionType", apperr.ErrNotFound, fmt.Errorf("session type %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetSessionType: %w", err)
	}
	return t, nil
}

// ListSessionTypes список (includeInactive=true — вернём и скрытые)
func ListSessionTypes(ctx context.Context, database *sql.DB, includeInactive bool) ([]models.SessionType, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	query := "SELECT id, name, description, points, is_active FROM session_types"
	if !includeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY id"

	rows, err := database.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db.ListSessionTypes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.SessionType
	for rows.Next() {
		t, err := scanSessionType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteSessionType удаляет тип физически, если на него нет ссылок (история, заявки),
// иначе только скрывает (is_active = FALSE), чтобы история сохранила атрибуцию очков.
func DeleteSessionType(ctx context.Context, database *sql.DB, id int64) (hard bool, err error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.DeleteSessionType"
	tx, err := beginTx(ctx, database)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM session_types WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.E(op, apperr.ErrNotFound, fmt.Errorf("session type %d", id))
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var referenced bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM session_history WHERE session_type_id = $1)
		    OR EXISTS (SELECT 1 FROM pending_session_details WHERE session_type_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if referenced {
		_, err = tx.ExecContext(ctx, `UPDATE session_types SET is_active = FALSE WHERE id = $1`, id)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM session_types WHERE id = $1`, id)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return !referenced, nil
}
