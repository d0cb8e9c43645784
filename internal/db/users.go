package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

const userColumns = `id, username, COALESCE(last_name, ''), COALESCE(first_name, ''),
	COALESCE(class, ''), COALESCE(email, ''), score_total, role, joined_at, last_active_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.LastName, &u.FirstName, &u.Class, &u.Email,
		&u.ScoreTotal, &role, &u.JoinedAt, &u.LastActiveAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// EnsureUser создаёт участника при первой активности, иначе обновляет ник и last_active_at.
func EnsureUser(ctx context.Context, database *sql.DB, id, username string, now time.Time) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	row := database.QueryRowContext(ctx, `
		INSERT INTO users (id, username, joined_at, last_active_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, last_active_at = EXCLUDED.last_active_at
		RETURNING `+userColumns, id, username, now)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("db.EnsureUser: %w", err)
	}
	return u, nil
}

func GetUser(ctx context.Context, database *sql.DB, id string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return getUser(ctx, database, id)
}

func getUser(ctx context.Context, q querier, id string) (*models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetUser", apperr.ErrNotFound, fmt.Errorf("user %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetUser: %w", err)
	}
	return u, nil
}

// UpdateProfile записывает уже проверенный и отформатированный профиль (см. пакет profile).
func UpdateProfile(ctx context.Context, database *sql.DB, id string, p models.Profile) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := database.ExecContext(ctx, `
		UPDATE users SET last_name = $1, first_name = $2, class = $3, email = $4
		WHERE id = $5`, p.LastName, p.FirstName, p.Class, p.Email, id)
	if err != nil {
		return fmt.Errorf("db.UpdateProfile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E("db.UpdateProfile", apperr.ErrNotFound, fmt.Errorf("user %s", id))
	}
	return nil
}

func UpdateRole(ctx context.Context, database *sql.DB, id string, role models.Role) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.UpdateRole"
	if !role.Valid() {
		return apperr.E(op, apperr.ErrInvalidRole, fmt.Errorf("%q", role))
	}
	res, err := database.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E(op, apperr.ErrNotFound, fmt.Errorf("user %s", id))
	}
	return nil
}

// ListUsersByRole — участники с ролью не ниже role (для рассылки заявок стаффу).
func ListUsersByRole(ctx context.Context, database *sql.DB, role models.Role) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	roles := []string{string(models.RoleAdmin)}
	if role == models.RoleStaff || role == models.RoleUser {
		roles = append(roles, string(models.RoleStaff))
	}
	if role == models.RoleUser {
		roles = append(roles, string(models.RoleUser))
	}
	rows, err := database.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ANY($1) ORDER BY joined_at`, pqStrings(roles))
	if err != nil {
		return nil, fmt.Errorf("db.ListUsersByRole: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
