package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

func ListSettings(ctx context.Context, database *sql.DB) ([]models.Setting, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `SELECT key, value, description FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("db.ListSettings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSettings — все параметры как key → value.
func GetSettings(ctx context.Context, database *sql.DB) (map[string]string, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return settingsMap(ctx, database)
}

func settingsMap(ctx context.Context, q querier) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM system_settings`)
	if err != nil {
		return nil, fmt.Errorf("db.GetSettings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func GetSetting(ctx context.Context, database *sql.DB, key string) (*models.Setting, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var s models.Setting
	err := database.QueryRowContext(ctx,
		`SELECT key, value, description FROM system_settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetSetting", apperr.ErrNotFound, fmt.Errorf("setting %s", key))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetSetting: %w", err)
	}
	return &s, nil
}

// UpdateSetting — upsert. Если description не передан (nil или пусто), у существующей
// записи описание сохраняется. Форму значения не проверяет: это делает вызывающий
// (ranking.ValidateSetting).
func UpdateSetting(ctx context.Context, database *sql.DB, key, value string, description *string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := database.ExecContext(ctx, `
		INSERT INTO system_settings (key, value, description)
		VALUES ($1, $2, COALESCE($3::text, ''))
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    description = CASE
		        WHEN $3::text IS NULL OR $3::text = '' THEN system_settings.description
		        ELSE EXCLUDED.description
		    END`, key, value, description)
	if err != nil {
		return fmt.Errorf("db.UpdateSetting %s: %w", key, err)
	}
	return nil
}
