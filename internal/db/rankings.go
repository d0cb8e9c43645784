package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/ranking"
)

// CalculateRankings пересчитывает рейтинг семестра с нуля и заменяет сохранённый
// целиком. Строка семестра блокируется на время пересчёта, поэтому параллельные
// пересчёты одного семестра идут друг за другом. Возвращает число участников в рейтинге.
func CalculateRankings(ctx context.Context, database *sql.DB, semesterID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.CalculateRankings"

	tx, err := beginTx(ctx, database)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	sem, err := getSemester(ctx, tx, semesterID, true)
	if err != nil {
		return 0, err
	}

	settings, err := settingsMap(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	params, err := ranking.LoadParams(settings, sem.NoteMax)
	if err != nil {
		return 0, err
	}

	// равные суммы упорядочены по первой подтверждённой сессии
	rows, err := tx.QueryContext(ctx, `
		SELECT user_id, SUM(points_gained) AS total
		FROM session_history
		WHERE semester_id = $1 AND validated
		GROUP BY user_id
		HAVING SUM(points_gained) > 0
		ORDER BY total DESC, MIN(id) ASC`, semesterID)
	if err != nil {
		return 0, fmt.Errorf("%s: aggregate: %w", op, err)
	}
	var totals []ranking.UserTotal
	for rows.Next() {
		var t ranking.UserTotal
		if err := rows.Scan(&t.UserID, &t.TotalPoints); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		totals = append(totals, t)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	standings := ranking.Assign(totals, params)

	if _, err := tx.ExecContext(ctx, `DELETE FROM semester_rankings WHERE semester_id = $1`, semesterID); err != nil {
		return 0, fmt.Errorf("%s: clear: %w", op, err)
	}

	if len(standings) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO semester_rankings (semester_id, user_id, total_points, rank, percentile, final_note)
			VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return 0, fmt.Errorf("%s: prepare: %w", op, err)
		}
		defer func() { _ = stmt.Close() }()

		for _, s := range standings {
			if _, err := stmt.ExecContext(ctx, semesterID, s.UserID, s.TotalPoints, s.Rank, s.Percentile, s.Grade); err != nil {
				return 0, fmt.Errorf("%s: insert %s: %w", op, s.UserID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}
	return len(standings), nil
}

const rankingColumns = `r.semester_id, r.user_id, r.total_points, r.rank, r.percentile, r.final_note,
	u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, '')`

func scanRanking(row rowScanner) (*models.RankingRow, error) {
	var r models.RankingRow
	if err := row.Scan(&r.SemesterID, &r.UserID, &r.TotalPoints, &r.Rank, &r.Percentile, &r.FinalNote,
		&r.Username, &r.FirstName, &r.LastName); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRankings — сохранённый рейтинг семестра по возрастанию ранга. limit <= 0 — 100.
func GetRankings(ctx context.Context, database *sql.DB, semesterID int64, limit int) ([]models.RankingRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.QueryContext(ctx, `
		SELECT `+rankingColumns+`
		FROM semester_rankings r
		JOIN users u ON u.id = r.user_id
		WHERE r.semester_id = $1
		ORDER BY r.rank
		LIMIT $2`, semesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("db.GetRankings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RankingRow
	for rows.Next() {
		r, err := scanRanking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetUserRanking — место участника; ErrNotFound, если он не попал в рейтинг.
func GetUserRanking(ctx context.Context, database *sql.DB, userID string, semesterID int64) (*models.RankingRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	r, err := scanRanking(database.QueryRowContext(ctx, `
		SELECT `+rankingColumns+`
		FROM semester_rankings r
		JOIN users u ON u.id = r.user_id
		WHERE r.semester_id = $1 AND r.user_id = $2`, semesterID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetUserRanking", apperr.ErrNotFound,
			fmt.Errorf("user %s not ranked in semester %d", userID, semesterID))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetUserRanking: %w", err)
	}
	return r, nil
}

func CountRankings(ctx context.Context, database *sql.DB, semesterID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var n int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM semester_rankings WHERE semester_id = $1`, semesterID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db.CountRankings: %w", err)
	}
	return n, nil
}
