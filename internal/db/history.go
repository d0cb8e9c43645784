package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/models"
)

// GetUserHistory — подтверждённые сессии участника, новые первыми.
func GetUserHistory(ctx context.Context, database *sql.DB, userID string, limit int) ([]models.HistoryEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.QueryContext(ctx, `
		SELECT h.id, h.user_id, h.session_type_id, t.name, h.activity_date, h.count,
		       h.points_gained, COALESCE(h.validated_by, ''), h.semester_id, h.pending_id, h.created_at
		FROM session_history h
		JOIN session_types t ON t.id = h.session_type_id
		WHERE h.user_id = $1 AND h.validated
		ORDER BY h.created_at DESC, h.id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db.GetUserHistory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			e          models.HistoryEntry
			semesterID sql.NullInt64
			pendingID  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SessionTypeID, &e.SessionName, &e.ActivityDate, &e.Count,
			&e.PointsGained, &e.ValidatedBy, &semesterID, &pendingID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if semesterID.Valid {
			e.SemesterID = &semesterID.Int64
		}
		if pendingID.Valid {
			e.PendingID = &pendingID.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetUserPointsByType — сумма очков участника по типам сессий, по убыванию.
func GetUserPointsByType(ctx context.Context, database *sql.DB, userID string) ([]models.TypePoints, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `
		SELECT t.name, SUM(h.points_gained)
		FROM session_history h
		JOIN session_types t ON t.id = h.session_type_id
		WHERE h.user_id = $1 AND h.validated
		GROUP BY t.name
		ORDER BY SUM(h.points_gained) DESC, t.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("db.GetUserPointsByType: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.TypePoints
	for rows.Next() {
		var tp models.TypePoints
		if err := rows.Scan(&tp.SessionName, &tp.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func GetUserSemesterPoints(ctx context.Context, database *sql.DB, userID string, semesterID int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var total int64
	err := database.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points_gained), 0)
		FROM session_history
		WHERE user_id = $1 AND semester_id = $2 AND validated`, userID, semesterID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db.GetUserSemesterPoints: %w", err)
	}
	return total, nil
}
