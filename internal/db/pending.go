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

// SubmitPending сохраняет заявку со статусом pending и её строки одной транзакцией.
// Возвращает id заявки.
func SubmitPending(ctx context.Context, database *sql.DB, userID, activityDate string, lines []models.SessionLine) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.SubmitPending"

	u, err := getUser(ctx, database, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, apperr.E(op, apperr.ErrIncompleteProfile, err)
	}
	if err != nil {
		return 0, err
	}
	if !u.ProfileComplete() {
		return 0, apperr.E(op, apperr.ErrIncompleteProfile, fmt.Errorf("user %s", userID))
	}

	lines = models.PositiveLines(lines)
	if len(lines) == 0 {
		return 0, apperr.E(op, apperr.ErrEmptySubmission, nil)
	}

	day, err := ParseDate(activityDate)
	if err != nil {
		return 0, err
	}

	tx, err := beginTx(ctx, database)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	// типы проверяются под FOR SHARE, чтобы их не выключили посреди записи
	for _, l := range lines {
		var active bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_active FROM session_types WHERE id = $1 FOR SHARE`, l.SessionTypeID).Scan(&active)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
			return 0, apperr.E(op, apperr.ErrNotFound, fmt.Errorf("session type %d", l.SessionTypeID))
		}
		if err != nil {
			return 0, fmt.Errorf("%s: type %d: %w", op, l.SessionTypeID, err)
		}
	}

	var pendingID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO pending_sessions (user_id, activity_date, submitted_at, status)
		VALUES ($1, $2::date, now(), 'pending') RETURNING id`,
		userID, day.Format(sqlDate)).Scan(&pendingID); err != nil {
		return 0, fmt.Errorf("%s: insert pending: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pending_session_details (pending_id, session_type_id, count)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, pendingID, l.SessionTypeID, l.Count); err != nil {
			return 0, fmt.Errorf("%s: insert detail: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}
	return pendingID, nil
}

// ResolvePending одобряет или отклоняет заявку. Условный UPDATE по status='pending'
// гарантирует, что из параллельных вызовов выиграет ровно один; остальные получат
// ErrNotFound. При одобрении очки считаются по текущей стоимости типов и
// фиксируются в истории.
func ResolvePending(ctx context.Context, database *sql.DB, pendingID int64, resolverID string, approve bool) (*models.Resolution, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	const op = "db.ResolvePending"

	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}

	tx, err := beginTx(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res := &models.Resolution{PendingID: pendingID, Status: status}
	var activityDate time.Time
	err = tx.QueryRowContext(ctx, `
		UPDATE pending_sessions
		SET status = $2, resolved_by = $3, resolved_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING user_id, activity_date`,
		pendingID, string(status), resolverID).Scan(&res.UserID, &activityDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(op, apperr.ErrNotFound, fmt.Errorf("pending %d not found or already handled", pendingID))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: claim: %w", op, err)
	}

	details, err := pendingDetails(ctx, tx, []int64{pendingID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res.Lines = details[pendingID]
	for _, d := range res.Lines {
		res.TotalPoints += d.Points
	}

	if approve {
		sem, err := activeSemester(ctx, tx, time.Now())
		switch {
		case err == nil:
			res.SemesterID = &sem.ID
		case errors.Is(err, apperr.ErrNotFound):
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		for _, d := range res.Lines {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_history
				    (user_id, session_type_id, activity_date, count, points_gained,
				     validated, validated_by, semester_id, pending_id)
				VALUES ($1, $2, $3::date, $4, $5, TRUE, $6, $7, $8)`,
				res.UserID, d.SessionTypeID, activityDate.Format(sqlDate), d.Count, d.Points,
				resolverID, res.SemesterID, pendingID); err != nil {
				return nil, fmt.Errorf("%s: history: %w", op, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET score_total = score_total + $1 WHERE id = $2`,
			res.TotalPoints, res.UserID); err != nil {
			return nil, fmt.Errorf("%s: score: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return res, nil
}

const pendingColumns = `id, user_id, activity_date, submitted_at, status, resolved_by, resolved_at`

func scanPending(row rowScanner) (*models.PendingSession, error) {
	var (
		p          models.PendingSession
		status     string
		resolvedBy sql.NullString
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.ActivityDate, &p.SubmittedAt, &status, &resolvedBy, &resolvedAt); err != nil {
		return nil, err
	}
	p.Status = models.PendingStatus(status)
	if resolvedBy.Valid {
		p.ResolvedBy = &resolvedBy.String
	}
	if resolvedAt.Valid {
		p.ResolvedAt = &resolvedAt.Time
	}
	return &p, nil
}

// pendingDetails — строки заявок с именем типа и очками по текущей стоимости,
// в порядке подачи.
func pendingDetails(ctx context.Context, q querier, ids []int64) (map[int64][]models.PendingDetail, error) {
	out := make(map[int64][]models.PendingDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT d.id, d.pending_id, d.session_type_id, t.name, d.count, t.points * d.count
		FROM pending_session_details d
		JOIN session_types t ON t.id = d.session_type_id
		WHERE d.pending_id = ANY($1)
		ORDER BY d.pending_id, d.id`, pqInt64s(ids))
	if err != nil {
		return nil, fmt.Errorf("pending details: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var d models.PendingDetail
		if err := rows.Scan(&d.ID, &d.PendingID, &d.SessionTypeID, &d.SessionName, &d.Count, &d.Points); err != nil {
			return nil, err
		}
		out[d.PendingID] = append(out[d.PendingID], d)
	}
	return out, rows.Err()
}

// GetPending — все нерассмотренные заявки, новые первыми.
func GetPending(ctx context.Context, database *sql.DB) ([]models.PendingSession, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `
		SELECT `+pendingColumns+` FROM pending_sessions
		WHERE status = 'pending'
		ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("db.GetPending: %w", err)
	}
	var (
		out []models.PendingSession
		ids []int64
	)
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	details, err := pendingDetails(ctx, database, ids)
	if err != nil {
		return nil, fmt.Errorf("db.GetPending: %w", err)
	}
	for i := range out {
		out[i].Details = details[out[i].ID]
	}
	return out, nil
}

func GetPendingByID(ctx context.Context, database *sql.DB, id int64) (*models.PendingSession, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	p, err := scanPending(database.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E("db.GetPendingByID", apperr.ErrNotFound, fmt.Errorf("pending %d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetPendingByID: %w", err)
	}
	details, err := pendingDetails(ctx, database, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("db.GetPendingByID: %w", err)
	}
	p.Details = details[id]
	return p, nil
}

// CountPending — размер очереди, для метрики.
func CountPending(ctx context.Context, database *sql.DB) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var n int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_sessions WHERE status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db.CountPending: %w", err)
	}
	return n, nil
}
