package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/export"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

const (
	topShown     = 10
	historyShown = 15
)

// semesterArg — семестр по id из аргумента или активный.
func (e *Env) semesterArg(ctx context.Context, arg string) (*models.Semester, error) {
	if strings.TrimSpace(arg) == "" {
		return e.Board.Active(ctx)
	}
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return db.GetSemester(ctx, e.DB, id)
}

func (e *Env) Ranking(ctx context.Context, r Request) {
	sem, err := e.semesterArg(ctx, r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	// показ рейтинга всегда пересчитывает его: одобрения с прошлого пересчёта уже учтены
	rows, err := e.Board.View(ctx, sem.ID, topShown)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, rankingText(sem, rows))
}

func rankingText(sem *models.Semester, rows []models.RankingRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Classement — %s (%s → %s)\n\n", sem.Name, db.FormatDate(sem.StartDate), db.FormatDate(sem.EndDate))
	if len(rows) == 0 {
		sb.WriteString("Pas encore de classement pour ce semestre.")
		return sb.String()
	}
	for i := range rows {
		row := &rows[i]
		fmt.Fprintf(&sb, "%s %s — %d pts (note %.1f)\n", medal(row.Rank), row.DisplayName(), row.TotalPoints, row.FinalNote)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// Me — общий счёт, очки за активный семестр, место и разбивка по типам.
func (e *Env) Me(ctx context.Context, r Request) {
	u, err := db.GetUser(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\nTotal : %d pts\n", u.DisplayName(), u.ScoreTotal)

	sem, err := e.Board.Active(ctx)
	switch {
	case err == nil:
		pts, err := db.GetUserSemesterPoints(ctx, e.DB, r.UserID, sem.ID)
		if err != nil {
			e.fail(ctx, r.ChatID, err)
			return
		}
		fmt.Fprintf(&sb, "\n%s : %d pts\n", sem.Name, pts)
		if _, err := e.Board.Recompute(ctx, sem.ID); err != nil {
			e.fail(ctx, r.ChatID, err)
			return
		}
		st, err := e.Board.Standing(ctx, r.UserID, sem.ID)
		switch {
		case err == nil:
			fmt.Fprintf(&sb, "Rang : %d (percentile %.1f) — note %.1f\n", st.Rank, st.Percentile, st.FinalNote)
		case errors.Is(err, apperr.ErrNotFound):
			sb.WriteString("Pas encore classé.\n")
		default:
			e.fail(ctx, r.ChatID, err)
			return
		}
	case errors.Is(err, apperr.ErrNotFound):
		sb.WriteString("\nAucun semestre en cours.\n")
	default:
		e.fail(ctx, r.ChatID, err)
		return
	}

	byType, err := db.GetUserPointsByType(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if len(byType) > 0 {
		sb.WriteString("\nPar type :\n")
		for _, t := range byType {
			fmt.Fprintf(&sb, "• %s : %d pts\n", t.SessionName, t.TotalPoints)
		}
	}
	tg.Text(ctx, e.Bot, r.ChatID, strings.TrimRight(sb.String(), "\n"))
}

// History: /history — последние сессии, /history xlsx — всё файлом.
func (e *Env) History(ctx context.Context, r Request) {
	asFile := strings.EqualFold(strings.TrimSpace(r.Args), "xlsx")
	limit := historyShown
	if asFile {
		limit = 10000
	}
	entries, err := db.GetUserHistory(ctx, e.DB, r.UserID, limit)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if len(entries) == 0 {
		tg.Text(ctx, e.Bot, r.ChatID, "Aucune session validée pour l'instant.")
		return
	}
	if !asFile {
		tg.Text(ctx, e.Bot, r.ChatID, historyText(entries))
		return
	}

	u, err := db.GetUser(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	f, err := export.HistoryWorkbook(entries)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	defer func() { _ = f.Close() }()
	data, err := export.Bytes(f)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	doc := tgbotapi.NewDocument(r.ChatID, tgbotapi.FileBytes{Name: export.HistoryFilename(u), Bytes: data})
	_, _ = tg.Send(ctx, e.Bot, doc)
}

func historyText(entries []models.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString("🗂 Dernières sessions validées\n\n")
	for _, h := range entries {
		fmt.Fprintf(&sb, "%s — %s × %d : +%d pts\n", db.FormatDate(h.ActivityDate), h.SessionName, h.Count, h.PointsGained)
	}
	return strings.TrimRight(sb.String(), "\n")
}
