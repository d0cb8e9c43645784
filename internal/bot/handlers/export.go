package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/session-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/export"
	"github.com/Spok95/session-bot/internal/tg"
)

// Export: /export [id] — полный рейтинг семестра в .xlsx.
func (e *Env) Export(ctx context.Context, r Request) {
	if !fsmutil.SetPending(r.ChatID, "export") {
		tg.Text(ctx, e.Bot, r.ChatID, "⏳ Un export est déjà en cours.")
		return
	}
	defer fsmutil.ClearPending(r.ChatID, "export")

	sem, err := e.semesterArg(ctx, r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	n, err := db.CountRankings(ctx, e.DB, sem.ID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if n == 0 {
		tg.Text(ctx, e.Bot, r.ChatID, "Pas de classement pour ce semestre. Lance /recalc d'abord.")
		return
	}
	rows, err := db.GetRankings(ctx, e.DB, sem.ID, n)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	f, err := export.RankingsWorkbook(sem, rows)
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
	doc := tgbotapi.NewDocument(r.ChatID, tgbotapi.FileBytes{Name: export.RankingsFilename(sem), Bytes: data})
	_, _ = tg.Send(ctx, e.Bot, doc)
}
