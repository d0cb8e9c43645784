package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/bot/draft"
	"github.com/Spok95/session-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/logging"
	"github.com/Spok95/session-bot/internal/metrics"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

// Session: /session [JJ/MM/AAAA] открывает черновик заявки с кнопками +/-.
func (e *Env) Session(ctx context.Context, r Request) {
	u, err := db.GetUser(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if !u.ProfileComplete() {
		tg.Text(ctx, e.Bot, r.ChatID, errText(apperr.ErrIncompleteProfile))
		return
	}

	date := db.FormatDate(e.now())
	if r.Args != "" {
		d, err := db.ParseDate(r.Args)
		if err != nil {
			e.fail(ctx, r.ChatID, err)
			return
		}
		date = db.FormatDate(d)
	}

	types, err := db.ListSessionTypes(ctx, e.DB, false)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if len(types) == 0 {
		tg.Text(ctx, e.Bot, r.ChatID, "Aucun type de session actif pour le moment.")
		return
	}

	now := e.now()
	key := draft.Key{ChatID: r.ChatID, UserID: r.UserID}
	e.Drafts.Start(key, date, now)
	b := draft.NewBuilder(date, now)
	msg := tgbotapi.NewMessage(r.ChatID, draftText(b, types))
	msg.ReplyMarkup = draftKeyboard(r.UserID, b, types)
	sent, err := tg.Send(ctx, e.Bot, msg)
	if err != nil {
		e.Drafts.Drop(key)
		return
	}
	e.Drafts.SetMessage(key, sent.MessageID)
}

// DraftCallback: <owner>:inc:<id>, <owner>:dec:<id>, <owner>:send, <owner>:cancel, <owner>:noop.
// Нажатия не владельца черновика (в групповом чате) игнорируются.
func (e *Env) DraftCallback(ctx context.Context, r Request, data string) {
	owner, action, ok := strings.Cut(data, ":")
	if !ok || owner != r.UserID {
		return
	}
	key := draft.Key{ChatID: r.ChatID, UserID: r.UserID}
	now := e.now()
	switch action {
	case "noop":
		return
	case "cancel":
		if _, ok := e.Drafts.Take(key, r.MessageID, now); ok {
			e.editText(ctx, r.ChatID, r.MessageID, "❌ Déclaration annulée.")
		}
		return
	case "send":
		e.submitDraft(ctx, r, key)
		return
	}

	op, rawID, ok := strings.Cut(action, ":")
	typeID, err := strconv.ParseInt(rawID, 10, 64)
	if !ok || err != nil || (op != "inc" && op != "dec") {
		return
	}

	types, err := db.ListSessionTypes(ctx, e.DB, false)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}

	var edit tgbotapi.EditMessageTextConfig
	alive := e.Drafts.With(key, r.MessageID, now, func(b *draft.Builder) {
		if op == "inc" {
			b.Inc(typeID, now)
		} else {
			b.Dec(typeID, now)
		}
		edit = tgbotapi.NewEditMessageTextAndMarkup(r.ChatID, r.MessageID, draftText(b, types), draftKeyboard(r.UserID, b, types))
	})
	if !alive {
		e.editText(ctx, r.ChatID, r.MessageID, "⌛ Brouillon expiré, relance /session.")
		return
	}
	_, _ = tg.Send(ctx, e.Bot, edit)
}

func (e *Env) submitDraft(ctx context.Context, r Request, key draft.Key) {
	b, ok := e.Drafts.Take(key, r.MessageID, e.now())
	if !ok {
		e.editText(ctx, r.ChatID, r.MessageID, "⌛ Brouillon expiré, relance /session.")
		return
	}
	id, err := db.SubmitPending(ctx, e.DB, r.UserID, b.ActivityDate, b.Lines())
	if err != nil {
		fsmutil.DisableMarkup(e.Bot, r.ChatID, r.MessageID)
		e.fail(ctx, r.ChatID, err)
		return
	}
	metrics.Submissions.Inc()
	e.editText(ctx, r.ChatID, r.MessageID, fmt.Sprintf("✅ Demande #%d envoyée pour le %s. Le staff va la valider.", id, b.ActivityDate))

	p, err := db.GetPendingByID(ctx, e.DB, id)
	if err != nil {
		logging.With(ctx, e.Log).Warn("pending reload failed", zap.Int64("pending_id", id), zap.Error(err))
		return
	}
	e.notifyStaff(ctx, p)
}

func (e *Env) editText(ctx context.Context, chatID int64, messageID int, text string) {
	if messageID == 0 {
		tg.Text(ctx, e.Bot, chatID, text)
		return
	}
	_, _ = tg.Send(ctx, e.Bot, tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func draftText(b *draft.Builder, types []models.SessionType) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎮 Sessions du %s\n\n", b.ActivityDate)
	total := 0
	for _, t := range types {
		if c := b.Count(t.ID); c > 0 {
			fmt.Fprintf(&sb, "• %s × %d = %d pts\n", t.Name, c, c*t.Points)
			total += c * t.Points
		}
	}
	if total == 0 {
		sb.WriteString("Utilise ➕ / ➖ pour ajouter des sessions.\n")
	} else {
		fmt.Fprintf(&sb, "\nTotal : %d pts", total)
	}
	return sb.String()
}

// draftKeyboard — в callback-данных id владельца, чтобы чужие нажатия отсекались.
func draftKeyboard(owner string, b *draft.Builder, types []models.SessionType) tgbotapi.InlineKeyboardMarkup {
	prefix := cbDraft + owner + ":"
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(types)+1)
	for _, t := range types {
		label := fmt.Sprintf("%s (%d) × %d", t.Name, t.Points, b.Count(t.ID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", fmt.Sprintf("%sdec:%d", prefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData(label, prefix+"noop"),
			tgbotapi.NewInlineKeyboardButtonData("➕", fmt.Sprintf("%sinc:%d", prefix, t.ID)),
		))
	}
	rows = append(rows, fsmutil.SubmitCancelRow(prefix+"send", prefix+"cancel"))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
