package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/logging"
	"github.com/Spok95/session-bot/internal/metrics"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

// maxPendingShown — сколько заявок /pending выводит за раз.
const maxPendingShown = 20

func (e *Env) Pending(ctx context.Context, r Request) {
	list, err := db.GetPending(ctx, e.DB)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	metrics.PendingBacklog.Set(float64(len(list)))
	if len(list) == 0 {
		tg.Text(ctx, e.Bot, r.ChatID, "✅ Aucune demande en attente.")
		return
	}
	if len(list) > maxPendingShown {
		tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("%d demandes en attente, voici les %d plus récentes.", len(list), maxPendingShown))
		list = list[:maxPendingShown]
	}
	for i := range list {
		p := &list[i]
		msg := tgbotapi.NewMessage(r.ChatID, pendingText(p, e.userName(ctx, p.UserID)))
		msg.ReplyMarkup = pendingKeyboard(p.ID)
		_, _ = tg.Send(ctx, e.Bot, msg)
	}
}

// PendingCallback: ok:<id> — валидировать, no:<id> — отклонить.
func (e *Env) PendingCallback(ctx context.Context, r Request, data string) {
	var approve bool
	id, ok := callbackID(data, "ok:")
	if ok {
		approve = true
	} else if id, ok = callbackID(data, "no:"); !ok {
		return
	}

	res, err := db.ResolvePending(ctx, e.DB, id, r.UserID, approve)
	if err != nil {
		fsmutil.DisableMarkup(e.Bot, r.ChatID, r.MessageID)
		e.fail(ctx, r.ChatID, err)
		return
	}
	metrics.Resolutions.WithLabelValues(string(res.Status)).Inc()

	verdict := "❌ Refusée"
	if approve {
		verdict = "✅ Validée"
	}
	e.editText(ctx, r.ChatID, r.MessageID, fmt.Sprintf("Demande #%d : %s par %s (%d pts).",
		res.PendingID, verdict, e.userName(ctx, r.UserID), res.TotalPoints))

	e.notifySubmitter(ctx, res)
}

func (e *Env) notifySubmitter(ctx context.Context, res *models.Resolution) {
	chatID, err := strconv.ParseInt(res.UserID, 10, 64)
	if err != nil {
		return
	}
	tg.Text(ctx, e.Bot, chatID, resolutionText(res))
}

// notifyStaff — новая заявка уходит в общий чат staff или лично каждому staff/admin.
func (e *Env) notifyStaff(ctx context.Context, p *models.PendingSession) {
	text := "📥 Nouvelle demande\n\n" + pendingText(p, e.userName(ctx, p.UserID))
	send := func(chatID int64) {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = pendingKeyboard(p.ID)
		_, _ = tg.Send(ctx, e.Bot, msg)
	}
	if e.StaffChatID != 0 {
		send(e.StaffChatID)
		return
	}

	seen := make(map[string]bool)
	ids := append([]string{}, e.Roles.AdminIDs()...)
	users, err := db.ListUsersByRole(ctx, e.DB, models.RoleStaff)
	if err != nil {
		logging.With(ctx, e.Log).Warn("list reviewers failed", zap.Error(err))
	}
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if chatID, err := strconv.ParseInt(id, 10, 64); err == nil {
			send(chatID)
		}
	}
}

func (e *Env) userName(ctx context.Context, userID string) string {
	u, err := db.GetUser(ctx, e.DB, userID)
	if err != nil {
		return userID
	}
	return u.DisplayName()
}

func pendingKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Valider", fmt.Sprintf("%sok:%d", cbPending, id)),
		tgbotapi.NewInlineKeyboardButtonData("❌ Refuser", fmt.Sprintf("%sno:%d", cbPending, id)),
	))
}

func pendingText(p *models.PendingSession, who string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Demande #%d de %s\nDate : %s\n", p.ID, who, db.FormatDate(p.ActivityDate))
	for _, d := range p.Details {
		fmt.Fprintf(&sb, "• %s × %d = %d pts\n", d.SessionName, d.Count, d.Points)
	}
	fmt.Fprintf(&sb, "Total : %d pts", p.TotalPoints())
	return sb.String()
}

func resolutionText(res *models.Resolution) string {
	if res.Status != models.StatusApproved {
		return fmt.Sprintf("❌ Ta demande #%d a été refusée.", res.PendingID)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Ta demande #%d a été validée : +%d pts.\n", res.PendingID, res.TotalPoints)
	for _, d := range res.Lines {
		fmt.Fprintf(&sb, "• %s × %d = %d pts\n", d.SessionName, d.Count, d.Points)
	}
	return strings.TrimRight(sb.String(), "\n")
}
