package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/bot/draft"
	"github.com/Spok95/session-bot/internal/bot/handlers"
	"github.com/Spok95/session-bot/internal/bot/menu"
	"github.com/Spok95/session-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/session-bot/internal/ctxutil"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/logging"
	"github.com/Spok95/session-bot/internal/metrics"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/observability"
	"github.com/Spok95/session-bot/internal/tg"
)

const denied = "⛔ Accès réservé."

// Dispatcher — точка входа апдейтов: контекст запроса, учёт активности,
// проверка прав и маршрут к обработчику.
type Dispatcher struct {
	Env     *handlers.Env
	Limiter *ChatLimiter
	Log     *zap.Logger
}

func NewDispatcher(env *handlers.Env, log *zap.Logger) *Dispatcher {
	return &Dispatcher{Env: env, Limiter: NewChatLimiter(), Log: log}
}

func (d *Dispatcher) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	metrics.BotUpdates.Inc()
	switch {
	case upd.CallbackQuery != nil:
		d.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		d.handleMessage(ctx, upd.Message)
	}
}

func (d *Dispatcher) requestCtx(ctx context.Context, chatID int64, from *tgbotapi.User) context.Context {
	ctx = ctxutil.WithRequestID(ctx)
	ctx = ctxutil.WithChatID(ctx, chatID)
	if from != nil {
		ctx = ctxutil.WithUserID(ctx, strconv.FormatInt(from.ID, 10))
	}
	return ctx
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	ctx = d.requestCtx(ctx, msg.Chat.ID, msg.From)
	unlock := d.Limiter.lock(msg.Chat.ID)
	defer unlock()
	defer d.recover(ctx, msg.Chat.ID)

	r := handlers.Request{
		ChatID:    msg.Chat.ID,
		UserID:    strconv.FormatInt(msg.From.ID, 10),
		Username:  username(msg.From),
		MessageID: msg.MessageID,
	}
	if _, err := db.EnsureUser(ctx, d.Env.DB, r.UserID, r.Username, time.Now()); err != nil {
		d.internal(ctx, r.ChatID, err)
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		d.Env.Drafts.Drop(draft.Key{ChatID: r.ChatID, UserID: r.UserID})
		tg.Text(ctx, d.Env.Bot, r.ChatID, "❌ Annulé.")
		return
	}

	cmd, args := handlers.SplitCommand(menu.CommandFor(msg.Text))
	r.Args = args

	c, ok := handlers.Lookup(cmd)
	if !ok {
		tg.Text(ctx, d.Env.Bot, r.ChatID, "Commande inconnue. /start pour l'aide.")
		return
	}
	if !d.allowed(ctx, r, c.Role) {
		return
	}
	ctx = ctxutil.WithOp(ctx, cmd)
	c.Run(d.Env, ctx, r)
}

func (d *Dispatcher) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	ctx = d.requestCtx(ctx, chatID, cq.From)
	// Кнопку подтверждаем всегда, иначе у клиента крутится "часики".
	defer func() { _, _ = tg.Request(ctx, d.Env.Bot, tgbotapi.NewCallback(cq.ID, "")) }()

	unlock := d.Limiter.lock(chatID)
	defer unlock()
	defer d.recover(ctx, chatID)

	r := handlers.Request{
		ChatID:    chatID,
		UserID:    strconv.FormatInt(cq.From.ID, 10),
		Username:  username(cq.From),
		MessageID: cq.Message.MessageID,
	}
	if _, err := db.EnsureUser(ctx, d.Env.DB, r.UserID, r.Username, time.Now()); err != nil {
		d.internal(ctx, chatID, err)
		return
	}

	role, ok := handlers.CallbackRole(cq.Data)
	if !ok {
		return
	}
	if !d.allowed(ctx, r, role) {
		return
	}
	ctx = ctxutil.WithOp(ctx, "callback")
	d.Env.HandleCallback(ctx, r, cq.Data)
}

func (d *Dispatcher) allowed(ctx context.Context, r handlers.Request, role models.Role) bool {
	if role == models.RoleUser {
		return true
	}
	ok, err := d.Env.Roles.HasRole(ctx, r.UserID, role)
	if err != nil {
		d.internal(ctx, r.ChatID, err)
		return false
	}
	if !ok {
		tg.Text(ctx, d.Env.Bot, r.ChatID, denied)
	}
	return ok
}

func (d *Dispatcher) internal(ctx context.Context, chatID int64, err error) {
	metrics.HandlerErrors.Inc()
	logging.With(ctx, d.Log).Error("update failed", zap.Error(err))
	observability.CaptureErrCtx(ctx, err)
	tg.Text(ctx, d.Env.Bot, chatID, "❌ Erreur interne, réessaie plus tard.")
}

func (d *Dispatcher) recover(ctx context.Context, chatID int64) {
	if rec := recover(); rec != nil {
		d.internal(ctx, chatID, fmt.Errorf("panic: %v", rec))
	}
}

func username(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return strconv.FormatInt(u.ID, 10)
}
