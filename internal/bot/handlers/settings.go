package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/ranking"
	"github.com/Spok95/session-bot/internal/tg"
)

func (e *Env) Settings(ctx context.Context, r Request) {
	list, err := db.ListSettings(ctx, e.DB)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, settingsText(list))
}

func settingsText(list []models.Setting) string {
	if len(list) == 0 {
		return "Aucun paramètre."
	}
	var sb strings.Builder
	sb.WriteString("⚙️ Paramètres\n\n")
	for _, s := range list {
		fmt.Fprintf(&sb, "%s = %s\n", s.Key, s.Value)
		if s.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", s.Description)
		}
	}
	sb.WriteString("\nModifier : /config CLÉ VALEUR [description]")
	return sb.String()
}

// splitConfigArgs: "KEY VALUE [description...]"; значение без пробелов (JSON-массив пишется слитно).
func splitConfigArgs(args string) (key, value string, desc *string, ok bool) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "", "", nil, false
	}
	key = strings.ToUpper(parts[0])
	value = parts[1]
	if len(parts) > 2 {
		d := strings.Join(parts[2:], " ")
		desc = &d
	}
	return key, value, desc, true
}

func (e *Env) Config(ctx context.Context, r Request) {
	key, value, desc, ok := splitConfigArgs(r.Args)
	if !ok {
		e.fail(ctx, r.ChatID, apperr.E("handlers.Config", apperr.ErrInvalidInput, nil))
		return
	}
	if err := ranking.ValidateSetting(key, value); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.UpdateSetting(ctx, e.DB, key, value, desc); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ %s = %s. Pense à /recalc pour appliquer au classement.", key, value))
}
