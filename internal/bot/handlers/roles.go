package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

// SetRole: /setrole <userID> <role>. Роль админов из ADMIN_IDS этим не снять.
func (e *Env) SetRole(ctx context.Context, r Request) {
	parts := strings.Fields(r.Args)
	if len(parts) != 2 {
		e.fail(ctx, r.ChatID, apperr.E("handlers.SetRole", apperr.ErrInvalidInput, nil))
		return
	}
	if _, err := parseID(parts[0]); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	role, ok := models.ParseRole(parts[1])
	if !ok {
		e.fail(ctx, r.ChatID, apperr.E("handlers.SetRole", apperr.ErrInvalidRole, fmt.Errorf("%q", parts[1])))
		return
	}
	if err := db.UpdateRole(ctx, e.DB, parts[0], role); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ %s est maintenant %s.", e.userName(ctx, parts[0]), role))
}
