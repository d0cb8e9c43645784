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

// Types: участникам — активные типы, staff и выше — все.
func (e *Env) Types(ctx context.Context, r Request) {
	all, err := e.Roles.HasRole(ctx, r.UserID, models.RoleStaff)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	list, err := db.ListSessionTypes(ctx, e.DB, all)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, typesText(list))
}

func typesText(list []models.SessionType) string {
	if len(list) == 0 {
		return "Aucun type de session."
	}
	var sb strings.Builder
	sb.WriteString("🎲 Types de session\n\n")
	for _, t := range list {
		off := ""
		if !t.IsActive {
			off = " (désactivé)"
		}
		fmt.Fprintf(&sb, "#%d %s : %d pts%s\n", t.ID, t.Name, t.Points, off)
		if t.Description != "" {
			fmt.Fprintf(&sb, "   %s\n", t.Description)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// typeInput: "Nom;points[;description]".
func typeInput(parts []string) (name string, points int, desc string, err error) {
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, "", apperr.E("handlers.typeInput", apperr.ErrInvalidInput, nil)
	}
	points, err = parsePoints(parts[1])
	if err != nil {
		return "", 0, "", err
	}
	if len(parts) == 3 {
		desc = parts[2]
	}
	return parts[0], points, desc, nil
}

func (e *Env) TypeAdd(ctx context.Context, r Request) {
	name, points, desc, err := typeInput(fields(r.Args))
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	id, err := db.CreateSessionType(ctx, e.DB, name, desc, points)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ Type #%d « %s » créé (%d pts).", id, name, points))
}

func (e *Env) TypeEdit(ctx context.Context, r Request) {
	parts := fields(r.Args)
	if len(parts) < 3 {
		e.fail(ctx, r.ChatID, apperr.E("handlers.TypeEdit", apperr.ErrInvalidInput, nil))
		return
	}
	id, err := parseID(parts[0])
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	name, points, desc, err := typeInput(parts[1:])
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.UpdateSessionType(ctx, e.DB, id, name, desc, points); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ Type #%d mis à jour. Les demandes en attente utiliseront %d pts.", id, points))
}

func (e *Env) TypeDel(ctx context.Context, r Request) {
	id, err := parseID(r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	hard, err := db.DeleteSessionType(ctx, e.DB, id)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if hard {
		tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("🗑 Type #%d supprimé.", id))
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("Type #%d utilisé dans l'historique : désactivé au lieu d'être supprimé.", id))
}

// TypeOn: /type_on id — включить, /type_on id;off — выключить.
func (e *Env) TypeOn(ctx context.Context, r Request) {
	parts := fields(r.Args)
	if len(parts) == 0 || len(parts) > 2 {
		e.fail(ctx, r.ChatID, apperr.E("handlers.TypeOn", apperr.ErrInvalidInput, nil))
		return
	}
	id, err := parseID(parts[0])
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	active := len(parts) == 1 || !strings.EqualFold(parts[1], "off")
	if err := db.SetSessionTypeActive(ctx, e.DB, id, active); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	state := "activé"
	if !active {
		state = "désactivé"
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("Type #%d %s.", id, state))
}
