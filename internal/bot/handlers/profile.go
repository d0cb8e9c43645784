package handlers

import (
	"context"
	"fmt"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

// Profile: без аргументов показывает анкету, с аргументами "Nom;Prénom;Classe;email" — сохраняет.
func (e *Env) Profile(ctx context.Context, r Request) {
	if r.Args == "" {
		u, err := db.GetUser(ctx, e.DB, r.UserID)
		if err != nil {
			e.fail(ctx, r.ChatID, err)
			return
		}
		text := profileText(u)
		if !u.ProfileComplete() {
			text += "\n\nPour compléter : " + profileHint
		}
		tg.Text(ctx, e.Bot, r.ChatID, text)
		return
	}

	f := fields(r.Args)
	if len(f) != 4 {
		e.fail(ctx, r.ChatID, apperr.E("handlers.Profile", apperr.ErrInvalidProfile, nil))
		return
	}
	p, err := e.Profiles.Normalize(models.Profile{LastName: f[0], FirstName: f[1], Class: f[2], Email: f[3]})
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.UpdateProfile(ctx, e.DB, r.UserID, p); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	u, err := db.GetUser(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, "✅ Profil mis à jour.\n\n"+profileText(u))
}

func profileText(u *models.User) string {
	or := func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	}
	return fmt.Sprintf("👤 Profil de %s\nNom : %s\nPrénom : %s\nClasse : %s\nEmail : %s\nPoints : %d\nMembre depuis : %s",
		u.Username, or(u.LastName), or(u.FirstName), or(u.Class), or(u.Email), u.ScoreTotal, db.FormatDate(u.JoinedAt))
}
