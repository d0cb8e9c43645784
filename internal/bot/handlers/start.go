package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/session-bot/internal/bot/menu"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

func (e *Env) Start(ctx context.Context, r Request) {
	u, err := db.GetUser(ctx, e.DB, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	role, err := e.Roles.Role(ctx, r.UserID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}

	var b strings.Builder
	b.WriteString("👋 Bienvenue ! Déclare tes sessions de jeu, le staff les valide et tu gagnes des points pour le classement du semestre.\n\n")
	b.WriteString(helpText(role))
	if !u.ProfileComplete() {
		b.WriteString("\n⚠️ Commence par compléter ton profil :\n" + profileHint)
	}

	msg := tgbotapi.NewMessage(r.ChatID, b.String())
	msg.ReplyMarkup = menu.GetRoleMenu(role)
	_, _ = tg.Send(ctx, e.Bot, msg)
}

func helpText(role models.Role) string {
	var b strings.Builder
	b.WriteString("/session [JJ/MM/AAAA] — déclarer des sessions\n")
	b.WriteString("/ranking — classement du semestre\n")
	b.WriteString("/me — mes points et ma place\n")
	b.WriteString("/history [xlsx] — mes sessions validées\n")
	b.WriteString("/profile — voir ou modifier mon profil\n")
	b.WriteString("/types — types de session et barème\n")
	if role.AtLeast(models.RoleStaff) {
		b.WriteString("\nStaff :\n/pending — demandes en attente\n/export [id] — classement en .xlsx\n")
	}
	if role.AtLeast(models.RoleAdmin) {
		b.WriteString("\nAdmin :\n")
		b.WriteString("/semesters, /semester_add Nom;JJ/MM/AAAA;JJ/MM/AAAA[;note max]\n")
		b.WriteString("/semester_edit id;Nom;début;fin[;note max], /semester_activate id, /semester_delete id\n")
		b.WriteString("/recalc [id] — recalculer le classement\n")
		b.WriteString("/settings, /config CLÉ VALEUR [description]\n")
		b.WriteString("/type_add Nom;points[;description], /type_edit id;Nom;points[;description]\n")
		b.WriteString("/type_del id, /type_on id[;off]\n")
		b.WriteString("/setrole <id> user|staff|admin\n")
	}
	return b.String()
}
