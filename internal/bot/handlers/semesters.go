package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/tg"
)

func (e *Env) Semesters(ctx context.Context, r Request) {
	list, err := db.ListSemesters(ctx, e.DB)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	var current int64
	if sem, err := e.Board.Active(ctx); err == nil {
		current = sem.ID
	}
	tg.Text(ctx, e.Bot, r.ChatID, semestersText(list, current))
}

func semestersText(list []models.Semester, currentID int64) string {
	if len(list) == 0 {
		return "Aucun semestre. /semester_add Nom;JJ/MM/AAAA;JJ/MM/AAAA"
	}
	var sb strings.Builder
	sb.WriteString("📅 Semestres\n\n")
	for _, s := range list {
		mark := "  "
		switch {
		case s.IsActive:
			mark = "⭐"
		case s.ID == currentID:
			mark = "▶️"
		}
		fmt.Fprintf(&sb, "%s #%d %s : %s → %s (note max %g)\n", mark, s.ID, s.Name,
			db.FormatDate(s.StartDate), db.FormatDate(s.EndDate), s.NoteMax)
	}
	sb.WriteString("\n⭐ actif manuellement, ▶️ en cours par dates")
	return sb.String()
}

// semesterInput: "Nom;début;fin[;note max]".
func semesterInput(parts []string) (models.SemesterInput, error) {
	if len(parts) < 3 || len(parts) > 4 {
		return models.SemesterInput{}, apperr.E("handlers.semesterInput", apperr.ErrInvalidInput, nil)
	}
	in := models.SemesterInput{Name: parts[0], StartDate: parts[1], EndDate: parts[2]}
	if len(parts) == 4 {
		v, err := parseNoteMax(parts[3])
		if err != nil {
			return models.SemesterInput{}, err
		}
		in.NoteMax = v
	}
	return in, nil
}

func (e *Env) SemesterAdd(ctx context.Context, r Request) {
	in, err := semesterInput(fields(r.Args))
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	id, err := db.CreateSemester(ctx, e.DB, in)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ Semestre #%d « %s » créé. /semester_activate %d pour l'activer.", id, in.Name, id))
}

func (e *Env) SemesterEdit(ctx context.Context, r Request) {
	parts := fields(r.Args)
	if len(parts) < 4 {
		e.fail(ctx, r.ChatID, apperr.E("handlers.SemesterEdit", apperr.ErrInvalidInput, nil))
		return
	}
	id, err := parseID(parts[0])
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	in, err := semesterInput(parts[1:])
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.UpdateSemester(ctx, e.DB, id, in); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("✅ Semestre #%d mis à jour.", id))
}

func (e *Env) SemesterActivate(ctx context.Context, r Request) {
	id, err := parseID(r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.SetActiveSemester(ctx, e.DB, id); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("⭐ Semestre #%d activé.", id))
}

func (e *Env) SemesterDelete(ctx context.Context, r Request) {
	id, err := parseID(r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	if err := db.DeleteSemester(ctx, e.DB, id); err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("🗑 Semestre #%d supprimé.", id))
}

// Recalc: /recalc [id] — пересчёт рейтинга семестра (по умолчанию активного).
func (e *Env) Recalc(ctx context.Context, r Request) {
	if !fsmutil.SetPending(r.ChatID, "recalc") {
		tg.Text(ctx, e.Bot, r.ChatID, "⏳ Un recalcul est déjà en cours.")
		return
	}
	defer fsmutil.ClearPending(r.ChatID, "recalc")

	sem, err := e.semesterArg(ctx, r.Args)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	n, err := e.Board.Recompute(ctx, sem.ID)
	if err != nil {
		e.fail(ctx, r.ChatID, err)
		return
	}
	tg.Text(ctx, e.Bot, r.ChatID, fmt.Sprintf("🔄 Classement « %s » recalculé : %d membres classés.", sem.Name, n))
}
