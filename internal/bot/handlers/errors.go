package handlers

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/logging"
	"github.com/Spok95/session-bot/internal/metrics"
	"github.com/Spok95/session-bot/internal/observability"
	"github.com/Spok95/session-bot/internal/profile"
	"github.com/Spok95/session-bot/internal/tg"
)

const profileHint = "/profile Nom;Prénom;Classe;email@myges.fr"

var profileFieldNames = map[string]string{
	"LastName":  "nom",
	"FirstName": "prénom",
	"Class":     "classe",
	"Email":     "email",
}

// errText — ответ пользователю по виду ошибки.
func errText(err error) string {
	switch apperr.KindOf(err) {
	case apperr.ErrIncompleteProfile:
		return "⚠️ Ton profil est incomplet. Complète-le avant de déclarer des sessions :\n" + profileHint
	case apperr.ErrEmptySubmission:
		return "Aucune session sélectionnée."
	case apperr.ErrSemesterNotFound:
		return "Semestre introuvable."
	case apperr.ErrNotFound:
		return "Introuvable ou déjà traité."
	case apperr.ErrInvalidDateFormat:
		return "Date invalide, format attendu : JJ/MM/AAAA."
	case apperr.ErrInvalidDateRange:
		return "La date de début doit précéder la date de fin."
	case apperr.ErrSemesterInUse:
		return "Ce semestre contient des sessions validées, suppression impossible."
	case apperr.ErrDuplicateName:
		return "Ce nom existe déjà."
	case apperr.ErrInvalidPointValue:
		return "Les points doivent être un entier positif."
	case apperr.ErrMalformedSettingsJSON:
		return "Valeur invalide : nombre positif ou tableau JSON de nombres attendu (ex. [25,50,75,100])."
	case apperr.ErrInvalidProfile:
		names := make([]string, 0, 4)
		for _, f := range profile.InvalidFields(err) {
			names = append(names, profileFieldNames[f])
		}
		msg := "Profil invalide"
		if len(names) > 0 {
			msg += " (" + strings.Join(names, ", ") + ")"
		}
		return msg + ". Format : " + profileHint
	case apperr.ErrInvalidRole:
		return "Rôle invalide : user, staff ou admin."
	case apperr.ErrInvalidInput:
		return "Saisie invalide."
	default:
		return "❌ Erreur interne, réessaie plus tard."
	}
}

// fail отвечает пользователю; непредвиденные ошибки ещё и логируются и уходят в Sentry.
func (e *Env) fail(ctx context.Context, chatID int64, err error) {
	if apperr.KindOf(err) == nil && !errors.Is(err, context.Canceled) {
		metrics.HandlerErrors.Inc()
		logging.With(ctx, e.Log).Error("handler failed", zap.Error(err))
		observability.CaptureErrCtx(ctx, err)
	}
	tg.Text(ctx, e.Bot, chatID, errText(err))
}
