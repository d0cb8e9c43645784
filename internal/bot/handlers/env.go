// Package handlers — тонкий слой Telegram: разбирает команды и кнопки, зовёт ядро
// (internal/db, internal/ranking) и форматирует ответы.
package handlers

import (
	"context"
	"database/sql"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/bot/draft"
	"github.com/Spok95/session-bot/internal/models"
	"github.com/Spok95/session-bot/internal/profile"
)

// Rankings — чтение и пересчёт рейтинга (app.Leaderboard).
type Rankings interface {
	Active(ctx context.Context) (*models.Semester, error)
	Recompute(ctx context.Context, semesterID int64) (int, error)
	View(ctx context.Context, semesterID int64, limit int) ([]models.RankingRow, error)
	Standing(ctx context.Context, userID string, semesterID int64) (*models.RankingRow, error)
}

// Roles — права участников (auth.DBChecker).
type Roles interface {
	HasRole(ctx context.Context, userID string, role models.Role) (bool, error)
	Role(ctx context.Context, userID string) (models.Role, error)
	AdminIDs() []string
}

type Env struct {
	Bot      *tgbotapi.BotAPI
	DB       *sql.DB
	Log      *zap.Logger
	Roles    Roles
	Profiles *profile.Validator
	Board    Rankings
	Drafts   *draft.Store
	// StaffChatID — куда слать новые заявки; 0 — лично каждому staff/admin.
	StaffChatID int64
	Loc         *time.Location
}

// Request — то, что нужно обработчику из апдейта.
type Request struct {
	ChatID    int64
	UserID    string
	Username  string
	Args      string
	MessageID int
}

func (e *Env) now() time.Time {
	if e.Loc != nil {
		return time.Now().In(e.Loc)
	}
	return time.Now()
}
