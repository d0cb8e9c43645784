package menu

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/session-bot/internal/models"
)

// Кнопки главного меню и команды, которые они вызывают.
const (
	BtnSession   = "🎮 Déclarer des sessions"
	BtnRanking   = "🏆 Classement"
	BtnMe        = "📊 Mes points"
	BtnHistory   = "🗒 Historique"
	BtnProfile   = "👤 Profil"
	BtnPending   = "📥 Demandes en attente"
	BtnSemesters = "📅 Semestres"
	BtnTypes     = "🗂 Types de session"
	BtnSettings  = "⚙️ Paramètres"
	BtnExport    = "📤 Export"
)

var buttonCommands = map[string]string{
	BtnSession:   "/session",
	BtnRanking:   "/ranking",
	BtnMe:        "/me",
	BtnHistory:   "/history",
	BtnProfile:   "/profile",
	BtnPending:   "/pending",
	BtnSemesters: "/semesters",
	BtnTypes:     "/types",
	BtnSettings:  "/settings",
	BtnExport:    "/export",
}

// CommandFor переводит нажатие кнопки меню в команду; прочий текст возвращается как есть.
func CommandFor(text string) string {
	if cmd, ok := buttonCommands[strings.TrimSpace(text)]; ok {
		return cmd
	}
	return text
}

// GetRoleMenu возвращает меню в зависимости от роли пользователя
func GetRoleMenu(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	switch role {
	case models.RoleAdmin:
		return adminMenu()
	case models.RoleStaff:
		return staffMenu()
	default:
		return userMenu()
	}
}

func userRows() [][]tgbotapi.KeyboardButton {
	return [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSession),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnRanking),
			tgbotapi.NewKeyboardButton(BtnMe),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnHistory),
			tgbotapi.NewKeyboardButton(BtnProfile),
		),
	}
}

func userMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(userRows()...)
}

func staffMenu() tgbotapi.ReplyKeyboardMarkup {
	rows := append(userRows(),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnPending),
			tgbotapi.NewKeyboardButton(BtnExport),
		),
	)
	return tgbotapi.NewReplyKeyboard(rows...)
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	rows := append(userRows(),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnPending),
			tgbotapi.NewKeyboardButton(BtnExport),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSemesters),
			tgbotapi.NewKeyboardButton(BtnTypes),
			tgbotapi.NewKeyboardButton(BtnSettings),
		),
	)
	return tgbotapi.NewReplyKeyboard(rows...)
}
