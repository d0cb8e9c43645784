package handlers

import (
	"context"
	"strings"

	"github.com/Spok95/session-bot/internal/models"
)

type Command struct {
	Role models.Role
	Run  func(e *Env, ctx context.Context, r Request)
}

var commands = map[string]Command{
	"/start":   {models.RoleUser, (*Env).Start},
	"/help":    {models.RoleUser, (*Env).Start},
	"/profile": {models.RoleUser, (*Env).Profile},
	"/session": {models.RoleUser, (*Env).Session},
	"/ranking": {models.RoleUser, (*Env).Ranking},
	"/me":      {models.RoleUser, (*Env).Me},
	"/history": {models.RoleUser, (*Env).History},
	"/types":   {models.RoleUser, (*Env).Types},

	"/pending": {models.RoleStaff, (*Env).Pending},
	"/export":  {models.RoleStaff, (*Env).Export},

	"/semesters":         {models.RoleAdmin, (*Env).Semesters},
	"/semester_add":      {models.RoleAdmin, (*Env).SemesterAdd},
	"/semester_edit":     {models.RoleAdmin, (*Env).SemesterEdit},
	"/semester_activate": {models.RoleAdmin, (*Env).SemesterActivate},
	"/semester_delete":   {models.RoleAdmin, (*Env).SemesterDelete},
	"/recalc":            {models.RoleAdmin, (*Env).Recalc},
	"/settings":          {models.RoleAdmin, (*Env).Settings},
	"/config":            {models.RoleAdmin, (*Env).Config},
	"/type_add":          {models.RoleAdmin, (*Env).TypeAdd},
	"/type_edit":         {models.RoleAdmin, (*Env).TypeEdit},
	"/type_del":          {models.RoleAdmin, (*Env).TypeDel},
	"/type_on":           {models.RoleAdmin, (*Env).TypeOn},
	"/setrole":           {models.RoleAdmin, (*Env).SetRole},
}

func Lookup(cmd string) (Command, bool) {
	c, ok := commands[cmd]
	return c, ok
}

// Префиксы callback-данных.
const (
	cbDraft   = "draft:"
	cbPending = "pend:"
)

// CallbackRole — какая роль нужна для нажатия кнопки.
func CallbackRole(data string) (models.Role, bool) {
	switch {
	case strings.HasPrefix(data, cbDraft):
		return models.RoleUser, true
	case strings.HasPrefix(data, cbPending):
		return models.RoleStaff, true
	default:
		return "", false
	}
}

// HandleCallback — нажатия inline-кнопок; права уже проверены диспетчером.
func (e *Env) HandleCallback(ctx context.Context, r Request, data string) {
	switch {
	case strings.HasPrefix(data, cbDraft):
		e.DraftCallback(ctx, r, strings.TrimPrefix(data, cbDraft))
	case strings.HasPrefix(data, cbPending):
		e.PendingCallback(ctx, r, strings.TrimPrefix(data, cbPending))
	}
}
