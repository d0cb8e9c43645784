// Package auth — проверка прав участника. Ядро не хранит сессий и паролей:
// идентичность приходит снаружи (Telegram), роль — из users.role или ADMIN_IDS.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/models"
)

type Checker interface {
	HasRole(ctx context.Context, userID string, role models.Role) (bool, error)
}

// RoleLookup — откуда брать сохранённую роль участника.
type RoleLookup func(ctx context.Context, userID string) (models.Role, error)

// DBChecker: ID из ADMIN_IDS всегда admin, остальные — по users.role.
// Незнакомый участник считается обычным user.
type DBChecker struct {
	admins map[string]struct{}
	lookup RoleLookup
}

func NewDBChecker(database *sql.DB, adminIDs []int64) *DBChecker {
	return NewChecker(adminIDs, func(ctx context.Context, userID string) (models.Role, error) {
		u, err := db.GetUser(ctx, database, userID)
		if err != nil {
			return "", err
		}
		return u.Role, nil
	})
}

func NewChecker(adminIDs []int64, lookup RoleLookup) *DBChecker {
	m := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		m[strconv.FormatInt(id, 10)] = struct{}{}
	}
	return &DBChecker{admins: m, lookup: lookup}
}

// IsAdminID — участник указан в ADMIN_IDS.
func (c *DBChecker) IsAdminID(userID string) bool {
	_, ok := c.admins[userID]
	return ok
}

// AdminIDs — для рассылки заявок, если STAFF_CHAT_ID не задан.
func (c *DBChecker) AdminIDs() []string {
	out := make([]string, 0, len(c.admins))
	for id := range c.admins {
		out = append(out, id)
	}
	return out
}

// Role — действующая роль участника.
func (c *DBChecker) Role(ctx context.Context, userID string) (models.Role, error) {
	if c.IsAdminID(userID) {
		return models.RoleAdmin, nil
	}
	r, err := c.lookup(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	if !r.Valid() {
		return models.RoleUser, nil
	}
	return r, nil
}

func (c *DBChecker) HasRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	r, err := c.Role(ctx, userID)
	if err != nil {
		return false, err
	}
	return r.AtLeast(role), nil
}
