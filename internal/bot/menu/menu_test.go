package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/session-bot/internal/models"
)

func TestCommandFor(t *testing.T) {
	assert.Equal(t, "/session", CommandFor(BtnSession))
	assert.Equal(t, "/pending", CommandFor(" "+BtnPending+" "))
	assert.Equal(t, "/ranking 5", CommandFor("/ranking 5"))
}

func TestGetRoleMenu(t *testing.T) {
	assert.Len(t, GetRoleMenu(models.RoleUser).Keyboard, 3)
	assert.Len(t, GetRoleMenu(models.RoleStaff).Keyboard, 4)
	assert.Len(t, GetRoleMenu(models.RoleAdmin).Keyboard, 5)
}
