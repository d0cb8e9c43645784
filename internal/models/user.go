package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func (r Role) level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleStaff:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.level() > 0 }

// AtLeast — admin ⊃ staff ⊃ user.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r.level() >= required.level()
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

type User struct {
	ID           string
	Username     string
	LastName     string
	FirstName    string
	Class        string
	Email        string
	ScoreTotal   int64
	Role         Role
	JoinedAt     time.Time
	LastActiveAt time.Time
}

// Profile — редактируемые поля профиля.
type Profile struct {
	LastName  string
	FirstName string
	Class     string
	Email     string
}

// ProfileComplete — фамилия, имя, класс и почта заполнены.
func (u *User) ProfileComplete() bool {
	return u != nil && u.LastName != "" && u.FirstName != "" && u.Class != "" && u.Email != ""
}

// DisplayName — "Имя ФАМИЛИЯ", если профиль заполнен, иначе ник.
func (u *User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Username
}
