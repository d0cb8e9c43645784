// Package apperr — виды ошибок ядра. Проверка через errors.Is по виду (Kind),
// исходная причина доступна через errors.Unwrap.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrSemesterNotFound = fmt.Errorf("semester %w", ErrNotFound)

	// ErrIncompleteProfile — у пользователя не заполнены фамилия/имя/класс/почта.
	// Вызывающая сторона должна предложить заполнить профиль, а не "повторить".
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrEmptySubmission   = errors.New("empty submission")

	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDateRange  = errors.New("start date must precede end date")
	ErrSemesterInUse     = errors.New("semester is referenced by session history")

	ErrDuplicateName     = errors.New("duplicate name")
	ErrInvalidPointValue = errors.New("point value must be a positive integer")

	ErrMalformedSettingsJSON = errors.New("malformed settings value")

	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidInput   = errors.New("invalid input")
)

// Error — ошибка операции ядра: Op — где, Kind — что (один из Err*), Err — причина.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// E собирает ошибку операции. err может быть nil.
func E(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

var kinds = []error{
	ErrIncompleteProfile,
	ErrEmptySubmission,
	ErrSemesterNotFound,
	ErrNotFound,
	ErrInvalidDateFormat,
	ErrInvalidDateRange,
	ErrSemesterInUse,
	ErrDuplicateName,
	ErrInvalidPointValue,
	ErrMalformedSettingsJSON,
	ErrInvalidProfile,
	ErrInvalidRole,
	ErrInvalidInput,
}

// KindOf возвращает вид ошибки или nil, если это "системная" ошибка (БД, сеть и т.п.).
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
