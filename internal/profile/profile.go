// Package profile проверяет и форматирует анкету участника перед записью в БД.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/models"
)

type form struct {
	LastName  string `validate:"required,max=64"`
	FirstName string `validate:"required,max=64"`
	Class     string `validate:"required,max=16"`
	Email     string `validate:"required,max=254,school_email"`
}

// Validator хранит настроенный validator.Validate; безопасен для конкурентного использования.
type Validator struct {
	v      *validator.Validate
	domain string
}

// New — домен почты без точки и суффиксов, например "myges": принимаются
// адреса local@myges, local@myges.fr, local@myges.edu.fr.
func New(domain string) *Validator {
	domain = strings.Trim(strings.ToLower(strings.TrimSpace(domain)), "@.")
	if domain == "" {
		domain = "myges"
	}
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `(\.[a-zA-Z0-9-]+)*$`)

	v := validator.New()
	_ = v.RegisterValidation("school_email", func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	return &Validator{v: v, domain: domain}
}

func (pv *Validator) Domain() string { return pv.domain }

// Normalize проверяет анкету и приводит её к виду хранения:
// фамилия и класс заглавными, имя с заглавной буквы в каждом слове.
func (pv *Validator) Normalize(p models.Profile) (models.Profile, error) {
	f := form{
		LastName:  strings.TrimSpace(p.LastName),
		FirstName: strings.TrimSpace(p.FirstName),
		Class:     strings.TrimSpace(p.Class),
		Email:     strings.TrimSpace(p.Email),
	}
	if err := pv.v.Struct(f); err != nil {
		return models.Profile{}, apperr.E("profile.Normalize", apperr.ErrInvalidProfile, describe(err))
	}
	return models.Profile{
		LastName:  strings.ToUpper(f.LastName),
		FirstName: TitleWords(f.FirstName),
		Class:     strings.ToUpper(f.Class),
		Email:     f.Email,
	}, nil
}

// describe превращает ошибки validator в короткий текст "Поле: правило".
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, ", "))
}

// InvalidFields — имена полей, не прошедших проверку.
func InvalidFields(err error) []string {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Err == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(e.Err.Error(), ", ") {
		if name, _, ok := strings.Cut(part, ":"); ok {
			out = append(out, name)
		}
	}
	return out
}

// TitleWords: "jean-PAUL marie" → "Jean-paul Marie". Слова разделяются пробелами.
func TitleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
