package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
)

// SplitCommand: "/semester_add@SessionBot S1;01/09/2025" → ("/semester_add", "S1;01/09/2025").
func SplitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	cmd, args, _ = strings.Cut(text, " ")
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// fields делит аргументы по ';' и обрезает пробелы.
func fields(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	parts := strings.Split(args, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.E("handlers.parseID", apperr.ErrInvalidInput, fmt.Errorf("bad id %q", s))
	}
	return id, nil
}

func parsePoints(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperr.E("handlers.parsePoints", apperr.ErrInvalidPointValue, fmt.Errorf("%q", s))
	}
	return p, nil
}

// parseNoteMax — пустое значение означает "по умолчанию".
func parseNoteMax(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, apperr.E("handlers.parseNoteMax", apperr.ErrInvalidInput, fmt.Errorf("note max %q", s))
	}
	return v, nil
}

// callbackID: "pend:ok:15" с префиксом "pend:ok:" → 15.
func callbackID(data, prefix string) (int64, bool) {
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil
}
