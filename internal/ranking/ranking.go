// Package ranking — чистая часть расчёта рейтинга: параметры оценивания из
// system_settings, ранги, перцентили и итоговые оценки. Хранение — в db.CalculateRankings.
package ranking

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Spok95/session-bot/internal/apperr"
	"github.com/Spok95/session-bot/internal/models"
)

var (
	DefaultThresholds = []float64{25, 50, 75, 100}
	DefaultNotes      = []float64{4, 3, 2, 1}
)

// Params — шкала оценивания. Thresholds и Notes одной длины; NoteMax только для показа.
type Params struct {
	NoteMax    float64
	Thresholds []float64
	Notes      []float64
}

// LoadParams собирает шкалу из настроек. NOTE_MAX из настроек перекрывает
// максимальную оценку семестра. Отсутствующие массивы заменяются значениями
// по умолчанию, битые — ErrMalformedSettingsJSON.
func LoadParams(settings map[string]string, semesterNoteMax float64) (Params, error) {
	const op = "ranking.LoadParams"
	p := Params{
		NoteMax:    semesterNoteMax,
		Thresholds: append([]float64(nil), DefaultThresholds...),
		Notes:      append([]float64(nil), DefaultNotes...),
	}
	if p.NoteMax <= 0 {
		p.NoteMax = models.DefaultNoteMax
	}

	if raw, ok := settings[models.SettingNoteMax]; ok {
		v, err := parseNoteMax(raw)
		if err != nil {
			return Params{}, apperr.E(op, apperr.ErrMalformedSettingsJSON, err)
		}
		p.NoteMax = v
	}
	if raw, ok := settings[models.SettingPercentileThresholds]; ok {
		v, err := parseArray(raw)
		if err != nil {
			return Params{}, apperr.E(op, apperr.ErrMalformedSettingsJSON, fmt.Errorf("%s: %w", models.SettingPercentileThresholds, err))
		}
		p.Thresholds = v
	}
	if raw, ok := settings[models.SettingPercentileNotes]; ok {
		v, err := parseArray(raw)
		if err != nil {
			return Params{}, apperr.E(op, apperr.ErrMalformedSettingsJSON, fmt.Errorf("%s: %w", models.SettingPercentileNotes, err))
		}
		p.Notes = v
	}
	if len(p.Thresholds) != len(p.Notes) {
		return Params{}, apperr.E(op, apperr.ErrMalformedSettingsJSON,
			fmt.Errorf("thresholds (%d) and notes (%d) differ in length", len(p.Thresholds), len(p.Notes)))
	}
	return p, nil
}

// ValidateSetting проверяет форму значения перед записью в system_settings.
// Неизвестные ключи принимаются как есть.
func ValidateSetting(key, value string) error {
	const op = "ranking.ValidateSetting"
	var err error
	switch key {
	case models.SettingNoteMax:
		_, err = parseNoteMax(value)
	case models.SettingPercentileThresholds, models.SettingPercentileNotes:
		_, err = parseArray(value)
	}
	if err != nil {
		return apperr.E(op, apperr.ErrMalformedSettingsJSON, fmt.Errorf("%s: %w", key, err))
	}
	return nil
}

func parseNoteMax(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("NOTE_MAX must be positive, got %v", v)
	}
	return v, nil
}

func parseArray(raw string) ([]float64, error) {
	var out []float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty array")
	}
	return out, nil
}

// Grade — notes[i] для первого thresholds[i] >= percentile; если порог не найден, notes[0].
func (p Params) Grade(percentile float64) float64 {
	for i, t := range p.Thresholds {
		if t >= percentile {
			return p.Notes[i]
		}
	}
	return p.Notes[0]
}

type UserTotal struct {
	UserID      string
	TotalPoints int64
}

type Standing struct {
	UserID      string
	TotalPoints int64
	Rank        int
	Percentile  float64
	Grade       float64
}

// Assign раздаёт ранги 1..N по убыванию очков. Равные суммы получают разные ранги
// в порядке входного среза. percentile = rank × 100 / N: у первого ровно 100/N, у последнего 100.
func Assign(totals []UserTotal, p Params) []Standing {
	sorted := append([]UserTotal(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	n := len(sorted)
	out := make([]Standing, 0, n)
	for i, t := range sorted {
		rank := i + 1
		pct := float64(rank) * 100 / float64(n)
		out = append(out, Standing{
			UserID:      t.UserID,
			TotalPoints: t.TotalPoints,
			Rank:        rank,
			Percentile:  pct,
			Grade:       p.Grade(pct),
		})
	}
	return out
}
