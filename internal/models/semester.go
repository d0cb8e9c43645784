package models

import "time"

const DefaultNoteMax = 4.0

type Semester struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	CreatedAt time.Time
	NoteMax   float64
}

// Contains — day попадает в [StartDate, EndDate] включительно (по календарным датам).
func (s *Semester) Contains(day time.Time) bool {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(s.StartDate.Year(), s.StartDate.Month(), s.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(s.EndDate.Year(), s.EndDate.Month(), s.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}

// SemesterInput — данные формы семестра, даты в формате ДД/ММ/ГГГГ.
type SemesterInput struct {
	Name      string
	StartDate string
	EndDate   string
	NoteMax   float64
}

// Ключи system_settings, влияющие на расчёт оценок.
const (
	SettingNoteMax              = "NOTE_MAX"
	SettingPercentileThresholds = "PERCENTILE_THRESHOLDS"
	SettingPercentileNotes      = "PERCENTILE_NOTES"
)

type Setting struct {
	Key         string
	Value       string
	Description string
}

type RankingRow struct {
	SemesterID  int64
	UserID      string
	TotalPoints int64
	Rank        int
	Percentile  float64
	FinalNote   float64
	Username    string
	FirstName   string
	LastName    string
}

func (r *RankingRow) DisplayName() string {
	u := User{Username: r.Username, FirstName: r.FirstName, LastName: r.LastName}
	return u.DisplayName()
}
