package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/session-bot/internal/models"
)

// RankingsWorkbook — рейтинг семестра: лист "Classement" и лист "Semestre" с параметрами.
func RankingsWorkbook(sem *models.Semester, rows []models.RankingRow) (*excelize.File, error) {
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.Rank,
			r.DisplayName(),
			r.Username,
			r.TotalPoints,
			roundTo(r.Percentile, 2),
			r.FinalNote,
		})
	}
	info := [][]any{
		{"Nom", sem.Name},
		{"Début", sem.StartDate.Format("02/01/2006")},
		{"Fin", sem.EndDate.Format("02/01/2006")},
		{"Note max", sem.NoteMax},
		{"Classés", len(rows)},
	}
	return NewWorkbook([]SheetSpec{
		{
			Title:  "Classement",
			Header: []string{"Rang", "Membre", "Pseudo", "Points", "Percentile", "Note"},
			Rows:   data,
		},
		{
			Title:  "Semestre",
			Header: []string{"Champ", "Valeur"},
			Rows:   info,
		},
	})
}

// HistoryWorkbook — подтверждённые сессии участника.
func HistoryWorkbook(entries []models.HistoryEntry) (*excelize.File, error) {
	data := make([][]any, 0, len(entries))
	for _, e := range entries {
		data = append(data, []any{
			e.ActivityDate.Format("02/01/2006"),
			e.SessionName,
			e.Count,
			e.PointsGained,
			e.ValidatedBy,
		})
	}
	return NewWorkbook([]SheetSpec{{
		Title:  "Historique",
		Header: []string{"Date", "Type", "Nombre", "Points", "Validé par"},
		Rows:   data,
	}})
}

func RankingsFilename(sem *models.Semester) string {
	return sanitizeFileName(fmt.Sprintf("Classement — %s.xlsx", sem.Name))
}

func HistoryFilename(user *models.User) string {
	return sanitizeFileName(fmt.Sprintf("Historique — %s.xlsx", user.DisplayName()))
}

func roundTo(v float64, digits int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
	return f
}
