package models

import "time"

type SessionType struct {
	ID          int64
	Name        string
	Description string
	Points      int
	IsActive    bool
}

type PendingStatus string

const (
	StatusPending  PendingStatus = "pending"
	StatusApproved PendingStatus = "approved"
	StatusRejected PendingStatus = "rejected"
)

// SessionLine — строка заявки: сколько сессий данного типа.
type SessionLine struct {
	SessionTypeID int64
	Count         int
}

// PositiveLines отбрасывает строки с count <= 0, порядок сохраняется.
func PositiveLines(lines []SessionLine) []SessionLine {
	out := make([]SessionLine, 0, len(lines))
	for _, l := range lines {
		if l.Count > 0 {
			out = append(out, l)
		}
	}
	return out
}

type PendingDetail struct {
	ID            int64
	PendingID     int64
	SessionTypeID int64
	SessionName   string
	Count         int
	// Points — count × текущая стоимость типа.
	Points int
}

type PendingSession struct {
	ID           int64
	UserID       string
	ActivityDate time.Time
	SubmittedAt  time.Time
	Status       PendingStatus
	ResolvedBy   *string
	ResolvedAt   *time.Time
	Details      []PendingDetail
}

func (p *PendingSession) TotalPoints() int {
	total := 0
	for _, d := range p.Details {
		total += d.Points
	}
	return total
}

// Resolution — итог рассмотрения заявки, нужен для уведомления автора.
type Resolution struct {
	PendingID   int64
	UserID      string
	Status      PendingStatus
	SemesterID  *int64
	Lines       []PendingDetail
	TotalPoints int
}

type HistoryEntry struct {
	ID            int64
	UserID        string
	SessionTypeID int64
	SessionName   string
	ActivityDate  time.Time
	Count         int
	PointsGained  int
	ValidatedBy   string
	SemesterID    *int64
	PendingID     *int64
	CreatedAt     time.Time
}

type TypePoints struct {
	SessionName string
	TotalPoints int64
}
