package reminder

import (
	"time"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/utils/validators"
)

const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"

	displayDateLayout = "02/01/2006"
)

// DisplayModel is a reminder ready to be rendered as a card.
type DisplayModel struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	DoctorName string `json:"doctorName"`
	Specialty  string `json:"specialty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Location   string `json:"location"`
	Notes      string `json:"notes,omitempty"`
	Status     string `json:"status"`
	Completed  bool   `json:"completed"`
}

// ToDisplay has no side effects and depends only on r.
func ToDisplay(r entity.Reminder) DisplayModel {
	status := StatusActive
	if r.Completed() {
		status = StatusCompleted
	}

	title := r.Title
	if title == "" {
		title = entity.DefaultTitle(r.DoctorName)
	}

	return DisplayModel{
		ID:         r.ID,
		Title:      title,
		DoctorName: r.DoctorName,
		Specialty:  r.Specialty,
		Date:       FormatDate(r.Date),
		Time:       FormatTime(r.Time),
		Location:   r.Location,
		Notes:      r.Notes,
		Status:     status,
		Completed:  r.Completed(),
	}
}

func ToDisplayList(reminders []entity.Reminder) []DisplayModel {
	out := make([]DisplayModel, len(reminders))
	for i, r := range reminders {
		out[i] = ToDisplay(r)
	}
	return out
}

// FormatDate renders a YYYY-MM-DD date as DD/MM/YYYY.
func FormatDate(date string) string {
	if date == "" {
		return "Date not set"
	}
	t, err := time.Parse(validators.DateLayout, date)
	if err != nil {
		return "Invalid date"
	}
	return t.Format(displayDateLayout)
}

func FormatTime(clock string) string {
	if clock == "" {
		return "Time not set"
	}
	return clock
}
