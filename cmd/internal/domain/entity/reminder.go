package entity

import "encoding/json"

const titlePrefix = "Consultation with "

// Reminder is one scheduled appointment of a single user. Completion is
// carried only by CompletedAt: nil means pending.
type Reminder struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	DoctorName  string `json:"doctorName"`
	Specialty   string `json:"specialty"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Location    string `json:"location"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	CompletedAt *int64 `json:"completedAt,omitempty"`
}

func DefaultTitle(doctorName string) string {
	return titlePrefix + doctorName
}

func (r *Reminder) Completed() bool {
	return r.CompletedAt != nil
}

func (r *Reminder) Complete(atMillis int64) {
	r.CompletedAt = &atMillis
}

func (r *Reminder) Reopen() {
	r.CompletedAt = nil
}

// Clone returns a copy that shares no memory with r.
func (r Reminder) Clone() Reminder {
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		r.CompletedAt = &at
	}
	return r
}

func (r Reminder) MarshalJSON() ([]byte, error) {
	type plain Reminder
	return json.Marshal(struct {
		plain
		Completed bool `json:"completed"`
	}{plain(r), r.Completed()})
}
