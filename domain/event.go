package domain

import "time"

// CalendarEvent is an entry of the user's calendar. Depending on where it
// comes from, its date is carried by either Date or DueDate.
type CalendarEvent struct {
	ID      string     `json:"id"`
	Owner   string     `json:"owner,omitempty"`
	Title   string     `json:"title"`
	Date    *time.Time `json:"date,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// When returns the event date, or the zero time when none is set.
func (e CalendarEvent) When() time.Time {
	if e.DueDate != nil && !e.DueDate.IsZero() {
		return *e.DueDate
	}
	if e.Date != nil {
		return *e.Date
	}
	return time.Time{}
}
