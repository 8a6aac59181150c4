package transport

import (
	"strings"
	"time"

	"github.com/sorayamlj/FocusTache/domain"
)

// TaskRequest is the body of task create and update calls. Pointer fields
// distinguish "not sent" from "cleared" on update.
type TaskRequest struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	Module           *string  `json:"module"`
	Category         *string  `json:"category"`
	Tags             []string `json:"tags"`
	Link             *string  `json:"link"`
	FileURL          *string  `json:"file_url"`
	TemplateID       *string  `json:"template_id"`
	DueDate          *string  `json:"due_date"`
	Priority         *string  `json:"priority"`
	ParentID         *string  `json:"parent_id"`
	EstimatedMinutes *float64 `json:"estimated_minutes"`
	Owners           []string `json:"owners"`
}

// ParseTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, domain.WrapError(domain.ErrCodeInvalid, "invalid timestamp "+value, err)
	}
	return t, nil
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CommentRequest struct {
	Message string `json:"message"`
}

type TimeRequest struct {
	Seconds float64 `json:"seconds"`
}

type ShareRequest struct {
	Email string `json:"email"`
}

type ReminderRequest struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

type SessionRequest struct {
	TaskID         string  `json:"task_id"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}
