package domain

import "time"

// FocusSession is one completed focus (pomodoro) run recorded by a user.
type FocusSession struct {
	ID             string    `json:"id"`
	Owner          string    `json:"owner"`
	TaskID         string    `json:"task_id,omitempty"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Timestamp is the creation time, or the update time for legacy records
// without one.
func (s FocusSession) Timestamp() time.Time {
	if s.CreatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}
