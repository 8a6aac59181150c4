package domain

import (
	"strings"
	"time"
)

// The methods below are the task state-transition rules. Each one mutates the
// task in memory only; callers persist the whole entity afterwards.

// Normalize trims free-text fields and fills defaults for unset enums.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.Module = strings.TrimSpace(t.Module)
	t.Link = strings.TrimSpace(t.Link)
	t.FileURL = strings.TrimSpace(t.FileURL)

	owners := t.Owners[:0:0]
	for _, owner := range t.Owners {
		if owner = strings.TrimSpace(owner); owner != "" {
			owners = append(owners, owner)
		}
	}
	t.Owners = owners

	tags := t.Tags[:0:0]
	for _, tag := range t.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	t.Tags = tags

	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOther
	}
}

// PrepareNew applies creation defaults: status todo, fresh tracking fields.
func (t *Task) PrepareNew(now time.Time) {
	t.Normalize()
	t.Status = StatusTodo
	t.CompletedAt = nil
	t.DeletedAt = nil
	t.LastViewedAt = now
}

// Touch records a mutation.
func (t *Task) Touch(now time.Time) {
	t.LastViewedAt = now
}

// ApplyStatus moves the task to status and keeps CompletedAt in lockstep:
// it is stamped when entering done and cleared on any other status.
func (t *Task) ApplyStatus(status Status, now time.Time) {
	t.Status = status
	if status == StatusDone {
		if t.CompletedAt == nil {
			stamp := now
			t.CompletedAt = &stamp
		}
	} else {
		t.CompletedAt = nil
	}
	t.Touch(now)
}

// SoftDelete marks the task deleted. Repeated calls re-stamp DeletedAt.
func (t *Task) SoftDelete(now time.Time) {
	t.ApplyStatus(StatusDeleted, now)
	stamp := now
	t.DeletedAt = &stamp
}

// Restore brings a deleted task back to todo. It returns false, leaving the
// task untouched, when the task is not deleted.
func (t *Task) Restore(now time.Time) bool {
	if t.Status != StatusDeleted {
		return false
	}
	t.ApplyStatus(StatusTodo, now)
	t.DeletedAt = nil
	return true
}

func (t *Task) AddComment(author, message string, now time.Time) {
	t.Comments = append(t.Comments, Comment{
		Author:    author,
		Message:   strings.TrimSpace(message),
		CreatedAt: now,
	})
	t.Touch(now)
}

func (t *Task) AddReminder(date time.Time, message string, now time.Time) {
	t.Reminders = append(t.Reminders, Reminder{
		Date:    date,
		Message: strings.TrimSpace(message),
	})
	t.Touch(now)
}

// AddTimeSpent adds seconds of tracked work. Non-positive durations are ignored.
func (t *Task) AddTimeSpent(seconds float64, now time.Time) bool {
	if seconds <= 0 {
		return false
	}
	t.TimeSpent += seconds
	t.Touch(now)
	return true
}

func (t *Task) IncrementPomodoro(now time.Time) {
	t.PomodoroCount++
	t.Touch(now)
}

// ShareWith adds email to the owners. It returns false when already shared.
func (t *Task) ShareWith(email string, now time.Time) bool {
	email = strings.TrimSpace(email)
	if t.HasOwner(email) {
		return false
	}
	t.Owners = append(t.Owners, email)
	t.Touch(now)
	return true
}
