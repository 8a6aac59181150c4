package domain

import (
	"math"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusDeleted    Status = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusDeleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryAcademic        Category = "academic"
	CategoryExtracurricular Category = "extracurricular"
	CategoryOther           Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAcademic, CategoryExtracurricular, CategoryOther:
		return true
	}
	return false
}

// Reminder is a dated note attached to a task. Dispatch happens elsewhere.
type Reminder struct {
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	Sent    bool      `json:"sent"`
}

// Comment is a message left on a task by one of its owners.
type Comment struct {
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a student's unit of work shared between one or more owners.
type Task struct {
	ID               string     `json:"id"`
	Creator          string     `json:"creator,omitempty"`
	Owners           []string   `json:"owners"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Module           string     `json:"module"`
	Category         Category   `json:"category"`
	Tags             []string   `json:"tags,omitempty"`
	Link             string     `json:"link,omitempty"`
	FileURL          string     `json:"file_url,omitempty"`
	TemplateID       string     `json:"template_id,omitempty"`
	DueDate          time.Time  `json:"due_date"`
	Priority         Priority   `json:"priority"`
	Status           Status     `json:"status"`
	ParentID         string     `json:"parent_id,omitempty"`
	EstimatedMinutes float64    `json:"estimated_minutes,omitempty"`
	TimeSpent        float64    `json:"time_spent"`
	PomodoroCount    int        `json:"pomodoro_count"`
	Reminders        []Reminder `json:"reminders,omitempty"`
	Comments         []Comment  `json:"comments,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	LastViewedAt     time.Time  `json:"last_viewed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

func (t *Task) IsDeleted() bool {
	return t != nil && t.Status == StatusDeleted
}

// HasOwner reports whether email is one of the task owners.
func (t *Task) HasOwner(email string) bool {
	if t == nil {
		return false
	}
	for _, owner := range t.Owners {
		if owner == email {
			return true
		}
	}
	return false
}

// IsOverdue is true while the task is not done and its due date has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && t.Status != StatusDone && now.After(t.DueDate)
}

// DaysRemaining rounds the time left until the due date up to whole days.
// The value is negative once the due date has passed.
func (t *Task) DaysRemaining(now time.Time) int {
	if t == nil {
		return 0
	}
	days := t.DueDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// ProgressPercentage compares time spent (seconds) with the estimate (minutes).
func (t *Task) ProgressPercentage() int {
	if t == nil || t.EstimatedMinutes <= 0 {
		return 0
	}
	pct := math.Round(t.TimeSpent / (t.EstimatedMinutes * 60) * 100)
	return int(math.Min(100, pct))
}

// FormattedURL returns the link as an absolute URL, upgrading bare hosts to https.
func (t *Task) FormattedURL() string {
	if t == nil || t.Link == "" {
		return ""
	}
	if strings.HasPrefix(t.Link, "http") {
		return t.Link
	}
	return "https://" + t.Link
}

// TaskView is the transport shape of a task: stored fields plus derived ones.
type TaskView struct {
	Task
	IsOverdue          bool   `json:"is_overdue"`
	DaysRemaining      int    `json:"days_remaining"`
	ProgressPercentage int    `json:"progress_percentage"`
	FormattedURL       string `json:"formatted_url,omitempty"`
}

// NewTaskView computes the derived fields of task at instant now.
func NewTaskView(task Task, now time.Time) TaskView {
	return TaskView{
		Task:               task,
		IsOverdue:          task.IsOverdue(now),
		DaysRemaining:      task.DaysRemaining(now),
		ProgressPercentage: task.ProgressPercentage(),
		FormattedURL:       task.FormattedURL(),
	}
}

// NewTaskViews maps a task list to views computed at the same instant.
func NewTaskViews(tasks []Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, NewTaskView(task, now))
	}
	return views
}
