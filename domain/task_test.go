package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func TestTask_IsOverdue(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		due    time.Time
		want   bool
	}{
		{"todo past due", StatusTodo, refNow.Add(-time.Hour), true},
		{"in progress past due", StatusInProgress, refNow.Add(-24 * time.Hour), true},
		{"done past due", StatusDone, refNow.Add(-time.Hour), false},
		{"todo due later", StatusTodo, refNow.Add(time.Hour), false},
		{"todo due exactly now", StatusTodo, refNow, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, task.IsOverdue(refNow))
		})
	}
}

func TestTask_DaysRemaining(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"exactly one day", refNow.Add(24 * time.Hour), 1},
		{"partial day rounds up", refNow.Add(25 * time.Hour), 2},
		{"an hour left", refNow.Add(time.Hour), 1},
		{"due now", refNow, 0},
		{"a day and a half late", refNow.Add(-36 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{DueDate: tt.due}
			assert.Equal(t, tt.want, task.DaysRemaining(refNow))
		})
	}
}

func TestTask_ProgressPercentage(t *testing.T) {
	tests := []struct {
		name      string
		estimated float64
		spent     float64
		want      int
	}{
		{"no estimate", 0, 3600, 0},
		{"negative estimate", -5, 3600, 0},
		{"half way", 60, 1800, 50},
		{"rounds", 30, 600, 33},
		{"clamped", 10, 6000, 100},
		{"nothing spent", 25, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{EstimatedMinutes: tt.estimated, TimeSpent: tt.spent}
			assert.Equal(t, tt.want, task.ProgressPercentage())
		})
	}
}

func TestTask_FormattedURL(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"", ""},
		{"https://moodle.example.edu/course/42", "https://moodle.example.edu/course/42"},
		{"http://example.com", "http://example.com"},
		{"www.example.com/doc", "https://www.example.com/doc"},
		{"example.com", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			task := &Task{Link: tt.link}
			assert.Equal(t, tt.want, task.FormattedURL())
		})
	}
}

func TestTaskView_JSONRoundTrip(t *testing.T) {
	completed := refNow.Add(-2 * time.Hour)
	task := Task{
		ID:               "4b8f5f1e-7c64-4f51-9a0e-0d8f3f4a1c11",
		Creator:          "user-1",
		Owners:           []string{"ana@gmail.com", "leo@gmail.com"},
		Title:            "Lab report",
		Description:      "Write up the titration lab",
		Module:           "Chemistry",
		Category:         CategoryAcademic,
		Tags:             []string{"lab", "report"},
		Link:             "www.example.com/lab",
		FileURL:          "files/lab.pdf",
		TemplateID:       "tpl-1",
		DueDate:          refNow.Add(48 * time.Hour),
		Priority:         PriorityHigh,
		Status:           StatusDone,
		ParentID:         "parent-1",
		EstimatedMinutes: 90,
		TimeSpent:        2700,
		PomodoroCount:    3,
		Reminders:        []Reminder{{Date: refNow.Add(24 * time.Hour), Message: "start", Sent: true}},
		Comments:         []Comment{{Author: "leo@gmail.com", Message: "done?", CreatedAt: refNow}},
		CompletedAt:      &completed,
		LastViewedAt:     refNow,
		CreatedAt:        refNow.Add(-72 * time.Hour),
		UpdatedAt:        refNow,
	}
	view := NewTaskView(task, refNow)

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Lab report", raw["title"])
	assert.Equal(t, false, raw["is_overdue"])
	assert.Equal(t, float64(2), raw["days_remaining"])
	assert.Equal(t, float64(50), raw["progress_percentage"])
	assert.Equal(t, "https://www.example.com/lab", raw["formatted_url"])

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, task, decoded)
	assert.Equal(t, view, NewTaskView(decoded, refNow))
}
