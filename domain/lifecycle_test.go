package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_SoftDeleteAndRestore(t *testing.T) {
	task := &Task{Title: "Essay", Status: StatusDone}
	task.ApplyStatus(StatusDone, refNow)

	task.SoftDelete(refNow.Add(time.Hour))
	assert.Equal(t, StatusDeleted, task.Status)
	require.NotNil(t, task.DeletedAt)
	assert.Nil(t, task.CompletedAt)

	later := refNow.Add(2 * time.Hour)
	task.SoftDelete(later)
	assert.Equal(t, later, *task.DeletedAt)

	assert.True(t, task.Restore(refNow.Add(3*time.Hour)))
	assert.Equal(t, StatusTodo, task.Status)
	assert.Nil(t, task.DeletedAt)
	assert.False(t, task.Restore(refNow.Add(4*time.Hour)))
}

func TestTask_Normalize(t *testing.T) {
	task := &Task{
		Title:  "  Read chapter 3 ",
		Module: " History",
		Owners: []string{" ana@gmail.com", "", "  "},
		Tags:   []string{"", "exam "},
	}
	task.Normalize()

	assert.Equal(t, "Read chapter 3", task.Title)
	assert.Equal(t, "History", task.Module)
	assert.Equal(t, []string{"ana@gmail.com"}, task.Owners)
	assert.Equal(t, []string{"exam"}, task.Tags)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, CategoryOther, task.Category)
}

func TestTask_PrepareNewResetsTracking(t *testing.T) {
	stamp := refNow.Add(-time.Hour)
	task := &Task{Status: StatusDone, CompletedAt: &stamp, DeletedAt: &stamp}
	task.PrepareNew(refNow)

	assert.Equal(t, StatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.DeletedAt)
	assert.Equal(t, refNow, task.LastViewedAt)
}

func TestTask_CommentsAndReminders(t *testing.T) {
	task := &Task{}
	task.AddComment("ana@gmail.com", "  see slides ", refNow)
	task.AddReminder(refNow.Add(24*time.Hour), "tomorrow", refNow)
	task.IncrementPomodoro(refNow)

	require.Len(t, task.Comments, 1)
	assert.Equal(t, Comment{Author: "ana@gmail.com", Message: "see slides", CreatedAt: refNow}, task.Comments[0])
	require.Len(t, task.Reminders, 1)
	assert.False(t, task.Reminders[0].Sent)
	assert.Equal(t, 1, task.PomodoroCount)
}
