package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sorayamlj/FocusTache/domain"
)

var morning = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestCompute_Empty(t *testing.T) {
	snap := Compute(Input{}, morning)

	assert.Equal(t, TaskStats{}, snap.Tasks)
	assert.Equal(t, SessionStats{}, snap.Sessions)
	assert.Equal(t, CalendarStats{}, snap.Calendar)
	assert.NotNil(t, snap.RecentTasks)
	assert.NotNil(t, snap.RecentNotes)
	assert.NotNil(t, snap.Notes.Recent)
	assert.NotNil(t, snap.TodayEvents)
	assert.NotNil(t, snap.Degraded)
	assert.Equal(t, "Good morning! Great news, no pending tasks today!", snap.Greeting)
	assert.Contains(t, tips, snap.Tip)
	assert.Equal(t, morning, snap.GeneratedAt)
}

func TestCompute_DoneTasksAreNeverUrgentOrOverdue(t *testing.T) {
	in := Input{Tasks: []domain.Task{
		{ID: "a", Status: domain.StatusDone, Priority: domain.PriorityHigh, DueDate: morning.Add(-48 * time.Hour), CompletedAt: at(morning.Add(-time.Hour))},
		{ID: "b", Status: domain.StatusDone, Priority: domain.PriorityHigh, DueDate: morning.Add(-72 * time.Hour), CompletedAt: at(morning.Add(-30 * time.Hour))},
	}}
	snap := Compute(in, morning)

	assert.Equal(t, TaskStats{Total: 2, Completed: 2, CompletedToday: 1}, snap.Tasks)
}

func TestCompute_TaskStats(t *testing.T) {
	in := Input{Tasks: []domain.Task{
		{ID: "todo-overdue", Status: domain.StatusTodo, Priority: domain.PriorityHigh, DueDate: morning.Add(-time.Hour)},
		{ID: "todo-later", Status: domain.StatusTodo, Priority: domain.PriorityLow, DueDate: morning.Add(time.Hour)},
		{ID: "progress", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, DueDate: morning.Add(-time.Minute)},
		{ID: "no-due", Status: domain.StatusTodo, Priority: domain.PriorityMedium},
	}}
	snap := Compute(in, morning)

	assert.Equal(t, TaskStats{Total: 4, Pending: 3, InProgress: 1, Urgent: 2, Overdue: 2}, snap.Tasks)
	assert.Equal(t, "Good morning! Ready for a productive day? 3 tasks waiting for you.", snap.Greeting)
}

func TestCompute_SessionWindows(t *testing.T) {
	in := Input{Sessions: []domain.FocusSession{
		{ElapsedSeconds: 1500, CreatedAt: morning.Add(-time.Hour)},
		{ElapsedSeconds: 600, UpdatedAt: morning.Add(-2 * time.Hour)},
		{ElapsedSeconds: 1200, CreatedAt: morning.Add(-24 * time.Hour)},
		{ElapsedSeconds: 300, CreatedAt: morning.Add(-8 * 24 * time.Hour)},
		{ElapsedSeconds: 60},
	}}
	snap := Compute(in, morning)

	assert.Equal(t, 2, snap.Sessions.Today)
	assert.Equal(t, float64(35), snap.Sessions.TodayMinutes)
	assert.Equal(t, 3, snap.Sessions.ThisWeek)
	assert.Equal(t, float64(61), snap.Sessions.TotalMinutes)
}

func TestCompute_CalendarWindows(t *testing.T) {
	in := Input{Events: []domain.CalendarEvent{
		{ID: "earlier-today", Date: at(morning.Add(-2 * time.Hour))},
		{ID: "later-today", DueDate: at(morning.Add(3 * time.Hour))},
		{ID: "in-six-days", Date: at(morning.Add(6 * 24 * time.Hour))},
		{ID: "last-week", Date: at(morning.Add(-6 * 24 * time.Hour))},
		{ID: "next-month", Date: at(morning.Add(30 * 24 * time.Hour))},
		{ID: "undated"},
	}}
	snap := Compute(in, morning)

	assert.Equal(t, CalendarStats{TodayEvents: 2, Upcoming: 2, WeekEvents: 4}, snap.Calendar)
	require.Len(t, snap.TodayEvents, 2)
	assert.Equal(t, "earlier-today", snap.TodayEvents[0].ID)
	assert.Equal(t, "later-today", snap.TodayEvents[1].ID)
}

func TestCompute_DayFollowsClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, loc)
	in := Input{Events: []domain.CalendarEvent{
		// 23:30 UTC on the 9th is 01:30 on the 10th in UTC+2.
		{ID: "local-today", Date: at(time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC))},
		{ID: "local-yesterday", Date: at(time.Date(2025, 3, 9, 21, 30, 0, 0, time.UTC))},
	}}
	snap := Compute(in, now)

	require.Len(t, snap.TodayEvents, 1)
	assert.Equal(t, "local-today", snap.TodayEvents[0].ID)
}

func TestCompute_RecentLists(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, domain.Task{
			ID:        fmt.Sprintf("t%d", i),
			Status:    domain.StatusTodo,
			DueDate:   morning.Add(time.Hour),
			CreatedAt: morning.Add(time.Duration(-i) * time.Hour),
		})
	}
	tasks[6].UpdatedAt = morning.Add(time.Minute)
	notes := []domain.Note{
		{ID: "n1", CreatedAt: morning.Add(-3 * time.Hour)},
		{ID: "n2", CreatedAt: morning.Add(-5 * time.Hour), UpdatedAt: morning.Add(-time.Minute)},
		{ID: "n3", CreatedAt: morning.Add(-2 * time.Hour)},
		{ID: "n4", CreatedAt: morning.Add(-9 * time.Hour)},
	}
	snap := Compute(Input{Tasks: tasks, Notes: notes}, morning)

	recent := make([]string, 0, len(snap.RecentTasks))
	for _, v := range snap.RecentTasks {
		recent = append(recent, v.ID)
	}
	assert.Equal(t, []string{"t6", "t0", "t1", "t2", "t3"}, recent)
	assert.Equal(t, "t0", tasks[0].ID)

	require.Len(t, snap.RecentNotes, 3)
	assert.Equal(t, []string{"n2", "n3", "n1"}, []string{snap.RecentNotes[0].ID, snap.RecentNotes[1].ID, snap.RecentNotes[2].ID})
	assert.Equal(t, 4, snap.Notes.Total)
	require.Len(t, snap.Notes.Recent, 2)
	assert.Equal(t, "n2", snap.Notes.Recent[0].ID)
}

func TestGreeting(t *testing.T) {
	day := func(hour int) time.Time { return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC) }
	tests := []struct {
		name                      string
		now                       time.Time
		pending, sessions, closed int
		want                      string
	}{
		{"morning one task", day(8), 1, 0, 0, "Good morning! Ready for a productive day? 1 task waiting for you."},
		{"morning clear", day(11), 0, 4, 4, "Good morning! Great news, no pending tasks today!"},
		{"afternoon sessions", day(12), 5, 2, 0, "Good afternoon! 2 focus sessions today. Keep it up!"},
		{"afternoon one session", day(16), 0, 1, 0, "Good afternoon! 1 focus session today. Keep it up!"},
		{"afternoon idle", day(14), 3, 0, 0, "Good afternoon! How about a focus session to boost your productivity?"},
		{"evening done", day(17), 0, 0, 3, "Good evening! Great day with 3 tasks completed!"},
		{"evening idle", day(23), 2, 1, 0, "Good evening! There's still time to wrap up a few tasks..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Greeting(tt.now, tt.pending, tt.sessions, tt.closed))
		})
	}
}

// The task counters always partition the total and never count done tasks
// as urgent or overdue.
func TestProperty_TaskStatsConsistent(t *testing.T) {
	statuses := []domain.Status{domain.StatusTodo, domain.StatusInProgress, domain.StatusDone}
	priorities := []domain.Priority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		tasks := make([]domain.Task, 0, n)
		open := 0
		for i := 0; i < n; i++ {
			status := rapid.SampledFrom(statuses).Draw(rt, "status")
			if status != domain.StatusDone {
				open++
			}
			tasks = append(tasks, domain.Task{
				Status:   status,
				Priority: rapid.SampledFrom(priorities).Draw(rt, "priority"),
				DueDate:  morning.Add(time.Duration(rapid.IntRange(-500, 500).Draw(rt, "due")) * time.Hour),
			})
		}

		stats := Compute(Input{Tasks: tasks}, morning).Tasks
		if stats.Total != n || stats.Completed+stats.Pending+stats.InProgress != n {
			rt.Fatalf("counters %+v do not partition %d tasks", stats, n)
		}
		if stats.Urgent > open || stats.Overdue > open {
			rt.Fatalf("counters %+v exceed %d open tasks", stats, open)
		}
	})
}
