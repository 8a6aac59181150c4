package dashboard

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/sorayamlj/FocusTache/domain"
)

const (
	recentTaskLimit  = 5
	recentNoteLimit  = 3
	noteStatsRecent  = 2
	week             = 7 * 24 * time.Hour
	morningEndHour   = 12
	afternoonEndHour = 17
)

// Input holds the four collections a snapshot is computed from. A source
// that could not be read arrives as an empty list.
type Input struct {
	Tasks    []domain.Task
	Sessions []domain.FocusSession
	Notes    []domain.Note
	Events   []domain.CalendarEvent
}

type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	Urgent         int `json:"urgent"`
	Overdue        int `json:"overdue"`
	CompletedToday int `json:"completed_today"`
}

type SessionStats struct {
	Today        int     `json:"today"`
	TodayMinutes float64 `json:"today_minutes"`
	ThisWeek     int     `json:"this_week"`
	TotalMinutes float64 `json:"total_minutes"`
}

type NoteStats struct {
	Total  int           `json:"total"`
	Recent []domain.Note `json:"recent"`
}

type CalendarStats struct {
	TodayEvents int `json:"today_events"`
	Upcoming    int `json:"upcoming"`
	WeekEvents  int `json:"week_events"`
}

// Snapshot is a point-in-time summary. It is never updated in place.
type Snapshot struct {
	Tasks       TaskStats              `json:"tasks"`
	Sessions    SessionStats           `json:"sessions"`
	Notes       NoteStats              `json:"notes"`
	Calendar    CalendarStats          `json:"calendar"`
	RecentTasks []domain.TaskView      `json:"recent_tasks"`
	RecentNotes []domain.Note          `json:"recent_notes"`
	TodayEvents []domain.CalendarEvent `json:"today_events"`
	Greeting    string                 `json:"greeting"`
	Tip         string                 `json:"tip"`
	Degraded    []string               `json:"degraded"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Compute derives a snapshot from in at instant now. Calendar days are
// taken in now's location. The inputs are not modified.
func Compute(in Input, now time.Time) Snapshot {
	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24 * time.Hour)

	snap := Snapshot{
		Tasks:       taskStats(in.Tasks, now, dayStart, dayEnd),
		Sessions:    sessionStats(in.Sessions, now, dayStart, dayEnd),
		Notes:       NoteStats{Total: len(in.Notes), Recent: recentNotes(in.Notes, noteStatsRecent)},
		RecentTasks: recentTasks(in.Tasks, now, recentTaskLimit),
		RecentNotes: recentNotes(in.Notes, recentNoteLimit),
		TodayEvents: []domain.CalendarEvent{},
		Degraded:    []string{},
		GeneratedAt: now,
	}

	for _, e := range in.Events {
		when := e.When()
		if when.IsZero() {
			continue
		}
		if inWindow(when, dayStart, dayEnd) {
			snap.Calendar.TodayEvents++
			snap.TodayEvents = append(snap.TodayEvents, e)
		}
		if when.After(now) && !when.After(now.Add(week)) {
			snap.Calendar.Upcoming++
		}
		if !when.Before(now.Add(-week)) && !when.After(now.Add(week)) {
			snap.Calendar.WeekEvents++
		}
	}

	snap.Greeting = Greeting(now, snap.Tasks.Pending, snap.Sessions.Today, snap.Tasks.CompletedToday)
	snap.Tip = Tip()
	return snap
}

func taskStats(tasks []domain.Task, now, dayStart, dayEnd time.Time) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case domain.StatusDone:
			stats.Completed++
			if t.CompletedAt != nil && inWindow(*t.CompletedAt, dayStart, dayEnd) {
				stats.CompletedToday++
			}
		case domain.StatusTodo:
			stats.Pending++
		case domain.StatusInProgress:
			stats.InProgress++
		}
		if t.Status == domain.StatusDone {
			continue
		}
		if t.Priority == domain.PriorityHigh {
			stats.Urgent++
		}
		if !t.DueDate.IsZero() && t.DueDate.Before(now) {
			stats.Overdue++
		}
	}
	return stats
}

func sessionStats(sessions []domain.FocusSession, now, dayStart, dayEnd time.Time) SessionStats {
	var stats SessionStats
	weekStart := now.Add(-week)
	var todaySeconds, totalSeconds float64
	for _, s := range sessions {
		totalSeconds += s.ElapsedSeconds
		ts := s.Timestamp()
		if ts.IsZero() {
			continue
		}
		if inWindow(ts, dayStart, dayEnd) {
			stats.Today++
			todaySeconds += s.ElapsedSeconds
		}
		if !ts.Before(weekStart) {
			stats.ThisWeek++
		}
	}
	stats.TodayMinutes = todaySeconds / 60
	stats.TotalMinutes = totalSeconds / 60
	return stats
}

func recentTasks(tasks []domain.Task, now time.Time, limit int) []domain.TaskView {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b domain.Task) int {
		return lastChange(b.UpdatedAt, b.CreatedAt).Compare(lastChange(a.UpdatedAt, a.CreatedAt))
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return domain.NewTaskViews(sorted, now)
}

func recentNotes(notes []domain.Note, limit int) []domain.Note {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b domain.Note) int {
		return b.Touched().Compare(a.Touched())
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []domain.Note{}
	}
	return sorted
}

func lastChange(updated, created time.Time) time.Time {
	if !updated.IsZero() {
		return updated
	}
	return created
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// Greeting picks the contextual message for the time of day.
func Greeting(now time.Time, pending, sessionsToday, completedToday int) string {
	switch hour := now.Hour(); {
	case hour < morningEndHour:
		if pending > 0 {
			return fmt.Sprintf("Good morning! Ready for a productive day? %d %s waiting for you.", pending, plural(pending, "task"))
		}
		return "Good morning! Great news, no pending tasks today!"
	case hour < afternoonEndHour:
		if sessionsToday > 0 {
			return fmt.Sprintf("Good afternoon! %d focus %s today. Keep it up!", sessionsToday, plural(sessionsToday, "session"))
		}
		return "Good afternoon! How about a focus session to boost your productivity?"
	default:
		if completedToday > 0 {
			return fmt.Sprintf("Good evening! Great day with %d %s completed!", completedToday, plural(completedToday, "task"))
		}
		return "Good evening! There's still time to wrap up a few tasks..."
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

var tips = []string{
	"Use the Pomodoro technique: 25 minutes of focus, then a 5 minute break.",
	"Write down your ideas in notes before they slip away.",
	"Plan tomorrow's work in the calendar before the day ends.",
	"Start with the most important task while your energy is high.",
	"Set a clear goal for every focus session.",
	"Take regular breaks to keep your concentration sharp.",
}

// Tip returns one rotating productivity tip.
func Tip() string {
	return tips[rand.IntN(len(tips))]
}
