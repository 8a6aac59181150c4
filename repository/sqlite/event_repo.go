package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository returns an EventRepository stored in SQLite.
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) ListByOwner(ctx context.Context, owner string) ([]domain.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, title, event_date FROM calendar_events
		 WHERE owner = ?1 ORDER BY event_date`, owner)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()

	events := []domain.CalendarEvent{}
	for rows.Next() {
		var (
			e    domain.CalendarEvent
			date sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Owner, &e.Title, &date); err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		if e.Date, err = parseNullTime(date); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
