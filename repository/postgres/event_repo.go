package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed EventRepository.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) ListByOwner(ctx context.Context, owner string) ([]domain.CalendarEvent, error) {
	const query = `
	SELECT id, owner, title, event_date
	FROM calendar_events
	WHERE owner = $1
	ORDER BY event_date
	`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()

	events := []domain.CalendarEvent{}
	for rows.Next() {
		var e domain.CalendarEvent
		if err := rows.Scan(&e.ID, &e.Owner, &e.Title, &e.Date); err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
