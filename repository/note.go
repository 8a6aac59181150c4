package repository

import (
	"context"

	"github.com/sorayamlj/FocusTache/domain"
)

type NoteRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]domain.Note, error)
}

type EventRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]domain.CalendarEvent, error)
}
