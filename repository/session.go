package repository

import (
	"context"
	"time"

	"github.com/sorayamlj/FocusTache/domain"
)

type FocusSessionRepository interface {
	// ListByOwner returns the owner's sessions recorded at or after since,
	// most recent first. A zero since returns every session.
	ListByOwner(ctx context.Context, owner string, since time.Time) ([]domain.FocusSession, error)
	Record(ctx context.Context, session *domain.FocusSession) error
}
