package repository

import (
	"context"
	"time"

	"github.com/sorayamlj/FocusTache/domain"
)

// TaskSort selects the ordering of a task listing.
type TaskSort string

const (
	SortDueAsc      TaskSort = "due_asc"
	SortCreatedDesc TaskSort = "created_desc"
	SortUpdatedDesc TaskSort = "updated_desc"
	SortRelevance   TaskSort = "relevance"
)

// TaskQuery is the filter for every task read. Soft-deleted tasks are hidden
// unless the query names statuses explicitly or sets IncludeDeleted.
type TaskQuery struct {
	Owner          string
	Creator        string
	Statuses       []domain.Status
	ExcludeStatus  domain.Status
	IncludeDeleted bool
	ModuleContains string
	DueBefore      *time.Time
	Search         string
	Sort           TaskSort
	Limit          int
	Offset         int
}

// HidesDeleted reports whether the default non-deleted filter applies.
func (q TaskQuery) HidesDeleted() bool {
	return !q.IncludeDeleted && len(q.Statuses) == 0
}

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Status domain.Status `json:"status"`
	Count  int           `json:"count"`
}

type TaskRepository interface {
	// GetByID returns domain.ErrTaskNotFound for unknown ids and, unless
	// includeDeleted is set, for soft-deleted tasks.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.Task, error)
	List(ctx context.Context, query TaskQuery) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Save replaces the stored entity with task.
	Save(ctx context.Context, task *domain.Task) error
	// Replay writes a buffered snapshot only while the stored task is still
	// at version base (its updated_at). A zero base requires the task to be
	// absent. Otherwise it returns domain.ErrStaleWrite and writes nothing.
	Replay(ctx context.Context, task *domain.Task, base time.Time) error
	Modules(ctx context.Context, owner string) ([]string, error)
	CountByStatus(ctx context.Context, owner string) ([]StatusCount, error)
}

// ListAll pages through every task matching q, MaxLimit rows at a time.
// Limit and Offset of q are ignored.
func ListAll(ctx context.Context, repo TaskRepository, q TaskQuery) ([]domain.Task, error) {
	q.Limit = MaxLimit
	q.Offset = 0
	all := []domain.Task{}
	for {
		page, err := repo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxLimit {
			return all, nil
		}
		q.Offset += len(page)
	}
}
