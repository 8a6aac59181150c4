package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/internal/metrics"
	"github.com/sorayamlj/FocusTache/pkg/logger"
	"github.com/sorayamlj/FocusTache/repository"
)

// Source names, as reported in Snapshot.Degraded.
const (
	SourceTasks    = "tasks"
	SourceSessions = "sessions"
	SourceNotes    = "notes"
	SourceEvents   = "events"
)

// Source fetches the four collections a snapshot is built from.
type Source interface {
	Tasks(ctx context.Context, owner string) ([]domain.Task, error)
	Sessions(ctx context.Context, owner string) ([]domain.FocusSession, error)
	Notes(ctx context.Context, owner string) ([]domain.Note, error)
	Events(ctx context.Context, owner string) ([]domain.CalendarEvent, error)
}

// Service assembles dashboard snapshots.
type Service struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source. The location of the returned instants
// decides calendar-day boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSourceTimeout bounds every source fetch.
func WithSourceTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

func NewService(source Source, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:  source,
		timeout: 3 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// branch is the tagged outcome of one source fetch.
type branch struct {
	source string
	err    error
}

// Snapshot fetches the four sources concurrently and computes the snapshot
// once all of them have settled. A failing source contributes an empty list
// and is listed in Degraded; it never fails the snapshot.
func (s *Service) Snapshot(ctx context.Context, owner string) (Snapshot, error) {
	if owner == "" {
		return Snapshot{}, domain.ErrUnauthorized
	}
	started := time.Now()
	defer func() {
		metrics.DashboardDuration.Observe(time.Since(started).Seconds())
	}()

	var in Input
	results := make([]branch, 4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results[0] = s.fetch(gctx, SourceTasks, func(ctx context.Context) (err error) {
			in.Tasks, err = s.source.Tasks(ctx, owner)
			return err
		})
		return nil
	})
	g.Go(func() error {
		results[1] = s.fetch(gctx, SourceSessions, func(ctx context.Context) (err error) {
			in.Sessions, err = s.source.Sessions(ctx, owner)
			return err
		})
		return nil
	})
	g.Go(func() error {
		results[2] = s.fetch(gctx, SourceNotes, func(ctx context.Context) (err error) {
			in.Notes, err = s.source.Notes(ctx, owner)
			return err
		})
		return nil
	})
	g.Go(func() error {
		results[3] = s.fetch(gctx, SourceEvents, func(ctx context.Context) (err error) {
			in.Events, err = s.source.Events(ctx, owner)
			return err
		})
		return nil
	})
	_ = g.Wait()

	degraded := []string{}
	log := logger.WithRequestID(ctx, s.logger)
	for _, r := range results {
		if r.err == nil {
			continue
		}
		degraded = append(degraded, r.source)
		metrics.DashboardSourceFailures.WithLabelValues(r.source).Inc()
		log.Warn("dashboard source degraded to empty",
			zap.String("source", r.source),
			zap.Error(domain.SourceUnavailable(r.source, r.err)),
		)
		switch r.source {
		case SourceTasks:
			in.Tasks = nil
		case SourceSessions:
			in.Sessions = nil
		case SourceNotes:
			in.Notes = nil
		case SourceEvents:
			in.Events = nil
		}
	}

	snap := Compute(in, s.now())
	snap.Degraded = degraded
	return snap, nil
}

func (s *Service) fetch(ctx context.Context, source string, fn func(ctx context.Context) error) branch {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return branch{source: source, err: fn(ctx)}
}

// RepositorySource reads the dashboard collections straight from the stores.
type RepositorySource struct {
	TaskRepo    repository.TaskRepository
	SessionRepo repository.FocusSessionRepository
	NoteRepo    repository.NoteRepository
	EventRepo   repository.EventRepository
}

// Tasks reads every non-deleted task of owner; the statistics count all of them.
func (r RepositorySource) Tasks(ctx context.Context, owner string) ([]domain.Task, error) {
	return repository.ListAll(ctx, r.TaskRepo, repository.TaskQuery{
		Owner: owner,
		Sort:  repository.SortUpdatedDesc,
	})
}

func (r RepositorySource) Sessions(ctx context.Context, owner string) ([]domain.FocusSession, error) {
	return r.SessionRepo.ListByOwner(ctx, owner, time.Time{})
}

func (r RepositorySource) Notes(ctx context.Context, owner string) ([]domain.Note, error) {
	return r.NoteRepo.ListByOwner(ctx, owner)
}

func (r RepositorySource) Events(ctx context.Context, owner string) ([]domain.CalendarEvent, error) {
	return r.EventRepo.ListByOwner(ctx, owner)
}
