package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/internal/metrics"
	"github.com/sorayamlj/FocusTache/pkg/logger"
	"github.com/sorayamlj/FocusTache/repository"
	"github.com/sorayamlj/FocusTache/usecase"
)

// UseCase implements the task lifecycle. Every mutation loads the task,
// applies one transition rule, re-validates and saves the whole entity.
type UseCase struct {
	tasks     repository.TaskRepository
	buffer    usecase.OperationBuffer
	validator *domain.Validator
	logger    *zap.Logger
	now       func() time.Time
}

func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, validator *domain.Validator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = domain.NewValidator(nil)
	}
	return &UseCase{
		tasks:     tasks,
		buffer:    buffer,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Changes lists the editable descriptive and scheduling fields. Nil fields
// are left as they are.
type Changes struct {
	Title            *string
	Description      *string
	Module           *string
	Category         *domain.Category
	Tags             []string
	Link             *string
	FileURL          *string
	TemplateID       *string
	DueDate          *time.Time
	Priority         *domain.Priority
	ParentID         *string
	EstimatedMinutes *float64
}

// Apply copies the set fields onto t.
func (c Changes) Apply(t *domain.Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Module != nil {
		t.Module = *c.Module
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.Tags != nil {
		t.Tags = c.Tags
	}
	if c.Link != nil {
		t.Link = *c.Link
	}
	if c.FileURL != nil {
		t.FileURL = *c.FileURL
	}
	if c.TemplateID != nil {
		t.TemplateID = *c.TemplateID
	}
	if c.DueDate != nil {
		t.DueDate = *c.DueDate
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.ParentID != nil {
		t.ParentID = *c.ParentID
	}
	if c.EstimatedMinutes != nil {
		t.EstimatedMinutes = *c.EstimatedMinutes
	}
}

// Create validates and stores a new task. The caller becomes its creator
// and is always one of its owners.
func (uc *UseCase) Create(ctx context.Context, caller domain.Caller, task *domain.Task) (*domain.Task, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Creator = caller.UserID
	task.Normalize()
	if !task.HasOwner(caller.Email) {
		task.Owners = append([]string{caller.Email}, task.Owners...)
	}
	task.PrepareNew(uc.now())

	if err := uc.validator.Validate(task); err != nil {
		uc.record("create", err)
		return nil, err
	}
	if err := uc.checkParent(ctx, task); err != nil {
		uc.record("create", err)
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task, err) {
			return task, nil
		}
		uc.record("create", err)
		return nil, err
	}
	uc.record("create", nil)
	return created, nil
}

// Get returns one task the caller owns. Soft-deleted tasks are reported as
// not found unless includeDeleted is set.
func (uc *UseCase) Get(ctx context.Context, caller domain.Caller, id string, includeDeleted bool) (*domain.Task, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.tasks.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if !task.HasOwner(caller.Email) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// List returns the caller's tasks matching query.
func (uc *UseCase) List(ctx context.Context, caller domain.Caller, query repository.TaskQuery) ([]domain.Task, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	query.Owner = caller.Email
	return uc.list(ctx, query)
}

// Update edits descriptive and scheduling fields.
func (uc *UseCase) Update(ctx context.Context, caller domain.Caller, id string, changes Changes) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, false, "update", func(t *domain.Task, now time.Time) bool {
		changes.Apply(t)
		t.Normalize()
		t.Touch(now)
		return true
	})
}

// UpdateStatus moves the task to status, keeping CompletedAt in lockstep.
// Moving to deleted goes through SoftDelete so DeletedAt is stamped too.
func (uc *UseCase) UpdateStatus(ctx context.Context, caller domain.Caller, id string, status domain.Status) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "task validation failed", &domain.ValidationError{
			Violations: []domain.Violation{{Field: "status", Message: "unknown status " + string(status)}},
		})
	}
	if status == domain.StatusDeleted {
		return uc.SoftDelete(ctx, caller, id)
	}
	return uc.mutate(ctx, caller, id, false, "update_status", func(t *domain.Task, now time.Time) bool {
		t.ApplyStatus(status, now)
		return true
	})
}

// SoftDelete marks the task deleted. Calling it on a deleted task re-stamps DeletedAt.
func (uc *UseCase) SoftDelete(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, true, "soft_delete", func(t *domain.Task, now time.Time) bool {
		t.SoftDelete(now)
		return true
	})
}

// Restore returns a deleted task to todo. Other tasks are returned unchanged
// without a write.
func (uc *UseCase) Restore(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, true, "restore", func(t *domain.Task, now time.Time) bool {
		return t.Restore(now)
	})
}

// AddComment appends a comment authored by the caller.
func (uc *UseCase) AddComment(ctx context.Context, caller domain.Caller, id, message string) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, false, "add_comment", func(t *domain.Task, now time.Time) bool {
		t.AddComment(caller.Email, message, now)
		return true
	})
}

// AddReminder appends a reminder. Its delivery is handled elsewhere.
func (uc *UseCase) AddReminder(ctx context.Context, caller domain.Caller, id string, date time.Time, message string) (*domain.Task, error) {
	if date.IsZero() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "task validation failed", &domain.ValidationError{
			Violations: []domain.Violation{{Field: "reminders.date", Message: "reminder date is required"}},
		})
	}
	return uc.mutate(ctx, caller, id, false, "add_reminder", func(t *domain.Task, now time.Time) bool {
		t.AddReminder(date, message, now)
		return true
	})
}

// AddTimeSpent adds tracked seconds. Non-positive durations are a no-op.
func (uc *UseCase) AddTimeSpent(ctx context.Context, caller domain.Caller, id string, seconds float64) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, false, "add_time_spent", func(t *domain.Task, now time.Time) bool {
		return t.AddTimeSpent(seconds, now)
	})
}

func (uc *UseCase) IncrementPomodoro(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, false, "increment_pomodoro", func(t *domain.Task, now time.Time) bool {
		t.IncrementPomodoro(now)
		return true
	})
}

// ShareWith grants email access to the task. Sharing with an existing owner
// is a no-op.
func (uc *UseCase) ShareWith(ctx context.Context, caller domain.Caller, id, email string) (*domain.Task, error) {
	return uc.mutate(ctx, caller, id, false, "share", func(t *domain.Task, now time.Time) bool {
		return t.ShareWith(email, now)
	})
}

// FindActive returns the owner's todo and in-progress tasks, soonest due first.
func (uc *UseCase) FindActive(ctx context.Context, owner string) ([]domain.Task, error) {
	return uc.list(ctx, repository.TaskQuery{
		Owner:    owner,
		Statuses: []domain.Status{domain.StatusTodo, domain.StatusInProgress},
		Sort:     repository.SortDueAsc,
		Limit:    repository.MaxLimit,
	})
}

// FindOverdue returns the owner's unfinished tasks whose due date has passed.
func (uc *UseCase) FindOverdue(ctx context.Context, owner string) ([]domain.Task, error) {
	now := uc.now()
	return uc.list(ctx, repository.TaskQuery{
		Owner:         owner,
		ExcludeStatus: domain.StatusDone,
		DueBefore:     &now,
		Sort:          repository.SortDueAsc,
		Limit:         repository.MaxLimit,
	})
}

// FindByModule matches module case-insensitively as a substring.
func (uc *UseCase) FindByModule(ctx context.Context, owner, module string) ([]domain.Task, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return []domain.Task{}, nil
	}
	return uc.list(ctx, repository.TaskQuery{
		Owner:          owner,
		ModuleContains: module,
		Sort:           repository.SortDueAsc,
		Limit:          repository.MaxLimit,
	})
}

// Search ranks the owner's tasks by text relevance: title matches weigh
// most, then module, tags and description.
func (uc *UseCase) Search(ctx context.Context, owner, text string, limit int) ([]domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Task{}, nil
	}
	return uc.list(ctx, repository.TaskQuery{
		Owner:  owner,
		Search: text,
		Sort:   repository.SortRelevance,
		Limit:  limit,
	})
}

// GetModules returns the distinct non-empty modules of the owner's tasks.
func (uc *UseCase) GetModules(ctx context.Context, owner string) ([]string, error) {
	return uc.tasks.Modules(ctx, owner)
}

// GetStats counts the owner's non-deleted tasks per status.
func (uc *UseCase) GetStats(ctx context.Context, owner string) ([]repository.StatusCount, error) {
	return uc.tasks.CountByStatus(ctx, owner)
}

func (uc *UseCase) list(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// checkParent rejects a parent_id that names no stored task.
func (uc *UseCase) checkParent(ctx context.Context, task *domain.Task) error {
	if task.ParentID == "" {
		return nil
	}
	_, err := uc.tasks.GetByID(ctx, task.ParentID, true)
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return domain.MissingParent()
	}
	return err
}

// mutate loads the task, checks ownership and applies fn. Tasks the caller
// does not own are reported as not found, as in Get. When fn reports
// no change the task is returned as loaded and nothing is written.
func (uc *UseCase) mutate(
	ctx context.Context,
	caller domain.Caller,
	id string,
	includeDeleted bool,
	operation string,
	fn func(t *domain.Task, now time.Time) bool,
) (*domain.Task, error) {
	if !caller.Valid() {
		return nil, domain.ErrUnauthorized
	}

	task, err := uc.tasks.GetByID(ctx, id, includeDeleted)
	if err != nil {
		uc.record(operation, err)
		return nil, err
	}
	if !task.HasOwner(caller.Email) {
		uc.record(operation, domain.ErrTaskNotFound)
		return nil, domain.ErrTaskNotFound
	}

	parent := task.ParentID
	if !fn(task, uc.now()) {
		metrics.TaskOperations.WithLabelValues(operation, "noop").Inc()
		return task, nil
	}

	if err := uc.validator.Validate(task); err != nil {
		uc.record(operation, err)
		return nil, err
	}
	if task.ParentID != parent {
		if err := uc.checkParent(ctx, task); err != nil {
			uc.record(operation, err)
			return nil, err
		}
	}

	if err := uc.tasks.Save(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationSave, task, err) {
			return task, nil
		}
		uc.record(operation, err)
		return nil, err
	}
	uc.record(operation, nil)
	return task, nil
}

func (uc *UseCase) record(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.TaskOperations.WithLabelValues(operation, result).Inc()
}

// shouldBuffer hands a failed write to the local buffer. Only writes the
// store reported as unavailable are buffered; every other failure is final
// and goes back to the caller.
func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task, cause error) bool {
	if uc.buffer == nil || !domain.IsDomainError(cause, domain.ErrCodeUnavailable) {
		return false
	}
	log := logger.WithRequestID(ctx, uc.logger)
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		log.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	metrics.TaskOperations.WithLabelValues(operation, "buffered").Inc()
	metrics.BufferedOperations.WithLabelValues(operation).Inc()
	log.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}
