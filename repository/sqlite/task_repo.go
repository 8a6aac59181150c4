package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

const taskColumns = `id, creator, owners, title, description, module, category, tags, link, file_url,
	template_id, due_date, priority, status, parent_id, estimated_minutes, time_spent, pomodoro_count,
	reminders, comments, completed_at, deleted_at, last_viewed_at, created_at, updated_at`

const upsertTask = `
INSERT INTO tasks (` + taskColumns + `)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13, ?14, ?15, ?16, ?17, ?18,
	?19, ?20, ?21, ?22, ?23, ?24, ?25)
ON CONFLICT (id) DO UPDATE
SET owners = excluded.owners,
	title = excluded.title,
	description = excluded.description,
	module = excluded.module,
	category = excluded.category,
	tags = excluded.tags,
	link = excluded.link,
	file_url = excluded.file_url,
	template_id = excluded.template_id,
	due_date = excluded.due_date,
	priority = excluded.priority,
	status = excluded.status,
	parent_id = excluded.parent_id,
	estimated_minutes = excluded.estimated_minutes,
	time_spent = excluded.time_spent,
	pomodoro_count = excluded.pomodoro_count,
	reminders = excluded.reminders,
	comments = excluded.comments,
	completed_at = excluded.completed_at,
	deleted_at = excluded.deleted_at,
	last_viewed_at = excluded.last_viewed_at,
	updated_at = excluded.updated_at`

const (
	returningStamps = `
RETURNING created_at, updated_at`

	// replayGuard only lets the update through while the stored row is at
	// the snapshot's base version. A NULL base never updates.
	replayGuard = `
WHERE ?26 IS NOT NULL AND tasks.updated_at = ?26`
)

type taskRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskRepository returns a TaskRepository stored in SQLite.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db, now: time.Now}
}

func (r *taskRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	return scanTask(r.db.QueryRowContext(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	where := repository.BuildTaskWhere(q, Dialect)
	order, orderArgs := repository.OrderBy(q, Dialect, len(where.Args)+1)
	args := append(where.Args, orderArgs...)
	args = append(args, repository.ClampLimit(q.Limit), q.Offset)

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT ?%d OFFSET ?%d`,
		taskColumns, where.Clause, order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.upsert(ctx, task, false, time.Time{}); err != nil {
		return nil, writeError("insert task", err)
	}
	return task, nil
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := r.upsert(ctx, task, false, time.Time{}); err != nil {
		return writeError("save task "+task.ID, err)
	}
	return nil
}

func (r *taskRepository) Replay(ctx context.Context, task *domain.Task, base time.Time) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	err := r.upsert(ctx, task, true, base)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrStaleWrite
	}
	if err != nil {
		return writeError("replay task "+task.ID, err)
	}
	return nil
}

func (r *taskRepository) Modules(ctx context.Context, owner string) ([]string, error) {
	query := `SELECT DISTINCT module FROM tasks
	WHERE ` + Dialect.HasOwner("?1") + ` AND module <> '' AND status <> 'deleted'
	ORDER BY module`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	modules := []string{}
	for rows.Next() {
		var module string
		if err := rows.Scan(&module); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

func (r *taskRepository) CountByStatus(ctx context.Context, owner string) ([]repository.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM tasks
	WHERE ` + Dialect.HasOwner("?1") + ` AND status <> 'deleted'
	GROUP BY status
	ORDER BY status`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	counts := []repository.StatusCount{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts = append(counts, repository.StatusCount{Status: domain.Status(status), Count: count})
	}
	return counts, rows.Err()
}

// upsert writes task in full. When guarded, an existing row is only replaced
// while its updated_at equals base, and sql.ErrNoRows reports a skipped write.
func (r *taskRepository) upsert(ctx context.Context, task *domain.Task, guarded bool, base time.Time) error {
	now := r.now()
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	encoded := make([][]byte, 4)
	for i, v := range []interface{}{nonNil(task.Owners), nonNil(task.Tags), task.Reminders, task.Comments} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json column: %w", err)
		}
		encoded[i] = b
	}
	reminders, comments := string(encoded[2]), string(encoded[3])
	if task.Reminders == nil {
		reminders = "[]"
	}
	if task.Comments == nil {
		comments = "[]"
	}

	var parentID interface{}
	if task.ParentID != "" {
		parentID = task.ParentID
	}

	args := []interface{}{
		task.ID,
		task.Creator,
		string(encoded[0]),
		task.Title,
		task.Description,
		task.Module,
		string(task.Category),
		string(encoded[1]),
		task.Link,
		task.FileURL,
		task.TemplateID,
		formatTime(task.DueDate),
		string(task.Priority),
		string(task.Status),
		parentID,
		task.EstimatedMinutes,
		task.TimeSpent,
		task.PomodoroCount,
		reminders,
		comments,
		formatNullTime(task.CompletedAt),
		formatNullTime(task.DeletedAt),
		formatTime(task.LastViewedAt),
		formatTime(createdAt),
		formatTime(now),
	}
	query := upsertTask
	if guarded {
		var version interface{}
		if !base.IsZero() {
			version = formatTime(base)
		}
		args = append(args, version)
		query += replayGuard
	}

	var created, updated string
	if err := r.db.QueryRowContext(ctx, query+returningStamps, args...).Scan(&created, &updated); err != nil {
		return err
	}

	var err error
	if task.CreatedAt, err = parseTime(created); err != nil {
		return err
	}
	task.UpdatedAt, err = parseTime(updated)
	return err
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		owners, tags, reminders, comments         string
		category, priority, status                string
		dueDate, lastViewed, createdAt, updatedAt string
		parentID, completedAt, deletedAt          sql.NullString
	)

	if err := row.Scan(
		&task.ID,
		&task.Creator,
		&owners,
		&task.Title,
		&task.Description,
		&task.Module,
		&category,
		&tags,
		&task.Link,
		&task.FileURL,
		&task.TemplateID,
		&dueDate,
		&priority,
		&status,
		&parentID,
		&task.EstimatedMinutes,
		&task.TimeSpent,
		&task.PomodoroCount,
		&reminders,
		&comments,
		&completedAt,
		&deletedAt,
		&lastViewed,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Category = domain.Category(category)
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	task.ParentID = parentID.String

	for _, col := range []struct {
		raw  string
		dest interface{}
	}{
		{owners, &task.Owners},
		{tags, &task.Tags},
		{reminders, &task.Reminders},
		{comments, &task.Comments},
	} {
		if col.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("decode json column: %w", err)
		}
	}
	if len(task.Tags) == 0 {
		task.Tags = nil
	}
	if len(task.Reminders) == 0 {
		task.Reminders = nil
	}
	if len(task.Comments) == 0 {
		task.Comments = nil
	}

	var err error
	if task.DueDate, err = parseTime(dueDate); err != nil {
		return nil, err
	}
	if task.LastViewedAt, err = parseTime(lastViewed); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if task.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	if task.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
