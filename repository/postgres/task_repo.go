package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

const taskColumns = `id, creator, owners, title, description, module, category, tags, link, file_url,
	template_id, due_date, priority, status, parent_id, estimated_minutes, time_spent, pomodoro_count,
	reminders, comments, completed_at, deleted_at, last_viewed_at, created_at, updated_at`

// searchVector weights title, module, tags and description as A, B, C and D.
const searchVector = `setweight(to_tsvector('simple', coalesce($4, '')), 'A') ||
	setweight(to_tsvector('simple', coalesce($6, '')), 'B') ||
	setweight(to_tsvector('simple', array_to_string($8::text[], ' ')), 'C') ||
	setweight(to_tsvector('simple', coalesce($5, '')), 'D')`

const upsertTask = `
	INSERT INTO tasks (` + taskColumns + `, search)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		$19, $20, $21, $22, $23, COALESCE($24, NOW()), NOW(), ` + searchVector + `)
	ON CONFLICT (id) DO UPDATE
	SET owners = EXCLUDED.owners,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		module = EXCLUDED.module,
		category = EXCLUDED.category,
		tags = EXCLUDED.tags,
		link = EXCLUDED.link,
		file_url = EXCLUDED.file_url,
		template_id = EXCLUDED.template_id,
		due_date = EXCLUDED.due_date,
		priority = EXCLUDED.priority,
		status = EXCLUDED.status,
		parent_id = EXCLUDED.parent_id,
		estimated_minutes = EXCLUDED.estimated_minutes,
		time_spent = EXCLUDED.time_spent,
		pomodoro_count = EXCLUDED.pomodoro_count,
		reminders = EXCLUDED.reminders,
		comments = EXCLUDED.comments,
		completed_at = EXCLUDED.completed_at,
		deleted_at = EXCLUDED.deleted_at,
		last_viewed_at = EXCLUDED.last_viewed_at,
		search = EXCLUDED.search,
		updated_at = NOW()`

const (
	returningStamps = `
	RETURNING created_at, updated_at`

	// replayGuard only lets the update through while the stored row is at
	// the snapshot's base version. A NULL base never updates.
	replayGuard = `
	WHERE $25::timestamptz IS NOT NULL AND tasks.updated_at = $25::timestamptz`
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	where := repository.BuildTaskWhere(q, Dialect)
	order, orderArgs := repository.OrderBy(q, Dialect, len(where.Args)+1)
	args := append(where.Args, orderArgs...)
	args = append(args, repository.ClampLimit(q.Limit), q.Offset)

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns, where.Clause, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
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

	query := `
	INSERT INTO tasks (` + taskColumns + `, search)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		$19, $20, $21, $22, $23, COALESCE($24, NOW()), NOW(), ` + searchVector + `)
	RETURNING created_at, updated_at
	`

	args, err := taskArgs(task)
	if err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, writeError("insert task", err)
	}
	return task, nil
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	if err := r.pool.QueryRow(ctx, upsertTask+returningStamps, args...).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return writeError("save task "+task.ID, err)
	}
	return nil
}

func (r *taskRepository) Replay(ctx context.Context, task *domain.Task, base time.Time) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	args = append(args, nullTime(base))

	err = r.pool.QueryRow(ctx, upsertTask+replayGuard+returningStamps, args...).Scan(&task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrStaleWrite
	}
	if err != nil {
		return writeError("replay task "+task.ID, err)
	}
	return nil
}

func (r *taskRepository) Modules(ctx context.Context, owner string) ([]string, error) {
	const query = `
	SELECT DISTINCT module
	FROM tasks
	WHERE $1 = ANY(owners) AND module <> '' AND status <> 'deleted'
	ORDER BY module
	`
	rows, err := r.pool.Query(ctx, query, owner)
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
	const query = `
	SELECT status, COUNT(*)
	FROM tasks
	WHERE $1 = ANY(owners) AND status <> 'deleted'
	GROUP BY status
	ORDER BY status
	`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	counts := []repository.StatusCount{}
	for rows.Next() {
		var sc repository.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func taskArgs(task *domain.Task) ([]interface{}, error) {
	reminders, err := marshalJSON(task.Reminders)
	if err != nil {
		return nil, err
	}
	comments, err := marshalJSON(task.Comments)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		task.ID,
		task.Creator,
		nonNil(task.Owners),
		task.Title,
		task.Description,
		task.Module,
		string(task.Category),
		nonNil(task.Tags),
		task.Link,
		task.FileURL,
		task.TemplateID,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		nullString(task.ParentID),
		task.EstimatedMinutes,
		task.TimeSpent,
		task.PomodoroCount,
		reminders,
		comments,
		task.CompletedAt,
		task.DeletedAt,
		task.LastViewedAt,
		nullTime(task.CreatedAt),
	}, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		parentID  *string
		reminders []byte
		comments  []byte
		completed *time.Time
		deleted   *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Creator,
		&task.Owners,
		&task.Title,
		&task.Description,
		&task.Module,
		&task.Category,
		&task.Tags,
		&task.Link,
		&task.FileURL,
		&task.TemplateID,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&parentID,
		&task.EstimatedMinutes,
		&task.TimeSpent,
		&task.PomodoroCount,
		&reminders,
		&comments,
		&completed,
		&deleted,
		&task.LastViewedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if parentID != nil {
		task.ParentID = *parentID
	}
	task.CompletedAt = completed
	task.DeletedAt = deleted
	if err := unmarshalJSON(reminders, &task.Reminders); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(comments, &task.Comments); err != nil {
		return nil, err
	}
	return &task, nil
}
