package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sorayamlj/FocusTache/domain"
)

const EntityTask = "task"

// Item is a task write that failed against the primary store and waits to
// be replayed.
type Item struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	// BaseVersion is the stored updated_at the snapshot was derived from;
	// nil when the task was never stored.
	BaseVersion *time.Time `json:"base_version,omitempty"`

	bucketKey []byte
}

// NewTaskItem snapshots task for a later replay of operation. The item id is
// the task id, so a newer snapshot of the same task supersedes an older one.
// The task's current UpdatedAt becomes the base version the replay is
// conditioned on.
func NewTaskItem(operation string, task *domain.Task) (Item, error) {
	if task == nil || task.ID == "" {
		return Item{}, domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return Item{}, err
	}
	var owner string
	if len(task.Owners) > 0 {
		owner = task.Owners[0]
	}
	item := Item{
		ID:        task.ID,
		Owner:     owner,
		Entity:    EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  2,
	}
	if !task.UpdatedAt.IsZero() {
		base := task.UpdatedAt
		item.BaseVersion = &base
	}
	return item, nil
}

// Base returns the version a replay requires; zero means the task must not
// exist yet.
func (i Item) Base() time.Time {
	if i.BaseVersion == nil {
		return time.Time{}
	}
	return *i.BaseVersion
}

// Task decodes the buffered task snapshot.
func (i Item) Task() (*domain.Task, error) {
	var task domain.Task
	if err := json.Unmarshal(i.Data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
