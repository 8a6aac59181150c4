package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorayamlj/FocusTache/domain"
	sqliteinfra "github.com/sorayamlj/FocusTache/internal/infrastructure/sqlite"
	"github.com/sorayamlj/FocusTache/repository"
	sqliterepo "github.com/sorayamlj/FocusTache/repository/sqlite"
)

var (
	testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	ana     = domain.Caller{UserID: "u-ana", Email: "ana@gmail.com"}
	leo     = domain.Caller{UserID: "u-leo", Email: "leo@gmail.com"}
)

// countingRepo counts writes and can be told to fail them.
type countingRepo struct {
	repository.TaskRepository
	saves   int
	saveErr error
}

func (r *countingRepo) Save(ctx context.Context, task *domain.Task) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.TaskRepository.Save(ctx, task)
}

type recordingBuffer struct {
	operations []string
}

func (b *recordingBuffer) BufferTask(_ context.Context, operation string, _ *domain.Task) error {
	b.operations = append(b.operations, operation)
	return nil
}

func newTestUseCase(t *testing.T) (*UseCase, *countingRepo) {
	t.Helper()
	db, err := sqliteinfra.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &countingRepo{TaskRepository: sqliterepo.NewTaskRepository(db)}
	uc := New(repo, nil, domain.NewValidator(nil), nil)
	uc.now = func() time.Time { return testNow }
	return uc, repo
}

func newTask(title string, due time.Time) *domain.Task {
	return &domain.Task{Title: title, Module: "Physics", DueDate: due}
}

func createTask(t *testing.T, uc *UseCase, title string, due time.Time) *domain.Task {
	t.Helper()
	created, err := uc.Create(context.Background(), ana, newTask(title, due))
	require.NoError(t, err)
	return created
}

func TestCreate_AppliesDefaults(t *testing.T) {
	uc, _ := newTestUseCase(t)
	stamp := testNow
	input := newTask(" Lab ", testNow.Add(24*time.Hour))
	input.Status = domain.StatusDone
	input.CompletedAt = &stamp
	input.Owners = []string{"leo@gmail.com"}

	created, err := uc.Create(context.Background(), ana, input)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Lab", created.Title)
	assert.Equal(t, "u-ana", created.Creator)
	assert.Equal(t, []string{"ana@gmail.com", "leo@gmail.com"}, created.Owners)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, domain.CategoryOther, created.Category)
	assert.Nil(t, created.CompletedAt)

	got, err := uc.Get(context.Background(), leo, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreate_InvalidOwnerPersistsNothing(t *testing.T) {
	uc, _ := newTestUseCase(t)
	input := newTask("Lab", testNow)
	input.Owners = []string{"leo@outlook.com"}

	_, err := uc.Create(context.Background(), ana, input)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	tasks, err := uc.List(context.Background(), ana, repository.TaskQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreate_RequiresCaller(t *testing.T) {
	uc, _ := newTestUseCase(t)
	_, err := uc.Create(context.Background(), domain.Caller{}, newTask("Lab", testNow))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOwnership(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Private", testNow.Add(time.Hour))

	_, err := uc.Get(ctx, leo, task.ID, false)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = uc.AddComment(ctx, leo, task.ID, "hi")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = uc.IncrementPomodoro(ctx, domain.Caller{}, task.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Zero(t, repo.saves)
}

func TestUpdateStatus_CompletedAtLockstep(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Essay", testNow.Add(time.Hour))

	done, err := uc.UpdateStatus(ctx, ana, task.ID, domain.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow, *done.CompletedAt)

	reopened, err := uc.UpdateStatus(ctx, ana, task.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	stored, err := uc.Get(ctx, ana, task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
	assert.Nil(t, stored.CompletedAt)

	_, err = uc.UpdateStatus(ctx, ana, task.ID, "archived")
	_, isValidation := domain.ValidationDetails(err)
	assert.True(t, isValidation)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Essay", testNow.Add(time.Hour))

	deleted, err := uc.UpdateStatus(ctx, ana, task.ID, domain.StatusDeleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleted, deleted.Status)
	require.NotNil(t, deleted.DeletedAt)

	_, err = uc.Get(ctx, ana, task.ID, false)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	listed, err := uc.List(ctx, ana, repository.TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	restored, err := uc.Restore(ctx, ana, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, restored.Status)
	assert.Nil(t, restored.DeletedAt)

	saves := repo.saves
	again, err := uc.Restore(ctx, ana, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, again.Status)
	assert.Equal(t, saves, repo.saves)
}

func TestAddTimeSpent(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Reading", testNow.Add(time.Hour))

	unchanged, err := uc.AddTimeSpent(ctx, ana, task.ID, -5)
	require.NoError(t, err)
	assert.Zero(t, unchanged.TimeSpent)
	assert.Zero(t, repo.saves)

	updated, err := uc.AddTimeSpent(ctx, ana, task.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, float64(1500), updated.TimeSpent)
	assert.Equal(t, 1, repo.saves)
}

func TestShareWith_Idempotent(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Group project", testNow.Add(time.Hour))

	_, err := uc.ShareWith(ctx, ana, task.ID, "leo@gmail.com")
	require.NoError(t, err)
	shared, err := uc.ShareWith(ctx, ana, task.ID, " leo@gmail.com ")
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@gmail.com", "leo@gmail.com"}, shared.Owners)
	assert.Equal(t, 1, repo.saves)

	_, err = uc.ShareWith(ctx, ana, task.ID, "eve@outlook.com")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, 1, repo.saves)
}

func TestUpdate_AppliesChanges(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Draft", testNow.Add(time.Hour))

	title := "  Final draft "
	priority := domain.PriorityHigh
	updated, err := uc.Update(ctx, ana, task.ID, Changes{Title: &title, Priority: &priority, Tags: []string{"essay"}})
	require.NoError(t, err)
	assert.Equal(t, "Final draft", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, []string{"essay"}, updated.Tags)
	assert.Equal(t, "Physics", updated.Module)

	empty := ""
	_, err = uc.Update(ctx, ana, task.ID, Changes{Module: &empty})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCommentsRemindersAndPomodoros(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Revision", testNow.Add(time.Hour))

	_, err := uc.AddComment(ctx, ana, task.ID, "chapter 4 first")
	require.NoError(t, err)
	_, err = uc.AddReminder(ctx, ana, task.ID, testNow.Add(30*time.Minute), "start")
	require.NoError(t, err)
	_, err = uc.IncrementPomodoro(ctx, ana, task.ID)
	require.NoError(t, err)

	_, err = uc.AddReminder(ctx, ana, task.ID, time.Time{}, "never")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	stored, err := uc.Get(ctx, ana, task.ID, false)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, "ana@gmail.com", stored.Comments[0].Author)
	require.Len(t, stored.Reminders, 1)
	assert.Equal(t, "start", stored.Reminders[0].Message)
	assert.Equal(t, 1, stored.PomodoroCount)
}

func TestFinders(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	overdue := createTask(t, uc, "Overdue lab", testNow.Add(-24*time.Hour))
	upcoming := createTask(t, uc, "Upcoming quiz", testNow.Add(24*time.Hour))
	finished := createTask(t, uc, "Finished sheet", testNow.Add(-48*time.Hour))
	_, err := uc.UpdateStatus(ctx, ana, finished.ID, domain.StatusDone)
	require.NoError(t, err)

	found, err := uc.FindOverdue(ctx, ana.Email)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, overdue.ID, found[0].ID)

	active, err := uc.FindActive(ctx, ana.Email)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, overdue.ID, active[0].ID)
	assert.Equal(t, upcoming.ID, active[1].ID)

	byModule, err := uc.FindByModule(ctx, ana.Email, "PHYS")
	require.NoError(t, err)
	assert.Len(t, byModule, 3)

	none, err := uc.FindByModule(ctx, ana.Email, "  ")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	results, err := uc.Search(ctx, ana.Email, "quiz", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, upcoming.ID, results[0].ID)

	modules, err := uc.GetModules(ctx, ana.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics"}, modules)

	stats, err := uc.GetStats(ctx, ana.Email)
	require.NoError(t, err)
	assert.Equal(t, []repository.StatusCount{
		{Status: domain.StatusDone, Count: 1},
		{Status: domain.StatusTodo, Count: 2},
	}, stats)
}

func TestSaveFailureIsBuffered(t *testing.T) {
	uc, repo := newTestUseCase(t)
	buf := &recordingBuffer{}
	uc.buffer = buf
	ctx := context.Background()
	task := createTask(t, uc, "Offline", testNow.Add(time.Hour))

	repo.saveErr = domain.StoreUnavailable(errors.New("connection refused"))
	updated, err := uc.IncrementPomodoro(ctx, ana, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.PomodoroCount)
	assert.Equal(t, []string{"save"}, buf.operations)
}

func TestFinalSaveFailuresAreReturned(t *testing.T) {
	uc, repo := newTestUseCase(t)
	buf := &recordingBuffer{}
	uc.buffer = buf
	ctx := context.Background()
	task := createTask(t, uc, "Online", testNow.Add(time.Hour))

	for _, cause := range []error{
		domain.StoreConflict(errors.New("UNIQUE constraint failed")),
		domain.MissingParent(),
		errors.New("database disk image is malformed"),
	} {
		repo.saveErr = cause
		_, err := uc.IncrementPomodoro(ctx, ana, task.ID)
		assert.ErrorIs(t, err, cause)
	}
	assert.Empty(t, buf.operations)

	repo.saveErr = nil
	stored, err := uc.Get(ctx, ana, task.ID, false)
	require.NoError(t, err)
	assert.Zero(t, stored.PomodoroCount)
}

func TestCreate_RejectsMissingParent(t *testing.T) {
	uc, _ := newTestUseCase(t)
	buf := &recordingBuffer{}
	uc.buffer = buf
	ctx := context.Background()

	orphan := newTask("Orphan", testNow.Add(time.Hour))
	orphan.ParentID = "no-such-task"
	_, err := uc.Create(ctx, ana, orphan)
	require.Error(t, err)
	details, ok := domain.ValidationDetails(err)
	require.True(t, ok)
	assert.Equal(t, "parent_id", details.Violations[0].Field)
	assert.Empty(t, buf.operations)

	tasks, err := uc.List(ctx, ana, repository.TaskQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	parent := createTask(t, uc, "Project", testNow.Add(48*time.Hour))
	child := newTask("Chapter", testNow.Add(time.Hour))
	child.ParentID = parent.ID
	created, err := uc.Create(ctx, ana, child)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, created.ParentID)
}

func TestUpdate_RejectsMissingParent(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	task := createTask(t, uc, "Chapter", testNow.Add(time.Hour))

	missing := "no-such-task"
	_, err := uc.Update(ctx, ana, task.ID, Changes{ParentID: &missing})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Zero(t, repo.saves)
}
