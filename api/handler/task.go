package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/api/transport"
	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/pkg/httpcontext"
	"github.com/sorayamlj/FocusTache/repository"
	taskUC "github.com/sorayamlj/FocusTache/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc  *taskUC.UseCase
	now func() time.Time
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		now:         time.Now,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	query := repository.TaskQuery{
		IncludeDeleted: args.GetBool("include_deleted"),
		ModuleContains: strings.TrimSpace(string(args.Peek("module"))),
		Search:         strings.TrimSpace(string(args.Peek("q"))),
		Sort:           repository.TaskSort(args.Peek("sort")),
		Limit:          repository.ClampLimit(parseInt(string(args.Peek("limit")), repository.DefaultLimit)),
		Offset:         parseInt(string(args.Peek("offset")), 0),
	}
	for _, s := range strings.Split(string(args.Peek("status")), ",") {
		if s = strings.TrimSpace(s); s != "" {
			query.Statuses = append(query.Statuses, domain.Status(s))
		}
	}
	if query.Search != "" && query.Sort == "" {
		query.Sort = repository.SortRelevance
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, caller, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, tasks, query.Limit, query.Offset)
}

// @Summary Search tasks by relevance
// @Tags tasks
// @Router /api/v1/tasks/search [get]
func (h *TaskHandler) SearchTasks(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}
	limit := repository.ClampLimit(parseInt(string(ctx.QueryArgs().Peek("limit")), repository.DefaultLimit))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Search(stdCtx, caller.Email, string(ctx.QueryArgs().Peek("q")), limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, tasks, limit, 0)
}

// @Summary Active tasks
// @Tags tasks
// @Router /api/v1/tasks/active [get]
func (h *TaskHandler) GetActive(ctx *fasthttp.RequestCtx) {
	h.find(ctx, func(stdCtx context.Context, owner string) ([]domain.Task, error) {
		return h.uc.FindActive(stdCtx, owner)
	})
}

// @Summary Overdue tasks
// @Tags tasks
// @Router /api/v1/tasks/overdue [get]
func (h *TaskHandler) GetOverdue(ctx *fasthttp.RequestCtx) {
	h.find(ctx, func(stdCtx context.Context, owner string) ([]domain.Task, error) {
		return h.uc.FindOverdue(stdCtx, owner)
	})
}

// @Summary Distinct modules
// @Tags tasks
// @Router /api/v1/tasks/modules [get]
func (h *TaskHandler) GetModules(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}
	if module := strings.TrimSpace(string(ctx.QueryArgs().Peek("module"))); module != "" {
		h.find(ctx, func(stdCtx context.Context, owner string) ([]domain.Task, error) {
			return h.uc.FindByModule(stdCtx, owner, module)
		})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	modules, err := h.uc.GetModules(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, "modules", modules, transport.ListMeta{Count: len(modules)})
}

// @Summary Task counts per status
// @Tags tasks
// @Router /api/v1/tasks/stats [get]
func (h *TaskHandler) GetStats(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.GetStats(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, "stats", stats, transport.ListMeta{Count: len(stats)})
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, caller, pathID(ctx), ctx.QueryArgs().GetBool("include_deleted"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, domain.NewTaskView(*task, h.now()))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	changes, err := toChanges(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	task := &domain.Task{Owners: req.Owners}
	changes.Apply(task)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, caller, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("task created", zap.String("task_id", created.ID))
	h.respondSuccess(ctx, http.StatusCreated, domain.NewTaskView(*created, h.now()))
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		changes, err := toChanges(req)
		if err != nil {
			return nil, err
		}
		return h.uc.Update(stdCtx, caller, id, changes)
	})
}

// @Summary Change task status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	var req transport.StatusRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.UpdateStatus(stdCtx, caller, id, domain.Status(strings.TrimSpace(req.Status)))
	})
}

// @Summary Soft-delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	h.mutation(ctx, nil, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.SoftDelete(stdCtx, caller, id)
	})
}

// @Summary Restore a soft-deleted task
// @Tags tasks
// @Router /api/v1/tasks/{id}/restore [post]
func (h *TaskHandler) RestoreTask(ctx *fasthttp.RequestCtx) {
	h.mutation(ctx, nil, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.Restore(stdCtx, caller, id)
	})
}

// @Summary Comment on task
// @Tags tasks
// @Router /api/v1/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	var req transport.CommentRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.AddComment(stdCtx, caller, id, req.Message)
	})
}

// @Summary Track time on task
// @Tags tasks
// @Router /api/v1/tasks/{id}/time [post]
func (h *TaskHandler) AddTime(ctx *fasthttp.RequestCtx) {
	var req transport.TimeRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.AddTimeSpent(stdCtx, caller, id, req.Seconds)
	})
}

// @Summary Count a pomodoro
// @Tags tasks
// @Router /api/v1/tasks/{id}/pomodoro [post]
func (h *TaskHandler) IncrementPomodoro(ctx *fasthttp.RequestCtx) {
	h.mutation(ctx, nil, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.IncrementPomodoro(stdCtx, caller, id)
	})
}

// @Summary Share task
// @Tags tasks
// @Router /api/v1/tasks/{id}/share [post]
func (h *TaskHandler) ShareTask(ctx *fasthttp.RequestCtx) {
	var req transport.ShareRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		return h.uc.ShareWith(stdCtx, caller, id, req.Email)
	})
}

// @Summary Add reminder
// @Tags tasks
// @Router /api/v1/tasks/{id}/reminders [post]
func (h *TaskHandler) AddReminder(ctx *fasthttp.RequestCtx) {
	var req transport.ReminderRequest
	h.mutation(ctx, &req, func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
		date, err := transport.ParseTime(req.Date)
		if err != nil {
			return nil, err
		}
		return h.uc.AddReminder(stdCtx, caller, id, date, req.Message)
	})
}

// mutation runs one task mutation: identity, optional body, use case call,
// and the task view response.
func (h *TaskHandler) mutation(ctx *fasthttp.RequestCtx, body interface{}, fn func(stdCtx context.Context, caller domain.Caller, id string) (*domain.Task, error)) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}
	if body != nil && !h.decode(ctx, body) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := fn(stdCtx, caller, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, domain.NewTaskView(*task, h.now()))
}

func (h *TaskHandler) find(ctx *fasthttp.RequestCtx, fn func(stdCtx context.Context, owner string) ([]domain.Task, error)) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := fn(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTasks(ctx, tasks, 0, 0)
}

func (h *TaskHandler) respondTasks(ctx *fasthttp.RequestCtx, tasks []domain.Task, limit, offset int) {
	views := domain.NewTaskViews(tasks, h.now())
	h.respondList(ctx, "tasks", views, transport.ListMeta{Count: len(views), Limit: limit, Offset: offset})
}

func toChanges(req transport.TaskRequest) (taskUC.Changes, error) {
	changes := taskUC.Changes{
		Title:            req.Title,
		Description:      req.Description,
		Module:           req.Module,
		Tags:             req.Tags,
		Link:             req.Link,
		FileURL:          req.FileURL,
		TemplateID:       req.TemplateID,
		ParentID:         req.ParentID,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if req.Category != nil {
		c := domain.Category(strings.TrimSpace(*req.Category))
		changes.Category = &c
	}
	if req.Priority != nil {
		p := domain.Priority(strings.TrimSpace(*req.Priority))
		changes.Priority = &p
	}
	if req.DueDate != nil {
		due, err := transport.ParseTime(*req.DueDate)
		if err != nil {
			return changes, domain.WrapError(domain.ErrCodeInvalid, "task validation failed", &domain.ValidationError{
				Violations: []domain.Violation{{Field: "due_date", Message: "due date must be RFC 3339 or YYYY-MM-DD"}},
			})
		}
		changes.DueDate = &due
	}
	return changes, nil
}
