package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type TasksService interface {
	List(ctx context.Context, p user.Principal, q service.ListTasksQuery) (service.TaskList, error)
	Get(ctx context.Context, p user.Principal, id string) (task.Populated, error)
	Create(ctx context.Context, p user.Principal, req task.CreateTaskRequest) (task.Populated, error)
	Update(ctx context.Context, p user.Principal, id string, req task.UpdateTaskRequest) (task.Populated, error)
	Delete(ctx context.Context, p user.Principal, id string) error
	Assign(ctx context.Context, p user.Principal, id, userID string) (task.Populated, error)
	Stats(ctx context.Context, p user.Principal) (task.Stats, error)
	Analytics(ctx context.Context, p user.Principal) (task.Analytics, error)
}

type TasksHandler struct {
	tasks TasksService
}

func NewTasksHandler(tasks TasksService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// listQuery reads the filters shared by GET /tasks and GET /dashboard.
func listQuery(ctx *gin.Context) service.ListTasksQuery {
	return service.ListTasksQuery{
		Status:     ctx.Query("status"),
		Priority:   ctx.Query("priority"),
		AssignedTo: ctx.Query("assignedTo"),
		SortBy:     ctx.DefaultQuery("sortBy", task.DefaultSortKey),
		Page:       parseIntDefault(ctx.Query("page"), service.DefaultPage),
		Limit:      parseIntDefault(ctx.Query("limit"), service.DefaultLimit),
	}
}

// ListTasks serves GET /tasks. total and pages count the tasks matching the
// caller's scope and the status/priority/assignedTo filters, not the whole scope.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := h.tasks.List(cctx, p, listQuery(ctx))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, successList(
		gin.H{"tasks": list.Tasks},
		ListMeta{Count: list.Count, Total: list.Total, Page: list.Page, Pages: list.Pages},
	))
}

func (h *TasksHandler) GetTask(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := h.tasks.Get(cctx, p, ctx.Param("id"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, success("", gin.H{"task": t}))
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := h.tasks.Create(cctx, p, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Task created successfully", gin.H{"task": t})
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.UpdateTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := h.tasks.Update(cctx, p, ctx.Param("id"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Task updated successfully", gin.H{"task": t})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := h.tasks.Delete(cctx, p, ctx.Param("id")); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Task deleted successfully", gin.H{})
}

func (h *TasksHandler) AssignTask(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.AssignTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := h.tasks.Assign(cctx, p, ctx.Param("id"), req.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Task assigned successfully", gin.H{"task": t})
}

func (h *TasksHandler) Stats(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	st, err := h.tasks.Stats(cctx, p)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, success("", st))
}

func (h *TasksHandler) Analytics(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	a, err := h.tasks.Analytics(cctx, p)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, success("", a))
}
