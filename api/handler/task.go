package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/visahub/backend/api/transport"
	"github.com/visahub/backend/domain"
	"github.com/visahub/backend/pkg/httpcontext"
	"github.com/visahub/backend/repository"
	tasksUC "github.com/visahub/backend/usecase/tasks"
)

type TaskHandler struct {
	baseHandler
	manager *tasksUC.Manager
}

func NewTaskHandler(manager *tasksUC.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// a fetch is always a reconciliation point for the mirror
	tasks, err := h.manager.ForUser(userID).Refresh(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Add custom task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CustomTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	controller, err := h.readyController(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	created, err := controller.AddCustom(stdCtx, req.Title, req.DueDate, domain.Priority(req.Priority))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	controller, err := h.readyController(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	updated, err := controller.Toggle(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	controller, err := h.readyController(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	updated, err := controller.Update(stdCtx, id, toTaskUpdate(req))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	controller, err := h.readyController(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if err := controller.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// readyController hands back the user's mirror, refreshing it first when it
// has not been loaded yet.
func (h *TaskHandler) readyController(stdCtx context.Context, userID string) (*tasksUC.Controller, error) {
	controller := h.manager.ForUser(userID)
	if controller.State() != tasksUC.StateReady {
		if _, err := controller.Refresh(stdCtx); err != nil {
			return nil, err
		}
	}
	return controller, nil
}

func toTaskUpdate(req transport.TaskUpdateRequest) repository.TaskUpdate {
	update := repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		update.Category = &category
	}
	if req.Phase != nil {
		phase := domain.Phase(*req.Phase)
		update.Phase = &phase
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		update.Priority = &priority
	}
	return update
}
