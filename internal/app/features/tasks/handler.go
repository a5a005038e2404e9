// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the task lifecycle endpoints.
type Handler struct {
	Tasks *tasksvc.Service
	Log   *zap.Logger
}

func NewHandler(svc *tasksvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Tasks: svc, Log: logger}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (taskpolicy.Actor, bool) {
	a, ok := taskpolicy.ActorFromRequest(r)
	if !ok {
		httpjson.Error(w, r, h.Log, apperr.Unauthorized("not authorized, token missing or invalid"))
	}
	return a, ok
}

// ServeAll handles GET /api/tasks/all (admin).
func (h *Handler) ServeAll(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list all tasks")
	defer cancel()

	out, err := h.Tasks.ListAll(ctx, a)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeMine handles GET /api/tasks/my.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list my tasks")
	defer cancel()

	out, err := h.Tasks.ListMine(ctx, a)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleCreate handles POST /api/tasks (admin).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in tasksvc.CreateInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create task")
	defer cancel()

	out, err := h.Tasks.Create(ctx, a, in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, out)
}

// HandleAssign handles PUT /api/tasks/{taskId}/assign (admin).
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in tasksvc.AssignInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assign users")
	defer cancel()

	out, err := h.Tasks.Assign(ctx, a, chi.URLParam(r, "taskId"), in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

type statusInput struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles PATCH /api/tasks/{taskId}.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in statusInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update task status")
	defer cancel()

	out, err := h.Tasks.UpdateStatus(ctx, a, chi.URLParam(r, "taskId"), in.Status)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/tasks/{taskId} (admin).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete task")
	defer cancel()

	if err := h.Tasks.Delete(ctx, a, chi.URLParam(r, "taskId")); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Message(w, http.StatusOK, "Task deleted successfully")
}
