// internal/app/features/comments/handler.go
package comments

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	commentsvc "github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves a task's comment thread. It expects a {taskId} URL
// parameter from the parent router.
type Handler struct {
	Comments *commentsvc.Service
	Log      *zap.Logger
}

func NewHandler(svc *commentsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Comments: svc, Log: logger}
}

// ServeList handles GET /api/tasks/{taskId}/comments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := taskpolicy.ActorFromRequest(r)
	if !ok {
		httpjson.Error(w, r, h.Log, apperr.Unauthorized("not authorized, token missing or invalid"))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list comments")
	defer cancel()

	out, err := h.Comments.List(ctx, a, chi.URLParam(r, "taskId"))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// HandleAdd handles POST /api/tasks/{taskId}/comments.
//
//	{"comment": "text", "mentioned": "<userId>" | ["<userId>", ...] | null}
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	a, ok := taskpolicy.ActorFromRequest(r)
	if !ok {
		httpjson.Error(w, r, h.Log, apperr.Unauthorized("not authorized, token missing or invalid"))
		return
	}
	var in commentsvc.AddInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add comment")
	defer cancel()

	out, err := h.Comments.Add(ctx, a, chi.URLParam(r, "taskId"), in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, out)
}
