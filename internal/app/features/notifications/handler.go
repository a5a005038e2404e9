// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	notificationsvc "github.com/dalemusser/taskhub/internal/app/services/notifications"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Notifications *notificationsvc.Service
	Log           *zap.Logger
}

func NewHandler(svc *notificationsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Notifications: svc, Log: logger}
}

// ServeList handles GET /api/notifications: the caller's feed, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := taskpolicy.ActorFromRequest(r)
	if !ok {
		httpjson.Error(w, r, h.Log, apperr.Unauthorized("not authorized, token missing or invalid"))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	out, err := h.Notifications.List(ctx, a)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
