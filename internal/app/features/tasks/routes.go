// internal/app/features/tasks/routes.go
package tasks

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/tasks behind RequireSignedIn. The comment
// thread router is mounted at /{taskId}/comments.
func Routes(h *Handler, sm *auth.Manager, comments http.Handler) chi.Router {
	r := chi.NewRouter()
	adminOnly := sm.RequireRole(models.RoleAdmin)

	r.Get("/my", h.ServeMine)
	r.With(adminOnly).Get("/all", h.ServeAll)
	r.With(adminOnly).Post("/", h.HandleCreate)

	r.Route("/{taskId}", func(r chi.Router) {
		r.Patch("/", h.HandleUpdateStatus)
		r.With(adminOnly).Delete("/", h.HandleDelete)
		r.With(adminOnly).Put("/assign", h.HandleAssign)
		r.Mount("/comments", comments)
	})
	return r
}
