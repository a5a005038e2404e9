// internal/app/features/comments/routes.go
package comments

import "github.com/go-chi/chi/v5"

// Routes is mounted under /api/tasks/{taskId}/comments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	return r
}
