// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// DirectoryRoutes is mounted under /api/users.
func DirectoryRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDirectory)
	return r
}

// ProfileRoutes is mounted under /api/profile.
func ProfileRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProfile)
	return r
}
