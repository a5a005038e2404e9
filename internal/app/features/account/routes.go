// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/auth. Login is throttled per client IP.
func Routes(h *Handler, loginLimiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.With(loginLimiter.Middleware(h.TooManyAttempts)).Post("/login", h.HandleLogin)
	return r
}
