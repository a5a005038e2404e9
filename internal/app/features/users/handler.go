// internal/app/features/users/handler.go
package users

import (
	"net/http"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/services/identity"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the user directory and the caller's profile.
type Handler struct {
	Identity *identity.Service
	Log      *zap.Logger
}

func NewHandler(svc *identity.Service, logger *zap.Logger) *Handler {
	return &Handler{Identity: svc, Log: logger}
}

// ServeDirectory handles GET /api/users: [{_id, name}], or 404 when there
// are no users.
func (h *Handler) ServeDirectory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	out, err := h.Identity.Directory(ctx)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

type profileResponse struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ServeProfile handles GET /api/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	a, ok := taskpolicy.ActorFromRequest(r)
	if !ok {
		httpjson.Error(w, r, h.Log, apperr.Unauthorized("not authorized, token missing or invalid"))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load profile")
	defer cancel()

	u, err := h.Identity.Profile(ctx, a)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, profileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
}
