// internal/app/features/account/handler.go
package account

import (
	"net/http"
	"net/netip"

	"github.com/dalemusser/taskhub/internal/app/services/identity"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves registration and login.
type Handler struct {
	Identity *identity.Service
	Log      *zap.Logger

	// TrustedProxies decides whose forwarding headers count when logging
	// the throttled client.
	TrustedProxies []netip.Prefix
}

func NewHandler(svc *identity.Service, logger *zap.Logger) *Handler {
	return &Handler{Identity: svc, Log: logger}
}

type tokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}

// HandleRegister handles POST /api/auth/register.
//
//	201 {"token": "..."}
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in identity.RegisterInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	token, _, err := h.Identity.Register(r.Context(), in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, tokenResponse{Token: token})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /api/auth/login.
//
//	200 {"token": "...", "role": "user"}
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	token, role, err := h.Identity.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, tokenResponse{Token: token, Role: role})
}

// TooManyAttempts is the response for a throttled login.
func (h *Handler) TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r, h.TrustedProxies)))
	httpjson.Message(w, http.StatusTooManyRequests, "too many login attempts")
}
