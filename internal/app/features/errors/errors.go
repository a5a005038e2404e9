// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
)

// Handler is the errors feature handler.
// No DB needed; it answers unmatched requests with JSON.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpjson.Message(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpjson.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
}
