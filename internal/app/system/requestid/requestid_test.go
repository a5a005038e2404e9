package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/requestid"
	"github.com/google/uuid"
)

func TestMiddleware_GeneratesID(t *testing.T) {
	var seen string
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a UUID in context, got %q", seen)
	}
	if got := rec.Header().Get(requestid.Header); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestMiddleware_ReusesValidInboundID(t *testing.T) {
	inbound := uuid.NewString()
	var seen string
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestid.Header, inbound)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != inbound {
		t.Errorf("expected inbound id %q, got %q", inbound, seen)
	}
}

func TestMiddleware_ReplacesGarbageID(t *testing.T) {
	var seen string
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestid.Header, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "<script>" || seen == "" {
		t.Errorf("expected a fresh id, got %q", seen)
	}
}
