package account_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/account"
	"github.com/dalemusser/taskhub/internal/app/services/identity"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newRouter(t *testing.T, limiter *ratelimit.Limiter) (chi.Router, *auth.Manager) {
	t.Helper()
	tokens, err := auth.NewManager("0123456789abcdef0123456789abcdef", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	svc := identity.New(memstore.NewUsers(), tokens, bcrypt.MinCost, zap.NewNop())
	return account.Routes(account.NewHandler(svc, zap.NewNop()), limiter), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	r, tokens := newRouter(t, ratelimit.New(100, 100))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "pw", "role": "admin",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var reg struct {
		Token string `json:"token"`
	}
	rec.DecodeJSON(t, &reg)
	claims, err := tokens.Verify(reg.Token)
	if err != nil {
		t.Fatalf("register token invalid: %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("role claim = %q, want admin", claims.Role)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "pw",
	}))
	rec.AssertStatus(t, http.StatusOK)

	var login struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	rec.DecodeJSON(t, &login)
	if login.Role != "admin" || login.Token == "" {
		t.Errorf("login response = %+v", login)
	}
}

func TestRegister_BadInput(t *testing.T) {
	r, _ := newRouter(t, ratelimit.New(100, 100))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/register", map[string]string{"email": "x@example.com"}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"message"`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	r, _ := newRouter(t, ratelimit.New(100, 100))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email": "nobody@example.com", "password": "pw",
	}))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid credentials")
}

func TestLogin_RateLimited(t *testing.T) {
	r, _ := newRouter(t, ratelimit.New(1, 2))

	var last int
	for i := 0; i < 3; i++ {
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
			"email": "nobody@example.com", "password": "pw",
		}))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third attempt status = %d, want 429", last)
	}
}
