package identity_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/services/identity"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newService(t *testing.T) (*identity.Service, *memstore.Users, *auth.Manager) {
	t.Helper()
	tokens, err := auth.NewManager(testSecret, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	users := memstore.NewUsers()
	return identity.New(users, tokens, bcrypt.MinCost, zap.NewNop()), users, tokens
}

func TestRegisterThenLogin_RoundTrip(t *testing.T) {
	svc, users, _ := newService(t)
	ctx := context.Background()

	for _, role := range []string{"user", "admin"} {
		email := role + "@example.com"
		token, u, err := svc.Register(ctx, identity.RegisterInput{
			Name: "Some " + role, Email: email, Password: "s3cret!", Role: role,
		})
		if err != nil {
			t.Fatalf("Register(%s) failed: %v", role, err)
		}
		if token == "" {
			t.Fatal("expected a token from Register")
		}

		stored, _ := users.GetByID(ctx, u.ID)
		if stored.PasswordHash == "s3cret!" || !strings.HasPrefix(stored.PasswordHash, "$2") {
			t.Errorf("password not stored as bcrypt hash: %q", stored.PasswordHash)
		}

		loginToken, gotRole, err := svc.Login(ctx, strings.ToUpper(email), "s3cret!")
		if err != nil {
			t.Fatalf("Login(%s) failed: %v", role, err)
		}
		if gotRole != role {
			t.Errorf("Login role = %q, want %q", gotRole, role)
		}

		actor, err := svc.ResolveCredential(loginToken)
		if err != nil {
			t.Fatalf("ResolveCredential failed: %v", err)
		}
		if actor.ID != u.ID || actor.Role != role {
			t.Errorf("actor = %+v, want %s/%s", actor, u.ID.Hex(), role)
		}
	}
}

func TestRegister_DefaultsRoleToUser(t *testing.T) {
	svc, _, _ := newService(t)
	_, u, err := svc.Register(context.Background(), identity.RegisterInput{
		Name: "No Role", Email: "norole@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Role != "user" {
		t.Errorf("Role = %q, want user", u.Role)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, identity.RegisterInput{Name: "A", Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("seed Register failed: %v", err)
	}

	tests := []struct {
		name string
		in   identity.RegisterInput
	}{
		{"missing name", identity.RegisterInput{Email: "b@example.com", Password: "pw"}},
		{"missing email", identity.RegisterInput{Name: "B", Password: "pw"}},
		{"bad email", identity.RegisterInput{Name: "B", Email: "nope", Password: "pw"}},
		{"missing password", identity.RegisterInput{Name: "B", Email: "b@example.com"}},
		{"bad role", identity.RegisterInput{Name: "B", Email: "b@example.com", Password: "pw", Role: "root"}},
		{"duplicate email", identity.RegisterInput{Name: "A2", Email: " A@Example.com ", Password: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLogin_DoesNotDistinguishFailures(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, identity.RegisterInput{Name: "A", Email: "a@example.com", Password: "right"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, errWrongPw := svc.Login(ctx, "a@example.com", "wrong")
	_, _, errNoUser := svc.Login(ctx, "nobody@example.com", "right")

	for _, err := range []error{errWrongPw, errNoUser} {
		if !apperr.Is(err, apperr.KindAuth) {
			t.Errorf("err = %v, want auth error", err)
		}
	}
	if apperr.Message(errWrongPw) != apperr.Message(errNoUser) {
		t.Errorf("messages differ: %q vs %q", apperr.Message(errWrongPw), apperr.Message(errNoUser))
	}
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	svc, users, _ := newService(t)
	users.Err = errors.New("socket closed")

	_, _, err := svc.Login(context.Background(), "a@example.com", "pw")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("err = %v, want internal", err)
	}
}

func TestResolveCredential_Rejects(t *testing.T) {
	svc, _, tokens := newService(t)

	other, _ := auth.NewManager("ffffffffffffffffffffffffffffffff", 0, zap.NewNop())
	foreign, _ := other.Issue(primitive.NewObjectID(), "admin")

	old, _ := auth.NewManager(testSecret, 0, zap.NewNop())
	old.SetClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	expired, _ := old.Issue(primitive.NewObjectID(), "user")

	good, _ := tokens.Issue(primitive.NewObjectID(), "user")
	parts := strings.Split(good, ".")
	adminTok, _ := tokens.Issue(primitive.NewObjectID(), "admin")
	tampered := parts[0] + "." + strings.Split(adminTok, ".")[1] + "." + parts[2]

	for name, tok := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"wrong secret":  foreign,
		"expired":       expired,
		"tampered body": tampered,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ResolveCredential(tok); !apperr.Is(err, apperr.KindAuth) {
				t.Errorf("err = %v, want auth error", err)
			}
		})
	}
}

func TestAuthorizeAdmin(t *testing.T) {
	if err := identity.AuthorizeAdmin("admin"); err != nil {
		t.Errorf("admin: %v", err)
	}
	for _, role := range []string{"user", "", "Admin "} {
		if err := identity.AuthorizeAdmin(role); !apperr.Is(err, apperr.KindAuthz) {
			t.Errorf("AuthorizeAdmin(%q) = %v, want forbidden", role, err)
		}
	}
}

func TestProfileAndDirectory(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Directory(ctx); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("empty Directory err = %v, want not found", err)
	}

	_, u, err := svc.Register(ctx, identity.RegisterInput{Name: "Zoe", Email: "z@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := svc.Register(ctx, identity.RegisterInput{Name: "amir", Email: "am@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	dir, err := svc.Directory(ctx)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if len(dir) != 2 || dir[0].Name != "amir" || dir[1].Name != "Zoe" {
		t.Errorf("Directory = %+v", dir)
	}

	actor, _ := svc.ResolveCredential(mustIssue(t, svc, "z@example.com"))
	p, err := svc.Profile(ctx, actor)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.ID != u.ID || p.Email != "z@example.com" {
		t.Errorf("Profile = %+v", p)
	}

	actor.ID = primitive.NewObjectID()
	if _, err := svc.Profile(ctx, actor); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Profile for missing user err = %v, want not found", err)
	}
}

func mustIssue(t *testing.T, svc *identity.Service, email string) string {
	t.Helper()
	tok, _, err := svc.Login(context.Background(), email, "pw")
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", email, err)
	}
	return tok
}
