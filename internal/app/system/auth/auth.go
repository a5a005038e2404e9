package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Bearer credentials                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned by Verify for any token that fails parsing,
// signature, expiry, or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload: the user's ID and role.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionUser is the resolved caller injected into r.Context().
type SessionUser struct {
	ID   string
	Role string
}

// ObjectID returns the caller's user ID. The middleware only injects users
// whose ID parsed, so the error branch is unreachable in handlers.
func (u *SessionUser) ObjectID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	return oid
}

// Manager issues and verifies bearer tokens and provides the middleware
// that turns a request's Authorization header into a SessionUser.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	resolve Resolver
	log     *zap.Logger
}

// Resolver turns a bearer token into the caller it identifies.
type Resolver func(token string) (*SessionUser, error)

// NewManager creates a token manager signing with HS256.
func NewManager(secret string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    logger,
	}
	m.resolve = m.sessionUser
	return m, nil
}

// UseResolver replaces the token check LoadBearerUser runs. The default
// verifies the token with this manager.
func (m *Manager) UseResolver(r Resolver) {
	if r == nil {
		r = m.sessionUser
	}
	m.resolve = r
}

func (m *Manager) sessionUser(token string) (*SessionUser, error) {
	claims, err := m.Verify(token)
	if err != nil {
		return nil, err
	}
	return &SessionUser{ID: claims.UserID, Role: strings.ToLower(claims.Role)}, nil
}

// SetClock replaces the issuing clock. Verification always uses the real
// time, so tokens issued with a clock in the past can be checked for expiry.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Issue signs a token for the given user and role.
func (m *Manager) Issue(userID primitive.ObjectID, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, and expiry, and returns the claims.
// Every failure is reported as ErrInvalidToken wrapping the cause.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}
	return claims, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context. Handler tests use it to
// bypass the bearer middleware.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// LoadBearerUser injects the user into context when the request carries a
// valid bearer token. Invalid tokens are ignored here; protected routes
// reject them through RequireSignedIn / RequireRole.
func (m *Manager) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		u, err := m.resolve(tok)
		if err != nil {
			m.log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		r = withUser(r, u)
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadBearerUser).
func (m *Manager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httpjson.Error(w, r, m.log, apperr.Unauthorized("not authorized, token missing or invalid"))
	})
}

// RequireRole ensures there is a user with one of the allowed roles.
// No user → 401; wrong role → 403.
func (m *Manager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, r, m.log, apperr.Unauthorized("not authorized, token missing or invalid"))
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Error(w, r, m.log, apperr.Forbidden("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
