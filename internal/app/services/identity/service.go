// Package identity registers and authenticates users and resolves bearer
// credentials into actors for the other services.
package identity

import (
	"context"
	"errors"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListDirectory(ctx context.Context) ([]models.UserRef, error)
}

// Tokens issues and verifies signed credentials.
type Tokens interface {
	Issue(userID primitive.ObjectID, role string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

type Service struct {
	users  UserStore
	tokens Tokens
	cost   int
	log    *zap.Logger

	// compared against when the email is unknown so both failure paths
	// spend the same bcrypt work
	dummyHash []byte
}

// New builds the service. cost outside bcrypt's range falls back to
// bcrypt.DefaultCost.
func New(users UserStore, tokens Tokens, cost int, log *zap.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("taskhub-no-such-user"), cost)
	return &Service{users: users, tokens: tokens, cost: cost, log: log, dummyHash: dummy}
}

var errInvalidCredentials = apperr.Unauthorized("invalid credentials")

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,max=72" label:"Password"`
	Role     string `json:"role" validate:"role" label:"Role"`
}

// Register creates the account and returns a credential for it. Role
// defaults to "user".
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, models.User, error) {
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Role = normalize.Role(in.Role)
	if res := inputval.Validate(in); res.HasErrors() {
		return "", models.User{}, apperr.Validation(res.First())
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.User{}, apperr.Validation("Password must be at most 72 bytes.")
		}
		return "", models.User{}, apperr.Internal("failed to register user", err)
	}

	u, err := s.users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return "", models.User{}, apperr.Validation("User already exists")
		}
		return "", models.User{}, apperr.Internal("failed to register user", err)
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", models.User{}, apperr.Internal("failed to issue token", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	return token, u, nil
}

// Login checks the password and returns a credential and the user's role.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	u, err := s.users.GetByEmail(ctx, normalize.Email(email))
	if err != nil {
		if !errors.Is(err, userstore.ErrNotFound) {
			return "", "", apperr.Internal("login failed", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.log.Warn("login failed", zap.String("reason", "unknown email"))
		return "", "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login failed", zap.String("reason", "bad password"), zap.String("user_id", u.ID.Hex()))
		return "", "", errInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", "", apperr.Internal("failed to issue token", err)
	}
	return token, u.Role, nil
}

// ResolveCredential verifies token and returns the identity it carries.
// The HTTP bearer middleware resolves every request through it.
func (s *Service) ResolveCredential(token string) (taskpolicy.Actor, error) {
	if token == "" {
		return taskpolicy.Actor{}, apperr.Unauthorized("token missing")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return taskpolicy.Actor{}, apperr.Unauthorized("invalid or expired token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return taskpolicy.Actor{}, apperr.Unauthorized("invalid or expired token")
	}
	return taskpolicy.Actor{ID: id, Role: normalize.Role(claims.Role)}, nil
}

// AuthorizeAdmin fails with a forbidden error unless role is admin.
func AuthorizeAdmin(role string) error {
	if role != models.RoleAdmin {
		return apperr.Forbidden("forbidden")
	}
	return nil
}

// Profile returns the actor's own user record.
func (s *Service) Profile(ctx context.Context, actor taskpolicy.Actor) (*models.User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load profile", err)
	}
	return u, nil
}

// Directory lists every user as {_id, name}.
func (s *Service) Directory(ctx context.Context) ([]models.UserRef, error) {
	users, err := s.users.ListDirectory(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("No users found.")
	}
	return users, nil
}
