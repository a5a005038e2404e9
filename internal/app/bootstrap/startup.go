// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// TaskHub uses it to make sure the configured admin account exists, since
// registration alone cannot be trusted to mint the first admin.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	return ensureAdmin(ctx, userstore.New(deps.TaskHubMongoDatabase), appCfg, logger)
}

// adminUsers is the slice of userstore.Store that ensureAdmin touches.
type adminUsers interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) error
}

// ensureAdmin promotes the account with AdminEmail to admin, or creates it
// when AdminPassword is set.
func ensureAdmin(ctx context.Context, users adminUsers, appCfg AppConfig, logger *zap.Logger) error {
	u, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		logger.Info("promoted existing user to admin", zap.String("email", u.Email))
		return nil
	case !errors.Is(err, userstore.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	if appCfg.AdminPassword == "" {
		logger.Warn("admin user not found and no admin_password to create it",
			zap.String("email", appCfg.AdminEmail))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), appCfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := users.Create(ctx, models.User{
		Name:         appCfg.AdminName,
		Email:        appCfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// another instance created it first
		return nil
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("created admin user", zap.String("email", created.Email))
	return nil
}
