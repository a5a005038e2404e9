// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for TaskHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TASKHUB_MONGO_URI, TASKHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "taskhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Credentials
	{Name: "jwt_secret", Default: "", Desc: "Token signing secret (required, 32+ chars recommended)"},
	{Name: "token_ttl", Default: "168h", Desc: "Token lifetime (e.g., 24h, 168h)"},
	{Name: "bcrypt_cost", Default: 12, Desc: "bcrypt work factor for password hashes"},

	// HTTP
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated origins allowed to call /api"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per minute per client IP"},
	{Name: "login_rate_burst", Default: 5, Desc: "Login attempts allowed in a burst"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs whose X-Forwarded-For is honored"},

	// Notifications
	{Name: "notify_on_assign", Default: true, Desc: "Notify users when they are assigned to a task"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name used when the admin user is created"},
	{Name: "admin_password", Default: "", Desc: "Password used when the admin user is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, TASKHUB_* for app) and flags,
// merged with precedence flags > env > files > defaults. Operation timeouts
// are read separately from TIMEOUT_* variables.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	proxies, err := ratelimit.ParseTrustedProxies(strings.Split(appValues.String("trusted_proxies"), ","))
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("trusted_proxies: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:  appValues.String("jwt_secret"),
		TokenTTL:   appValues.Duration("token_ttl", auth.DefaultTTL),
		BcryptCost: appValues.Int("bcrypt_cost"),

		CORSAllowedOrigins: splitOrigins(appValues.String("cors_allowed_origins")),
		LoginRateLimit:     appValues.Int("login_rate_limit"),
		LoginRateBurst:     appValues.Int("login_rate_burst"),
		TrustedProxies:     proxies,

		NotifyOnAssign: appValues.Bool("notify_on_assign"),

		AdminEmail:    appValues.String("admin_email"),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("operation timeouts overridden from environment", zap.Int("count", n))
	}

	return coreCfg, appCfg, nil
}

// splitOrigins turns "a, b/,c" into ["a","b","c"].
func splitOrigins(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// TaskHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and refuses to sign tokens with an
// empty secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required (set TASKHUB_JWT_SECRET)")
	}
	if len(appCfg.JWTSecret) < 32 {
		logger.Warn("jwt_secret is short; 32+ chars recommended", zap.Int("length", len(appCfg.JWTSecret)))
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", appCfg.TokenTTL)
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Admin bootstrap needs a password to create the account
	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		logger.Warn("admin_email set without admin_password; an existing account will be promoted but none created")
	}

	return nil
}
