// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"net/netip"
	"time"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports,
// TLS, logging level and request body limits. AppConfig is where the
// task service keeps its database, credential and policy knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer credentials
	JWTSecret  string        // HMAC signing key (32+ random chars in production)
	TokenTTL   time.Duration // how long an issued token stays valid
	BcryptCost int

	// Cross-origin access to /api
	CORSAllowedOrigins []string

	// Login throttling, per client IP
	LoginRateLimit int // attempts per minute
	LoginRateBurst int
	// Peers whose X-Forwarded-For / X-Real-IP are believed. Empty means
	// the socket address is the client.
	TrustedProxies []netip.Prefix

	// Send "You were assigned to ..." notifications
	NotifyOnAssign bool

	// Admin bootstrap (blank email disables it)
	AdminEmail    string
	AdminName     string
	AdminPassword string
}
