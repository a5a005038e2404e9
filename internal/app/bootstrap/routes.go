// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/dalemusser/taskhub/internal/app/features/account"
	commentsfeature "github.com/dalemusser/taskhub/internal/app/features/comments"
	errorsfeature "github.com/dalemusser/taskhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/taskhub/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/taskhub/internal/app/features/notifications"
	tasksfeature "github.com/dalemusser/taskhub/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/taskhub/internal/app/features/users"
	commentsvc "github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/app/services/hydrate"
	"github.com/dalemusser/taskhub/internal/app/services/identity"
	notificationsvc "github.com/dalemusser/taskhub/internal/app/services/notifications"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	notificationstore "github.com/dalemusser/taskhub/internal/app/store/notifications"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. TaskHub builds the token manager, the
// Mongo-backed stores and the facet services, then hands them to newRouter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewManager(appCfg.JWTSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.TaskHubMongoDatabase
	svcs := newServices(
		userstore.New(db),
		taskstore.New(db),
		notificationstore.New(db),
		tokens, appCfg, logger)

	return newRouter(appCfg, tokens, svcs, deps.TaskHubMongoClient, logger), nil
}

// userBackend is what the identity service and hydration need from users.
type userBackend interface {
	identity.UserStore
	hydrate.Directory
}

// taskBackend is what the task and comment services need from tasks.
type taskBackend interface {
	tasksvc.Store
	commentsvc.Store
}

type services struct {
	Identity      *identity.Service
	Tasks         *tasksvc.Service
	Comments      *commentsvc.Service
	Notifications *notificationsvc.Service
}

func newServices(users userBackend, tasks taskBackend, notes notificationsvc.Store, tokens identity.Tokens, appCfg AppConfig, logger *zap.Logger) services {
	notify := notificationsvc.New(notes, logger)
	return services{
		Identity:      identity.New(users, tokens, appCfg.BcryptCost, logger),
		Tasks:         tasksvc.New(tasks, users, notify, tasksvc.Options{NotifyOnAssign: appCfg.NotifyOnAssign}, logger),
		Comments:      commentsvc.New(tasks, users, notify, logger),
		Notifications: notify,
	}
}

// newRouter mounts every feature. /api is CORS-enabled and reads bearer
// tokens; everything except /api/auth requires a signed-in user.
func newRouter(appCfg AppConfig, sm *auth.Manager, svcs services, db healthfeature.Pinger, logger *zap.Logger) http.Handler {
	m := metrics.New()

	sm.UseResolver(func(token string) (*auth.SessionUser, error) {
		a, err := svcs.Identity.ResolveCredential(token)
		if err != nil {
			return nil, err
		}
		return &auth.SessionUser{ID: a.ID.Hex(), Role: a.Role}, nil
	})

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(m.Middleware)

	// JSON fallbacks; set before mounting so subrouters inherit them.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(db, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: appCfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		api.Use(sm.LoadBearerUser)

		// Authentication
		loginLimiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateBurst).
			TrustProxies(appCfg.TrustedProxies)
		accountHandler := accountfeature.NewHandler(svcs.Identity, logger)
		accountHandler.TrustedProxies = appCfg.TrustedProxies
		api.Mount("/auth", accountfeature.Routes(accountHandler, loginLimiter))

		api.Group(func(pr chi.Router) {
			pr.Use(sm.RequireSignedIn)

			commentsHandler := commentsfeature.NewHandler(svcs.Comments, logger)
			tasksHandler := tasksfeature.NewHandler(svcs.Tasks, logger)
			pr.Mount("/tasks", tasksfeature.Routes(tasksHandler, sm, commentsfeature.Routes(commentsHandler)))

			notificationsHandler := notificationsfeature.NewHandler(svcs.Notifications, logger)
			pr.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

			usersHandler := usersfeature.NewHandler(svcs.Identity, logger)
			pr.Mount("/users", usersfeature.DirectoryRoutes(usersHandler))
			pr.Mount("/profile", usersfeature.ProfileRoutes(usersHandler))
		})
	})

	return r
}
