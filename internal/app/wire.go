package app

import (
	"log/slog"
	"time"

	"github.com/campusevents/calendar/internal/auth"
	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/guard"
	"github.com/campusevents/calendar/internal/handler"
	"github.com/campusevents/calendar/internal/infra"
	"github.com/campusevents/calendar/internal/metrics"
	"github.com/campusevents/calendar/internal/repository"
	"github.com/campusevents/calendar/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool     *pgxpool.Pool
	JWTMgr   *auth.JWTManager
	Logger   *slog.Logger
	Clock    clock.Clock
	Location *time.Location

	CORSAllowedOrigins string
	TrustedProxies     []string
	LoginRateLimit     int
	LoginRateWindow    time.Duration
}

// Services builds the Postgres-backed services shared by the API and startup.
func Services(deps RouterDeps) (*service.EventService, *service.AccessService) {
	outboxRepo := repository.NewPgOutboxRepository()
	eventRepo := repository.NewPgEventRepository(deps.Pool, outboxRepo)
	adminRepo := repository.NewPgAdminRepository(deps.Pool, outboxRepo)
	attemptRepo := repository.NewPgLoginAttemptRepository(deps.Pool)

	lockout := guard.NewLockout(attemptRepo, deps.Clock, deps.Logger)

	eventSvc := service.NewEventService(eventRepo, deps.Clock, deps.Location, deps.Logger)
	accessSvc := service.NewAccessService(adminRepo, lockout, deps.Logger)
	return eventSvc, accessSvc
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	eventSvc, accessSvc := Services(deps)

	return Routes(RouteDeps{
		Events:       handler.NewEventHandler(eventSvc),
		Admins:         handler.NewAdminHandler(accessSvc, deps.JWTMgr),
		JWTMgr:         deps.JWTMgr,
		Accounts:       accessSvc,
		DB:             deps.Pool,
		LoginLimiter:   guard.NewRateLimiter(deps.LoginRateLimit, deps.LoginRateWindow),
		Logger:         deps.Logger,
		CORSOrigins:    deps.CORSAllowedOrigins,
		TrustedProxies: deps.TrustedProxies,
	})
}

// RouteDeps holds the constructed handlers that Routes mounts.
type RouteDeps struct {
	Events         *handler.EventHandler
	Admins         *handler.AdminHandler
	JWTMgr         *auth.JWTManager
	Accounts       auth.AccountChecker
	DB             infra.Pinger
	LoginLimiter   handler.Limiter
	Logger         *slog.Logger
	CORSOrigins    string
	TrustedProxies []string
}

// Routes mounts the calendar API under /api and, for older clients, at the root.
func Routes(deps RouteDeps) chi.Router {
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RealIP(deps.TrustedProxies))
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(metrics.HTTPMiddleware)
	r.Use(handler.CORSWithOrigins(deps.CORSOrigins))
	r.Use(handler.JSONContentType)

	mount := func(r chi.Router) {
		// Health (no auth)
		r.Get("/health", handler.HealthHandler(deps.DB))

		// Public calendar views
		r.Get("/events", deps.Events.ListUpcoming)
		r.Get("/events/upcoming", deps.Events.ListUpcoming)
		r.Get("/events/past", deps.Events.ListPast)
		r.Get("/events/{id}", deps.Events.Get)

		r.With(handler.RateLimit(deps.LoginLimiter)).Post("/admin/login", deps.Admins.Login)

		// Admin-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(deps.JWTMgr, deps.Accounts))

			r.Post("/events", deps.Events.Create)
			r.Put("/events/{id}", deps.Events.Update)
			r.Delete("/events/{id}", deps.Events.Delete)

			r.Route("/admin/users", func(r chi.Router) {
				r.Get("/", deps.Admins.ListUsers)
				r.Post("/", deps.Admins.AddUser)
				r.Delete("/", deps.Admins.DeleteUser)
				r.Delete("/{id}", deps.Admins.DeleteUser)
			})
		})
	}

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.NoStore)
		mount(r)
	})
	r.Group(mount)

	return r
}
