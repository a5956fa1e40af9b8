package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/custodia/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/custodia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/custodia/internal/database"
)

type Dependencies struct {
	Ingest     handler.IngestService
	Events     handler.EventLister
	Enrollment handler.EnrollmentService
	Settings   handler.SettingsService
	DB         *pgxpool.Pool
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Custodia API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))

	// Health check endpoints
	var db handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		db = readinessProbe{pool: r.deps.DB}
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")

	eventsHandler := handler.NewEventsHandler(r.deps.Ingest, r.deps.Events, r.logger)
	v1.Post("/events", eventsHandler.Ingest)
	v1.Get("/events", eventsHandler.List)

	enrollmentHandler := handler.NewEnrollmentHandler(r.deps.Enrollment, r.logger)
	v1.Put("/users/:id/devices", enrollmentHandler.UpdateDevices)
	v1.Delete("/users/:id", enrollmentHandler.DeleteUser)

	alertParamsHandler := handler.NewAlertParamsHandler(r.deps.Settings, r.logger)
	v1.Get("/alert-parameters", alertParamsHandler.Get)
	v1.Put("/alert-parameters", alertParamsHandler.Update)
}

// readinessProbe routes /ready through the bounded database health check.
type readinessProbe struct {
	pool *pgxpool.Pool
}

func (p readinessProbe) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, p.pool)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
