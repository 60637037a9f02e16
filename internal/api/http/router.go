package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Incidents      *handlers.IncidentsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/validate", cfg.Auth.Validate)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle)
	incidents.Post("", auth.RequireAuthenticated(), cfg.Incidents.Create)
	incidents.Get("", auth.RequireRole(domain.RoleWorker, domain.RoleAdmin), cfg.Incidents.List)
	incidents.Get("/mine", auth.RequireAuthenticated(), cfg.Incidents.Mine)
	incidents.Get("/summary", auth.RequireRole(domain.RoleAdmin), cfg.Incidents.Summary)
	incidents.Get("/:id", auth.RequireAuthenticated(), cfg.Incidents.Get)
	incidents.Get("/:id/history", auth.RequireAuthenticated(), cfg.Incidents.History)
	incidents.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Assignments.Assign)
	incidents.Put("/:id/status", auth.RequireRole(domain.RoleWorker, domain.RoleAdmin), cfg.Incidents.UpdateStatus)
	incidents.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Incidents.Delete)
}
