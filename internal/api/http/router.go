package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/trackloop/issue-tracker/internal/api/http/handlers"
	"github.com/trackloop/issue-tracker/internal/auth"
	"github.com/trackloop/issue-tracker/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Issues         *handlers.IssuesHandler
	Projects       *handlers.ProjectsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	issues := authed.Group("/issues")
	issues.Get("", cfg.Issues.List)
	issues.Get("/key/:key", cfg.Issues.GetByKey)
	issues.Post("", cfg.Issues.Create)
	issues.Put("/:id", cfg.Issues.Update)
	issues.Post("/:id/comments", cfg.Issues.AddComment)
	issues.Delete("/:id", cfg.Issues.Delete)

	projects := authed.Group("/projects")
	projects.Post("", cfg.Projects.Create)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Put("/:id/vocabulary", cfg.Projects.UpdateVocabulary)
	projects.Put("/:id/permissions", cfg.Projects.UpdatePermissions)
}
