package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/police-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/police-dashboard/internal/auth"
	"github.com/spec-kit/police-dashboard/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle)
	session.Get("/me", cfg.Auth.Me)
	session.Post("/logout", cfg.Auth.Logout)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireRole(domain.RoleAdmin, domain.RoleSupervisor), cfg.Users.List)
	users.Get("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleSupervisor), cfg.Users.GetByID)
	users.Put("/:id/deactivate", auth.RequireRole(domain.RoleAdmin), cfg.Users.Deactivate)
}
