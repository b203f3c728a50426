package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillbridge/skillbridge-api/internal/api/http/handlers"
	"github.com/skillbridge/skillbridge-api/internal/auth"
	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Bookings       *handlers.BookingsHandler
	Tutors         *handlers.TutorsHandler
	Categories     *handlers.CategoriesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	AuthRateLimit  fiber.Handler
}

// RegisterRoutes wires HTTP routes under /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")
	requireUser := cfg.AuthMiddleware.Handle

	api.Get("/health/live", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth")
	limit := rateLimit(cfg.AuthRateLimit)
	authGroup.Post("/register", limit, cfg.Auth.Register)
	authGroup.Post("/login", limit, cfg.Auth.Login)
	authGroup.Get("/me", requireUser, cfg.Auth.Me)
	authGroup.Put("/password", requireUser, cfg.Auth.ChangePassword)

	tutors := api.Group("/tutors")
	tutors.Get("/", cfg.Tutors.List)
	tutors.Put("/profile", requireUser, auth.RequireRole(domain.RoleTutor), cfg.Tutors.UpsertProfile)
	tutors.Put("/availability", requireUser, auth.RequireRole(domain.RoleTutor), cfg.Tutors.ReplaceAvailability)
	tutors.Get("/:id", cfg.Tutors.Get)
	tutors.Get("/:id/reviews", cfg.Tutors.Reviews)

	api.Get("/categories", cfg.Categories.List)

	bookings := api.Group("/bookings", requireUser)
	bookings.Post("/", cfg.Bookings.Create)
	bookings.Get("/", cfg.Bookings.List)
	bookings.Get("/:id", cfg.Bookings.Get)
	bookings.Patch("/:id/status", cfg.Bookings.UpdateStatus)
	bookings.Post("/:id/reviews", cfg.Bookings.CreateReview)

	admin := api.Group("/admin", requireUser, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id", cfg.Admin.UpdateUser)
	admin.Get("/bookings", cfg.Admin.ListBookings)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Post("/categories", cfg.Categories.Create)
	admin.Put("/categories/:id", cfg.Categories.Update)
	admin.Delete("/categories/:id", cfg.Categories.Delete)
}

func rateLimit(h fiber.Handler) fiber.Handler {
	if h == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return h
}
