package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/student-affairs/servicedesk-api/internal/config"
	"github.com/student-affairs/servicedesk-api/internal/handler"
	"github.com/student-affairs/servicedesk-api/internal/middleware"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	CatalogHandler      *handler.CatalogHandler
	RequestHandler      *handler.RequestHandler
	NotificationHandler *handler.NotificationHandler
	AttachmentHandler   *handler.AttachmentHandler
	JWTMiddleware       fiber.Handler
	RoleMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	roleMiddleware := deps.RoleMiddleware
	if roleMiddleware == nil {
		roleMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		limited := middleware.RateLimit("auth", 20, time.Minute)
		api.Post("/register/student", limited, deps.AuthHandler.RegisterStudent)
		api.Post("/register/staff", limited, jwtMiddleware, roleMiddleware,
			middleware.RequireRole(models.RoleAdmin), deps.AuthHandler.RegisterStaff)
		api.Post("/token", limited, deps.AuthHandler.Token)
		api.Post("/token/refresh", limited, deps.AuthHandler.Refresh)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, roleMiddleware)
		users.Get("/me", deps.UserHandler.Me)
		users.Patch("/me", deps.UserHandler.UpdateMe)

		admin := users.Group("", middleware.RequireRole(models.RoleAdmin))
		if deps.AuthHandler != nil {
			admin.Post("/create", deps.AuthHandler.RegisterStaff)
		}
		admin.Get("/", deps.UserHandler.List)
		admin.Get("/:id", deps.UserHandler.Get)
		admin.Put("/:id", deps.UserHandler.Update)
		admin.Patch("/:id", deps.UserHandler.Update)
		admin.Delete("/:id", deps.UserHandler.Delete)
		admin.Post("/:id/set_role", deps.UserHandler.SetRole)
	}

	if deps.CatalogHandler != nil {
		categories := api.Group("/categories", jwtMiddleware, roleMiddleware)
		categories.Get("/", deps.CatalogHandler.ListCategories)
		categories.Get("/:id", deps.CatalogHandler.GetCategory)

		adminCategories := categories.Group("", middleware.RequireRole(models.RoleAdmin))
		adminCategories.Post("/", deps.CatalogHandler.CreateCategory)
		adminCategories.Patch("/:id", deps.CatalogHandler.UpdateCategory)
		adminCategories.Delete("/:id", deps.CatalogHandler.DeleteCategory)

		types := api.Group("/request-types", jwtMiddleware, roleMiddleware)
		types.Get("/", deps.CatalogHandler.ListRequestTypes)
		types.Get("/:id", deps.CatalogHandler.GetRequestType)

		adminTypes := types.Group("", middleware.RequireRole(models.RoleAdmin))
		adminTypes.Post("/", deps.CatalogHandler.CreateRequestType)
		adminTypes.Patch("/:id", deps.CatalogHandler.UpdateRequestType)
		adminTypes.Delete("/:id", deps.CatalogHandler.DeleteRequestType)
	}

	if deps.RequestHandler != nil {
		requests := api.Group("/requests", jwtMiddleware, roleMiddleware)
		requests.Get("/", deps.RequestHandler.List)
		requests.Post("/", deps.RequestHandler.Create)
		requests.Get("/:id", deps.RequestHandler.Detail)
		requests.Patch("/:id", middleware.RequireStaff(), deps.RequestHandler.Transition)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware, roleMiddleware)
		notifications.Get("/", deps.NotificationHandler.List)
		notifications.Get("/stream", deps.NotificationHandler.Stream)
		notifications.Post("/:id/mark_as_read", deps.NotificationHandler.MarkRead)
	}

	if deps.AttachmentHandler != nil {
		attachments := api.Group("/attachments", jwtMiddleware, roleMiddleware)
		attachments.Get("/", deps.AttachmentHandler.List)
		attachments.Post("/", deps.AttachmentHandler.Upload)
	}
}
