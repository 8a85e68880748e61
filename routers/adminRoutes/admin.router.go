package adminRoutes

import (
	adminControllers "coursehub/controllers/admin"
	"coursehub/middleware"
	contactRoutes "coursehub/routers/contactRoutes"
	courseRoutes "coursehub/routers/courseRoutes"
	userRoutes "coursehub/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts the back-office. Every route requires an admin token.
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.AdminOnly)

	adminGroup.Get("/", adminControllers.Dashboard)
	adminGroup.Get("/analytics/popularity", adminControllers.Popularity)

	courseRoutes.SetupAdminCourseRoutes(adminGroup)
	userRoutes.SetupAdminUserRoutes(adminGroup)
	contactRoutes.SetupAdminContactRoutes(adminGroup)
}
