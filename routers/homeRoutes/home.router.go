package homeRoutes

import (
	homeController "coursehub/controllers/home"

	"github.com/gofiber/fiber/v2"
)

func SetupHomeRoutes(app *fiber.App) {
	app.Get("/health", homeController.Health)
	app.Get("/session/flash", homeController.Flash)
}
