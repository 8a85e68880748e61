package homeController

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

// Flash hands pending flash data to the page rendering the redirect target.
func Flash(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Flash fetched successfully.", middleware.ConsumeFlash(c))
}

func Health(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
}
