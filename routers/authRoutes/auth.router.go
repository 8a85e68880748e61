package authRoutes

import (
	"time"

	authControllers "coursehub/controllers/auth"
	"coursehub/middleware"
	authValidators "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

const loginAttemptsPerMinute = 10

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", middleware.RateLimiter("login", loginAttemptsPerMinute, time.Minute), authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", authControllers.Logout)
	authGroup.Get("/me", middleware.JWTMiddleware, middleware.ActiveUser, authControllers.Me)
}
