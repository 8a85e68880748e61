package userRoutes

import (
	adminControllers "coursehub/controllers/admin"
	userValidator "coursehub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminUserRoutes(adminGroup fiber.Router) {
	adminGroup.Get("/users", userValidator.List(), adminControllers.ListUsers)
	adminGroup.Post("/users", userValidator.CreateUser(), adminControllers.CreateUser)
	adminGroup.Get("/users/:id", userValidator.UserID(), adminControllers.ShowUser)
	adminGroup.Put("/users/:id", userValidator.UserID(), userValidator.UpdateUser(), adminControllers.UpdateUser)
	adminGroup.Post("/users/:id", userValidator.UserID(), userValidator.UpdateUser(), adminControllers.UpdateUser)
	adminGroup.Delete("/users/:id", userValidator.UserID(), adminControllers.DeleteUser)
	adminGroup.Post("/users/:id/delete", userValidator.UserID(), adminControllers.DeleteUser)
}
