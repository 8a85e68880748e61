package contactRoutes

import (
	"time"

	"coursehub/config"
	adminControllers "coursehub/controllers/admin"
	contactController "coursehub/controllers/contact"
	"coursehub/middleware"
	contactValidator "coursehub/validators/contact"

	"github.com/gofiber/fiber/v2"
)

func SetupContactRoutes(app *fiber.App) {
	app.Post("/contact",
		middleware.RateLimiter("contact", config.Current().ContactPerMin, time.Minute),
		contactValidator.Submit(),
		contactController.Submit)
}

func SetupAdminContactRoutes(adminGroup fiber.Router) {
	adminGroup.Get("/contacts", contactValidator.List(), adminControllers.ListContacts)
	adminGroup.Get("/contacts/:id", contactValidator.ContactID(), adminControllers.ShowContact)
	adminGroup.Patch("/contacts/:id/status", contactValidator.ContactID(), contactValidator.UpdateStatus(), adminControllers.UpdateContactStatus)
	adminGroup.Post("/contacts/:id/status", contactValidator.ContactID(), contactValidator.UpdateStatus(), adminControllers.UpdateContactStatus)
	adminGroup.Post("/contacts/:id/respond", contactValidator.ContactID(), contactValidator.Respond(), adminControllers.RespondContact)
	adminGroup.Post("/contacts/:id/unread", contactValidator.ContactID(), adminControllers.MarkContactUnread)
	adminGroup.Delete("/contacts/:id", contactValidator.ContactID(), adminControllers.DeleteContact)
	adminGroup.Post("/contacts/:id/delete", contactValidator.ContactID(), adminControllers.DeleteContact)
}
