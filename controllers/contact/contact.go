package contactController

import (
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	"coursehub/utils"
	contactValidator "coursehub/validators/contact"

	"github.com/gofiber/fiber/v2"
)

// Submit stores a contact message and notifies the admin inbox.
func Submit(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContact").(*contactValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	contact := models.Contact{
		Name:      reqData.Name,
		Email:     reqData.Email,
		Subject:   reqData.Subject,
		Message:   reqData.Message,
		Status:    models.ContactStatusNew,
		IPAddress: c.IP(),
	}
	if err := repositories.NewContactRepository(database.Database.Db).Create(c.UserContext(), &contact); err != nil {
		logger.Log.Error("store contact message failed", "email", reqData.Email, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Sorry, something went wrong. Please try again later.")
	}

	utils.SendContactNotification(&contact)
	logger.Log.Info("contact message received", "contact_id", contact.ID)

	return middleware.Success(c, fiber.StatusCreated, "Thank you for your message. We will get back to you soon.", fiber.Map{
		"id": contact.ID,
	}, "/contact")
}
