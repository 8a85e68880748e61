package contactValidator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

type SubmitRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=255"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" form:"subject" validate:"required,max=255"`
	Message string `json:"message" form:"message" validate:"required"`
}

// Submit validates the public contact form.
func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Subject = strings.TrimSpace(reqData.Subject)
		reqData.Message = strings.TrimSpace(reqData.Message)

		errors := validators.Struct(reqData)
		if _, ok := errors["message"]; !ok && utf8.RuneCountInString(reqData.Message) > models.ContactMessageMaxLength {
			errors["message"] = fmt.Sprintf("The message may not be greater than %d characters!", models.ContactMessageMaxLength)
		}
		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, map[string]string{
				"name":    reqData.Name,
				"email":   reqData.Email,
				"subject": reqData.Subject,
				"message": reqData.Message,
			})
		}

		c.Locals("validatedContact", reqData)
		return c.Next()
	}
}

func isContactStatus(s string) bool {
	for _, status := range models.ContactStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// List validates the admin inbox filters.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := strings.ToLower(strings.TrimSpace(c.Query("status")))
		if status != "" && !isContactStatus(status) {
			return middleware.ValidationErrorResponse(c, map[string]string{"status": "The selected status is invalid!"})
		}
		c.Locals("contactFilter", repositories.ContactFilter{
			Status: status,
			IsRead: validators.OptionalBool(c.Query("is_read")),
			Search: strings.TrimSpace(c.Query("search")),
			Page:   validators.ParsePage(c),
		})
		return c.Next()
	}
}

// ContactID validates the :id route parameter.
func ContactID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		contactID, ok := validators.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Contact ID!", nil)
		}
		c.Locals("contactID", contactID)
		return c.Next()
	}
}

// UpdateStatus validates a status change.
func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `json:"status" form:"status" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))

		errors := validators.Struct(reqData)
		if len(errors) == 0 && !isContactStatus(reqData.Status) {
			errors["status"] = "The selected status is invalid!"
		}
		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, map[string]string{"status": reqData.Status})
		}

		c.Locals("contactStatus", reqData.Status)
		return c.Next()
	}
}

// Respond validates an admin reply.
func Respond() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Response string `json:"admin_response" form:"admin_response" validate:"required,max=5000"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Response = strings.TrimSpace(reqData.Response)

		errors := validators.Struct(reqData)
		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, map[string]string{"admin_response": reqData.Response})
		}

		c.Locals("contactResponse", reqData.Response)
		return c.Next()
	}
}
