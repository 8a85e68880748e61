package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// WantsJSON reports whether the client expects a JSON answer rather than a
// redirect: XHR/fetch calls, API clients and anything that is not a browser
// form post.
func WantsJSON(c *fiber.Ctx) bool {
	if strings.EqualFold(c.Get(fiber.HeaderXRequestedWith), "xmlhttprequest") {
		return true
	}
	accept := c.Get(fiber.HeaderAccept)
	if strings.Contains(accept, fiber.MIMEApplicationJSON) {
		return true
	}
	if strings.Contains(accept, fiber.MIMETextHTML) {
		return false
	}
	ct := c.Get(fiber.HeaderContentType)
	return !strings.HasPrefix(ct, fiber.MIMEApplicationForm) && !strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}

// Success answers JSON clients with the envelope and browsers with a redirect
// to target carrying a flash message.
func Success(c *fiber.Ctx, statusCode int, message string, data interface{}, target string) error {
	if WantsJSON(c) {
		return JsonResponse(c, statusCode, true, message, data)
	}
	SetFlash(c, FlashSuccess, message)
	return c.Redirect(target, fiber.StatusSeeOther)
}

// Failure is the error counterpart of Success; browsers are sent back.
func Failure(c *fiber.Ctx, statusCode int, message string) error {
	if WantsJSON(c) {
		return JsonResponse(c, statusCode, false, message, nil)
	}
	SetFlash(c, FlashError, message)
	return c.Redirect(backURL(c, "/"), fiber.StatusSeeOther)
}

// ValidationFailed answers 422 for JSON clients. Browsers are redirected back
// with the field errors and their non-file input flashed.
func ValidationFailed(c *fiber.Ctx, errors map[string]string, old map[string]string) error {
	if WantsJSON(c) {
		return ValidationErrorResponse(c, errors)
	}
	SetFlashMap(c, FlashErrors, errors)
	SetFlashMap(c, FlashOld, old)
	return c.Redirect(backURL(c, "/"), fiber.StatusSeeOther)
}

// backURL returns the referring page when it belongs to this host.
func backURL(c *fiber.Ctx, fallback string) string {
	ref := c.Get(fiber.HeaderReferer)
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != string(c.Request().Host())) {
		return fallback
	}
	return u.RequestURI()
}
