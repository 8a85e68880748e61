package userValidator

import (
	"strconv"
	"strings"

	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

// UserRequest is shared by admin create and update. Password is optional on
// update and keeps the current hash when empty.
type UserRequest struct {
	Name      string `json:"name" form:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" form:"email" validate:"required,email,max=255"`
	Password  string `json:"password" form:"password" validate:"omitempty,min=8,max=72"`
	Role      string `json:"role" form:"role" validate:"required,oneof=USER ADMIN"`
	IsBlocked bool   `json:"is_blocked" form:"-"`
}

func parseUser(c *fiber.Ctx, requirePassword bool) error {
	reqData := new(UserRequest)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	ct := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		reqData.IsBlocked = validators.FormBool(c.FormValue("is_blocked"))
	}

	reqData.Name = strings.TrimSpace(reqData.Name)
	reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
	reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))
	if reqData.Role == "" {
		reqData.Role = models.RoleUser
	}

	errors := validators.Struct(reqData)
	if requirePassword && reqData.Password == "" {
		errors["password"] = "The password field is required!"
	}
	if len(errors) > 0 {
		return middleware.ValidationFailed(c, errors, map[string]string{
			"name":       reqData.Name,
			"email":      reqData.Email,
			"role":       reqData.Role,
			"is_blocked": strconv.FormatBool(reqData.IsBlocked),
		})
	}

	c.Locals("validatedUser", reqData)
	return c.Next()
}

func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseUser(c, true)
	}
}

func UpdateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseUser(c, false)
	}
}

// UserID validates the :id route parameter.
func UserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := validators.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}
		c.Locals("targetUserID", userID)
		return c.Next()
	}
}

// List validates the admin user search.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := strings.ToUpper(strings.TrimSpace(c.Query("role")))
		if role != "" && role != models.RoleUser && role != models.RoleAdmin {
			return middleware.ValidationErrorResponse(c, map[string]string{"role": "The selected role is invalid!"})
		}
		c.Locals("userFilter", repositories.UserFilter{
			Search: strings.TrimSpace(c.Query("search")),
			Role:   role,
			Page:   validators.ParsePage(c),
		})
		return c.Next()
	}
}
