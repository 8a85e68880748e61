package middleware

import (
	"errors"

	"coursehub/database"
	"coursehub/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadCurrentUser re-reads the token's user so role and block changes apply
// to tokens issued before them. On failure it writes the response and
// returns a nil user.
func loadCurrentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, Unauthorized(c, "Unauthorized!")
	}

	var user models.User
	err := database.Database.Db.WithContext(c.UserContext()).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized(c, "User not found!")
		}
		return nil, JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
	}
	return &user, nil
}

// ActiveUser must run after JWTMiddleware. Blocked accounts are refused
// even while their token is still valid.
func ActiveUser(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if user == nil {
		return err
	}
	if user.IsBlocked {
		return Failure(c, fiber.StatusForbidden, "Your account has been blocked.")
	}

	c.Locals("currentUser", user)
	return c.Next()
}

// AdminOnly must run after JWTMiddleware. The role is re-read from the
// database so demoted or blocked admins lose access immediately.
func AdminOnly(c *fiber.Ctx) error {
	user, err := loadCurrentUser(c)
	if user == nil {
		return err
	}
	if user.IsBlocked || !user.IsAdmin() {
		return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	c.Locals("currentUser", user)
	return c.Next()
}
