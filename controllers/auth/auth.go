package authController

import (
	"errors"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	"coursehub/utils"
	authValidator "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	users := repositories.NewUserRepository(database.Database.Db)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.Current().SaltRound)
	if err != nil {
		logger.Log.Error("hash password failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if err := users.Create(c.UserContext(), &newUser); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return middleware.ValidationFailed(c,
				map[string]string{"email": "The email has already been taken!"},
				map[string]string{"name": reqData.Name, "email": reqData.Email})
		}
		logger.Log.Error("create user failed", "email", reqData.Email, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to Signup user!")
	}

	token, err := middleware.GenerateJWT(newUser.ID, newUser.Name, newUser.Role, newUser.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}
	middleware.SetTokenCookie(c, token)

	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	return middleware.Success(c, fiber.StatusCreated, "User registered successfully.", fiber.Map{
		"user":  newUser,
		"token": token,
	}, "/my/courses")
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	users := repositories.NewUserRepository(database.Database.Db)
	user, err := users.FindByEmail(c.UserContext(), reqData.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Log.Error("login lookup failed", "error", err)
		}
		return middleware.Failure(c, fiber.StatusUnauthorized, "Invalid credentials!")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		logger.Log.Info("failed login", "user_id", user.ID, "ip", c.IP())
		return middleware.Failure(c, fiber.StatusUnauthorized, "Invalid credentials!")
	}

	if user.IsBlocked {
		return middleware.Failure(c, fiber.StatusForbidden, "Your account has been blocked.")
	}

	if err := users.TouchLastLogin(c.UserContext(), user.ID); err != nil {
		logger.Log.Warn("update last login failed", "user_id", user.ID, "error", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}
	middleware.SetTokenCookie(c, token)

	logger.Log.Info("user logged in", "user_id", user.ID, "ip", c.IP())

	target := "/my/courses"
	if user.IsAdmin() {
		target = "/admin"
	}
	return middleware.Success(c, fiber.StatusOK, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	}, target)
}

func Logout(c *fiber.Ctx) error {
	middleware.ClearTokenCookie(c)
	return middleware.Success(c, fiber.StatusOK, "Logged out successfully.", nil, "/")
}

func Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.Unauthorized(c, "Unauthorized!")
	}

	user, err := repositories.NewUserRepository(database.Database.Db).FindByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return middleware.Unauthorized(c, "User not found!")
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch profile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}
