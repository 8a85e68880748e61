package adminController

import (
	"errors"
	"fmt"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	userValidator "coursehub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func userAdminURL(id uint) string {
	return fmt.Sprintf("/admin/users/%d", id)
}

func emailTaken(c *fiber.Ctx, req *userValidator.UserRequest) error {
	return middleware.ValidationFailed(c,
		map[string]string{"email": "The email has already been taken!"},
		map[string]string{"name": req.Name, "email": req.Email, "role": req.Role})
}

func ListUsers(c *fiber.Ctx) error {
	filter, _ := c.Locals("userFilter").(repositories.UserFilter)

	users, pagination, err := repositories.NewUserRepository(database.Database.Db).List(c.UserContext(), filter)
	if err != nil {
		logger.Log.Error("admin list users failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", fiber.Map{
		"users":      users,
		"pagination": pagination,
	})
}

func loadUser(c *fiber.Ctx) (*models.User, error) {
	userID, _ := c.Locals("targetUserID").(uint)
	user, err := repositories.NewUserRepository(database.Database.Db).FindByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, middleware.Failure(c, fiber.StatusNotFound, "User not found!")
		}
		logger.Log.Error("load user failed", "user_id", userID, "error", err)
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}
	return user, nil
}

func ShowUser(c *fiber.Ctx) error {
	user, err := loadUser(c)
	if user == nil {
		return err
	}
	enrollments, err := repositories.NewProgressRepository(database.Database.Db).ListByUser(c.UserContext(), user.ID)
	if err != nil {
		logger.Log.Error("load user enrollments failed", "user_id", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", fiber.Map{
		"user":        user,
		"enrollments": enrollments,
	})
}

func CreateUser(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedUser").(*userValidator.UserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), config.Current().SaltRound)
	if err != nil {
		logger.Log.Error("hash password failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create user!")
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		IsBlocked: req.IsBlocked,
	}
	if err := repositories.NewUserRepository(database.Database.Db).Create(c.UserContext(), &user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return emailTaken(c, req)
		}
		logger.Log.Error("create user failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create user!")
	}

	logger.Log.Info("user created by admin", "user_id", user.ID, "role", user.Role)
	return middleware.Success(c, fiber.StatusCreated, "User created successfully.", user, userAdminURL(user.ID))
}

// UpdateUser edits profile, role and block state. Admins cannot demote or
// block themselves.
func UpdateUser(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedUser").(*userValidator.UserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user, err := loadUser(c)
	if user == nil {
		return err
	}

	adminID, _ := c.Locals("userId").(uint)
	if user.ID == adminID && (req.Role != models.RoleAdmin || req.IsBlocked) {
		return middleware.ValidationFailed(c,
			map[string]string{"role": "You cannot remove your own admin access!"},
			map[string]string{"name": req.Name, "email": req.Email, "role": req.Role})
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.IsBlocked = req.IsBlocked
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), config.Current().SaltRound)
		if err != nil {
			logger.Log.Error("hash password failed", "error", err)
			return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update user!")
		}
		user.Password = string(hashed)
	}

	if err := repositories.NewUserRepository(database.Database.Db).Save(c.UserContext(), user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return emailTaken(c, req)
		}
		logger.Log.Error("update user failed", "user_id", user.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update user!")
	}

	return middleware.Success(c, fiber.StatusOK, "User updated successfully.", user, userAdminURL(user.ID))
}

func DeleteUser(c *fiber.Ctx) error {
	targetID, _ := c.Locals("targetUserID").(uint)
	adminID, _ := c.Locals("userId").(uint)
	if targetID == adminID {
		return middleware.Failure(c, fiber.StatusBadRequest, "You cannot delete your own account!")
	}

	err := repositories.NewUserRepository(database.Database.Db).Delete(c.UserContext(), targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.Failure(c, fiber.StatusNotFound, "User not found!")
	}
	if err != nil {
		logger.Log.Error("delete user failed", "user_id", targetID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to delete user!")
	}

	logger.Log.Info("user deleted", "user_id", targetID, "by", adminID)
	return middleware.Success(c, fiber.StatusOK, "User deleted successfully.", nil, "/admin/users")
}
