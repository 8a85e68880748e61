package adminController

import (
	"errors"
	"fmt"

	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/repositories"
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
)

func contactAdminURL(id uint) string {
	return fmt.Sprintf("/admin/contacts/%d", id)
}

func ListContacts(c *fiber.Ctx) error {
	filter, _ := c.Locals("contactFilter").(repositories.ContactFilter)
	repo := repositories.NewContactRepository(database.Database.Db)

	contacts, pagination, err := repo.List(c.UserContext(), filter)
	if err != nil {
		logger.Log.Error("admin list contacts failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contacts!", nil)
	}
	unread, err := repo.CountUnread(c.UserContext())
	if err != nil {
		logger.Log.Warn("count unread contacts failed", "error", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contacts fetched successfully.", fiber.Map{
		"contacts":   contacts,
		"unread":     unread,
		"pagination": pagination,
	})
}

func loadContact(c *fiber.Ctx) (*models.Contact, error) {
	contactID, _ := c.Locals("contactID").(uint)
	contact, err := repositories.NewContactRepository(database.Database.Db).FindByID(c.UserContext(), contactID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, middleware.Failure(c, fiber.StatusNotFound, "Contact not found!")
		}
		logger.Log.Error("load contact failed", "contact_id", contactID, "error", err)
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contact!", nil)
	}
	return contact, nil
}

// ShowContact returns one message and marks it read.
func ShowContact(c *fiber.Ctx) error {
	contact, err := loadContact(c)
	if contact == nil {
		return err
	}
	if !contact.IsRead {
		if err := repositories.NewContactRepository(database.Database.Db).SetRead(c.UserContext(), contact.ID, true); err != nil {
			logger.Log.Warn("mark contact read failed", "contact_id", contact.ID, "error", err)
		} else {
			contact.IsRead = true
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact fetched successfully.", contact)
}

func UpdateContactStatus(c *fiber.Ctx) error {
	contactID, _ := c.Locals("contactID").(uint)
	status, _ := c.Locals("contactStatus").(string)

	err := repositories.NewContactRepository(database.Database.Db).UpdateStatus(c.UserContext(), contactID, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.Failure(c, fiber.StatusNotFound, "Contact not found!")
	}
	if err != nil {
		logger.Log.Error("update contact status failed", "contact_id", contactID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update contact!")
	}
	return middleware.Success(c, fiber.StatusOK, "Contact status updated.", fiber.Map{
		"id":     contactID,
		"status": status,
	}, contactAdminURL(contactID))
}

// RespondContact stores the admin's answer and emails it to the sender.
func RespondContact(c *fiber.Ctx) error {
	contactID, _ := c.Locals("contactID").(uint)
	response, _ := c.Locals("contactResponse").(string)
	adminID, _ := c.Locals("userId").(uint)
	repo := repositories.NewContactRepository(database.Database.Db)

	err := repo.Respond(c.UserContext(), contactID, adminID, response)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.Failure(c, fiber.StatusNotFound, "Contact not found!")
	}
	if err != nil {
		logger.Log.Error("respond to contact failed", "contact_id", contactID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to save response!")
	}

	contact, err := repo.FindByID(c.UserContext(), contactID)
	if err != nil {
		logger.Log.Error("reload contact failed", "contact_id", contactID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to save response!")
	}
	utils.SendContactResponse(contact)

	return middleware.Success(c, fiber.StatusOK, "Response sent successfully.", contact, contactAdminURL(contactID))
}

func MarkContactUnread(c *fiber.Ctx) error {
	contactID, _ := c.Locals("contactID").(uint)

	err := repositories.NewContactRepository(database.Database.Db).SetRead(c.UserContext(), contactID, false)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.Failure(c, fiber.StatusNotFound, "Contact not found!")
	}
	if err != nil {
		logger.Log.Error("mark contact unread failed", "contact_id", contactID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update contact!")
	}
	return middleware.Success(c, fiber.StatusOK, "Contact marked as unread.", fiber.Map{"id": contactID}, "/admin/contacts")
}

func DeleteContact(c *fiber.Ctx) error {
	contactID, _ := c.Locals("contactID").(uint)

	err := repositories.NewContactRepository(database.Database.Db).Delete(c.UserContext(), contactID)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.Failure(c, fiber.StatusNotFound, "Contact not found!")
	}
	if err != nil {
		logger.Log.Error("delete contact failed", "contact_id", contactID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to delete contact!")
	}
	return middleware.Success(c, fiber.StatusOK, "Contact deleted successfully.", nil, "/admin/contacts")
}
