package courseValidator

import (
	"strings"

	"coursehub/middleware"
	"coursehub/repositories"
	"coursehub/utils"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

// CatalogQuery validates the public course listing filters.
func CatalogQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Search     string `query:"search" json:"search" validate:"max=100"`
			Difficulty string `query:"difficulty" json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
			Page       int    `query:"page" json:"page" validate:"gte=0"`
			Limit      int    `query:"limit" json:"limit" validate:"gte=0,lte=100"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Search = strings.TrimSpace(reqData.Search)
		reqData.Difficulty = strings.ToLower(strings.TrimSpace(reqData.Difficulty))

		errors := validators.Struct(reqData)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("catalogFilter", repositories.CourseFilter{
			Search:     reqData.Search,
			Difficulty: reqData.Difficulty,
			Page:       repositories.Page{Page: reqData.Page, Limit: reqData.Limit},
		})
		return c.Next()
	}
}

// CourseSlug checks the :slug route parameter.
func CourseSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if !utils.IsValidSlug(slug) {
			return middleware.Failure(c, fiber.StatusNotFound, "Course not found!")
		}
		c.Locals("courseSlug", slug)
		return c.Next()
	}
}

// LessonSlug checks both :slug and :lessonSlug.
func LessonSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		lessonSlug := strings.TrimSpace(c.Params("lessonSlug"))
		if !utils.IsValidSlug(slug) || !utils.IsValidSlug(lessonSlug) {
			return middleware.Failure(c, fiber.StatusNotFound, "Lesson not found!")
		}
		c.Locals("courseSlug", slug)
		c.Locals("lessonSlug", lessonSlug)
		return c.Next()
	}
}
