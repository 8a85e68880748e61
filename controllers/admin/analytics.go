package adminController

import (
	"time"

	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/repositories"
	"coursehub/services/ranking"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	dashboardRecentEnrollments = 10
	dashboardRecentContacts    = 5
)

func Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db

	stats, err := repositories.NewStatsRepository(db).Dashboard(ctx, dashboardRecentEnrollments)
	if err != nil {
		logger.Log.Error("dashboard stats failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}
	contacts, err := repositories.NewContactRepository(db).Recent(ctx, dashboardRecentContacts)
	if err != nil {
		logger.Log.Error("recent contacts failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}
	popular, err := repositories.NewStatsRepository(db).PopularCourses(ctx, ranking.DefaultLimit)
	if err != nil {
		logger.Log.Error("popular courses failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"stats":           stats,
		"recent_contacts": contacts,
		"popular_courses": popular,
	})
}

// Popularity ranks every published course with its completion rate.
func Popularity(c *fiber.Ctx) error {
	stats, err := repositories.NewStatsRepository(database.Database.Db).PublishedCourseStats(c.UserContext(), time.Now())
	if err != nil {
		logger.Log.Error("course stats failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load report!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Popularity report fetched successfully.", fiber.Map{
		"courses": ranking.Rank(stats, 0),
	})
}

func CourseEnrollments(c *fiber.Ctx) error {
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}

	rows, pagination, err := repositories.NewProgressRepository(database.Database.Db).ListByCourse(c.UserContext(), crs.ID, validators.ParsePage(c))
	if err != nil {
		logger.Log.Error("list course enrollments failed", "course_id", crs.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", fiber.Map{
		"course":      fiber.Map{"id": crs.ID, "title": crs.Title, "slug": crs.Slug},
		"enrollments": rows,
		"pagination":  pagination,
	})
}
