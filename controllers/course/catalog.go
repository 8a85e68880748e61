package courseController

import (
	"errors"

	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models/course"
	"coursehub/repositories"
	"coursehub/services/progress"
	"coursehub/services/ranking"

	"github.com/gofiber/fiber/v2"
)

const featuredLimit = 6

// CourseView adds derived totals to a course for listing and detail pages.
type CourseView struct {
	course.Course
	TotalDuration int `json:"total_duration"`
	LessonCount   int `json:"lesson_count"`
}

func newCourseView(c course.Course) CourseView {
	return CourseView{Course: c, TotalDuration: c.TotalDuration(), LessonCount: len(c.Lessons)}
}

func newCourseViews(courses []course.Course) []CourseView {
	out := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		out = append(out, newCourseView(c))
	}
	return out
}

// Home returns featured and popular courses plus headline counts.
func Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db

	featured, err := repositories.NewCourseRepository(db).Featured(ctx, featuredLimit)
	if err != nil {
		logger.Log.Error("load featured courses failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load courses!", nil)
	}

	popular, err := repositories.NewStatsRepository(db).PopularCourses(ctx, ranking.DefaultLimit)
	if err != nil {
		logger.Log.Error("load popular courses failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load courses!", nil)
	}

	publishedCount, err := repositories.NewCourseRepository(db).Count(ctx, true)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load courses!", nil)
	}
	learners, err := repositories.NewUserRepository(db).Count(ctx)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Home fetched successfully.", fiber.Map{
		"featured_courses": newCourseViews(featured),
		"popular_courses":  popular,
		"stats": fiber.Map{
			"published_courses": publishedCount,
			"learners":          learners,
		},
	})
}

// ListCourses pages through the published catalog.
func ListCourses(c *fiber.Ctx) error {
	filter, ok := c.Locals("catalogFilter").(repositories.CourseFilter)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courses, pagination, err := repositories.NewCourseRepository(database.Database.Db).ListPublished(c.UserContext(), filter)
	if err != nil {
		logger.Log.Error("list courses failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", fiber.Map{
		"courses":    newCourseViews(courses),
		"pagination": pagination,
	})
}

// ShowCourse returns a published course with its published lessons and,
// for a signed-in user, their enrollment state.
func ShowCourse(c *fiber.Ctx) error {
	slug, _ := c.Locals("courseSlug").(string)

	crs, err := repositories.NewCourseRepository(database.Database.Db).FindPublishedBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return middleware.Failure(c, fiber.StatusNotFound, "Course not found!")
		}
		logger.Log.Error("load course failed", "slug", slug, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	enrollment := fiber.Map{"enrolled": false}
	if userID, ok := c.Locals("userId").(uint); ok {
		p, err := repositories.NewProgressRepository(database.Database.Db).Find(c.UserContext(), userID, crs.ID)
		switch {
		case err == nil:
			enrollment = fiber.Map{
				"enrolled": true,
				"progress": progress.New(p, crs.Lessons).Summary(),
			}
		case !errors.Is(err, repositories.ErrNotFound):
			logger.Log.Error("load enrollment failed", "user_id", userID, "course_id", crs.ID, "error", err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":     newCourseView(*crs),
		"enrollment": enrollment,
	})
}
