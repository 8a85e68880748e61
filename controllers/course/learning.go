package courseController

import (
	"errors"
	"fmt"

	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models/course"
	"coursehub/repositories"
	"coursehub/services/progress"
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
)

func courseURL(slug string) string {
	return "/courses/" + slug
}

func lessonURL(courseSlug, lessonSlug string) string {
	return fmt.Sprintf("/courses/%s/lessons/%s", courseSlug, lessonSlug)
}

// publishedCourse loads the course named by the :slug route parameter or
// writes the not-found answer.
func publishedCourse(c *fiber.Ctx) (*course.Course, error) {
	slug, _ := c.Locals("courseSlug").(string)
	crs, err := repositories.NewCourseRepository(database.Database.Db).FindPublishedBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, middleware.Failure(c, fiber.StatusNotFound, "Course not found!")
		}
		logger.Log.Error("load course failed", "slug", slug, "error", err)
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	return crs, nil
}

func findLesson(crs *course.Course, slug string) *course.Lesson {
	for i := range crs.Lessons {
		if crs.Lessons[i].Slug == slug {
			return &crs.Lessons[i]
		}
	}
	return nil
}

// progressFailure maps errors from a progress update onto a response.
func progressFailure(c *fiber.Ctx, err error, userID, courseID uint) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return middleware.Failure(c, fiber.StatusForbidden, "You must enroll in this course to access its lessons.")
	case errors.Is(err, progress.ErrLessonNotInCourse):
		return middleware.Failure(c, fiber.StatusNotFound, "Lesson not found!")
	case errors.Is(err, repositories.ErrVersionConflict):
		logger.Log.Warn("progress update gave up after retries", "user_id", userID, "course_id", courseID)
		return middleware.Failure(c, fiber.StatusConflict, "Your progress changed in the meantime. Please try again.")
	default:
		logger.Log.Error("progress update failed", "user_id", userID, "course_id", courseID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update progress!")
	}
}

func Enroll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.Unauthorized(c, "Unauthorized!")
	}

	crs, err := publishedCourse(c)
	if crs == nil {
		return err
	}

	db := database.Database.Db
	p, err := repositories.NewProgressRepository(db).Enroll(c.UserContext(), userID, crs.ID)
	if errors.Is(err, repositories.ErrAlreadyEnrolled) {
		return middleware.Success(c, fiber.StatusOK, "You are already enrolled in this course.", fiber.Map{
			"already_enrolled": true,
			"progress":         progress.New(p, crs.Lessons).Summary(),
		}, courseURL(crs.Slug))
	}
	if err != nil {
		logger.Log.Error("enroll failed", "user_id", userID, "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to enroll in course!")
	}

	if user, err := repositories.NewUserRepository(db).FindByID(c.UserContext(), userID); err == nil {
		utils.SendEnrollmentEmail(user.Email, user.Name, crs.Title)
	}
	logger.Log.Info("user enrolled", "user_id", userID, "course_id", crs.ID)

	target := courseURL(crs.Slug)
	if first := progress.New(p, crs.Lessons).NextLesson(); first != nil {
		target = lessonURL(crs.Slug, first.Slug)
	}
	return middleware.Success(c, fiber.StatusCreated, "Enrolled in course successfully!", fiber.Map{
		"already_enrolled": false,
		"progress":         progress.New(p, crs.Lessons).Summary(),
	}, target)
}

// updateLessonProgress resolves the course and lesson of the request and
// applies fn to the caller's progress through a tracker.
func updateLessonProgress(c *fiber.Ctx, fn func(t *progress.Tracker, lesson *course.Lesson) error) (*course.Course, *course.Lesson, *progress.Tracker, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, nil, nil, middleware.Unauthorized(c, "Unauthorized!")
	}

	crs, err := publishedCourse(c)
	if crs == nil {
		return nil, nil, nil, err
	}
	lessonSlug, _ := c.Locals("lessonSlug").(string)
	lesson := findLesson(crs, lessonSlug)
	if lesson == nil {
		return nil, nil, nil, middleware.Failure(c, fiber.StatusNotFound, "Lesson not found!")
	}

	p, err := repositories.NewProgressRepository(database.Database.Db).Update(c.UserContext(), userID, crs.ID,
		func(p *course.UserCourseProgress) error {
			return fn(progress.New(p, crs.Lessons), lesson)
		})
	if err != nil {
		return nil, nil, nil, progressFailure(c, err, userID, crs.ID)
	}
	return crs, lesson, progress.New(p, crs.Lessons), nil
}

func lessonLink(courseSlug string, l *course.Lesson) fiber.Map {
	if l == nil {
		return nil
	}
	return fiber.Map{"id": l.ID, "title": l.Title, "slug": l.Slug, "url": lessonURL(courseSlug, l.Slug)}
}

// ShowLesson delivers a lesson to an enrolled user and records the visit.
func ShowLesson(c *fiber.Ctx) error {
	crs, lesson, tracker, err := updateLessonProgress(c, func(t *progress.Tracker, l *course.Lesson) error {
		t.MarkAsStarted()
		return t.TrackLessonAccess(l.ID, false)
	})
	if tracker == nil {
		return err
	}

	prev, next := tracker.Neighbours(lesson.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully.", fiber.Map{
		"course": fiber.Map{
			"id":             crs.ID,
			"title":          crs.Title,
			"slug":           crs.Slug,
			"total_duration": crs.TotalDuration(),
		},
		"lesson":      lesson,
		"is_complete": tracker.Progress.HasCompleted(lesson.ID),
		"previous":    lessonLink(crs.Slug, prev),
		"next":        lessonLink(crs.Slug, next),
		"progress":    tracker.Summary(),
	})
}

func CompleteLesson(c *fiber.Ctx) error {
	crs, lesson, tracker, err := updateLessonProgress(c, func(t *progress.Tracker, l *course.Lesson) error {
		return t.MarkLessonCompleted(l.ID)
	})
	if tracker == nil {
		return err
	}

	target := courseURL(crs.Slug)
	if next := tracker.NextLesson(); next != nil {
		target = lessonURL(crs.Slug, next.Slug)
	}
	return middleware.Success(c, fiber.StatusOK, "Lesson marked as completed.", fiber.Map{
		"lesson_id": lesson.ID,
		"progress":  tracker.Summary(),
	}, target)
}

// NavigateForward completes the current lesson and points at the one after it.
func NavigateForward(c *fiber.Ctx) error {
	crs, lesson, tracker, err := updateLessonProgress(c, func(t *progress.Tracker, l *course.Lesson) error {
		return t.TrackLessonAccess(l.ID, true)
	})
	if tracker == nil {
		return err
	}

	_, next := tracker.Neighbours(lesson.ID)
	target := courseURL(crs.Slug)
	if next != nil {
		target = lessonURL(crs.Slug, next.Slug)
	}
	return middleware.Success(c, fiber.StatusOK, "Progress saved.", fiber.Map{
		"lesson_id": lesson.ID,
		"next":      lessonLink(crs.Slug, next),
		"progress":  tracker.Summary(),
	}, target)
}

func CompleteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.Unauthorized(c, "Unauthorized!")
	}

	crs, err := publishedCourse(c)
	if crs == nil {
		return err
	}

	p, err := repositories.NewProgressRepository(database.Database.Db).Update(c.UserContext(), userID, crs.ID,
		func(p *course.UserCourseProgress) error {
			progress.New(p, crs.Lessons).CompleteCourse()
			return nil
		})
	if err != nil {
		return progressFailure(c, err, userID, crs.ID)
	}

	logger.Log.Info("course completed", "user_id", userID, "course_id", crs.ID)
	return middleware.Success(c, fiber.StatusOK, "Congratulations! Course completed.", fiber.Map{
		"progress": progress.New(p, crs.Lessons).Summary(),
	}, courseURL(crs.Slug))
}

// MyCourses lists the signed-in user's enrollments.
func MyCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.Unauthorized(c, "Unauthorized!")
	}

	rows, err := repositories.NewProgressRepository(database.Database.Db).ListByUser(c.UserContext(), userID)
	if err != nil {
		logger.Log.Error("list enrollments failed", "user_id", userID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": rows,
	})
}
