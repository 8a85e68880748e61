package adminController

import (
	"context"
	"errors"
	"fmt"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models/course"
	"coursehub/repositories"
	"coursehub/utils"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func courseAdminURL(id uint) string {
	return fmt.Sprintf("/admin/courses/%d", id)
}

// courseSlug picks the slug for a course: the requested one must be free,
// a generated one gets a numeric suffix until it is.
func courseSlug(ctx context.Context, repo *repositories.CourseRepository, requested, title string, excludeID uint) (string, bool, error) {
	exists := func(s string) (bool, error) {
		return repo.SlugExists(ctx, s, excludeID)
	}
	if requested != "" {
		taken, err := exists(requested)
		return requested, !taken, err
	}
	base := utils.Slugify(title, utils.SlugMaxLength)
	if base == "" {
		base = "course"
	}
	slug, err := utils.UniqueSlug(base, exists)
	return slug, err == nil, err
}

// storeThumbnail saves and resizes an uploaded thumbnail. A failed resize
// keeps the original upload.
func storeThumbnail(req *courseValidator.CourseRequest) (string, error) {
	stored, err := utils.SaveUploadedFile(req.Thumbnail, utils.ThumbnailUpload())
	if err != nil {
		return "", err
	}
	resized, err := utils.ResizeThumbnail(stored, config.Current().ThumbnailWidth)
	if err != nil {
		logger.Log.Warn("thumbnail resize failed, keeping original", "path", stored.URL, "error", err)
		return stored.URL, nil
	}
	return resized.URL, nil
}

func applyCourseRequest(crs *course.Course, req *courseValidator.CourseRequest) {
	crs.Title = req.Title
	crs.ShortDescription = req.ShortDescription
	crs.Description = req.Description
	crs.Difficulty = req.Difficulty
	crs.EstimatedHours = req.EstimatedHours
	crs.SortOrder = req.SortOrder
	crs.PriceLabel = req.PriceLabel
	crs.Tags = req.Tags
	crs.IsPublished = req.IsPublished
	crs.IsFeatured = req.IsFeatured
}

func slugTaken(c *fiber.Ctx, req *courseValidator.CourseRequest) error {
	return middleware.ValidationFailed(c,
		map[string]string{"slug": "The slug has already been taken!"},
		map[string]string{"title": req.Title, "slug": req.Slug})
}

func ListCourses(c *fiber.Ctx) error {
	filter, _ := c.Locals("adminCourseFilter").(repositories.CourseFilter)

	courses, pagination, err := repositories.NewCourseRepository(database.Database.Db).List(c.UserContext(), filter)
	if err != nil {
		logger.Log.Error("admin list courses failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", fiber.Map{
		"courses":    courses,
		"pagination": pagination,
	})
}

// loadCourse fetches the course named by the courseID local with all its
// lessons, writing a 404 when it does not exist.
func loadCourse(c *fiber.Ctx) (*course.Course, error) {
	courseID, _ := c.Locals("courseID").(uint)
	crs, err := repositories.NewCourseRepository(database.Database.Db).FindByID(c.UserContext(), courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, middleware.Failure(c, fiber.StatusNotFound, "Course not found!")
		}
		logger.Log.Error("load course failed", "course_id", courseID, "error", err)
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	return crs, nil
}

func ShowCourse(c *fiber.Ctx) error {
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}

	enrollments, err := repositories.NewProgressRepository(database.Database.Db).CountByCourse(c.UserContext(), crs.ID)
	if err != nil {
		logger.Log.Warn("count enrollments failed", "course_id", crs.ID, "error", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":         crs,
		"total_duration": crs.TotalDuration(),
		"enrollments":    enrollments,
	})
}

func CreateCourse(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	ctx := c.UserContext()
	repo := repositories.NewCourseRepository(database.Database.Db)

	slug, free, err := courseSlug(ctx, repo, req.Slug, req.Title, 0)
	if err != nil {
		logger.Log.Error("course slug lookup failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create course!")
	}
	if !free {
		return slugTaken(c, req)
	}

	crs := course.Course{Slug: slug}
	applyCourseRequest(&crs, req)

	if req.Thumbnail != nil {
		if crs.Thumbnail, err = storeThumbnail(req); err != nil {
			logger.Log.Error("store thumbnail failed", "error", err)
			return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to upload thumbnail!")
		}
	}

	if err := repo.Create(ctx, &crs); err != nil {
		_ = utils.RemoveUpload(crs.Thumbnail)
		if errors.Is(err, repositories.ErrSlugTaken) {
			return slugTaken(c, req)
		}
		logger.Log.Error("create course failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create course!")
	}

	logger.Log.Info("course created", "course_id", crs.ID, "slug", crs.Slug)
	return middleware.Success(c, fiber.StatusCreated, "Course created successfully.", crs, courseAdminURL(crs.ID))
}

// UpdateCourse replaces every editable field with the submitted form.
func UpdateCourse(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}
	ctx := c.UserContext()
	repo := repositories.NewCourseRepository(database.Database.Db)

	requested := req.Slug
	if requested == "" {
		requested = crs.Slug
	}
	slug, free, err := courseSlug(ctx, repo, requested, req.Title, crs.ID)
	if err != nil {
		logger.Log.Error("course slug lookup failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update course!")
	}
	if !free {
		return slugTaken(c, req)
	}

	oldThumbnail := crs.Thumbnail
	crs.Slug = slug
	applyCourseRequest(crs, req)

	switch {
	case req.Thumbnail != nil:
		if crs.Thumbnail, err = storeThumbnail(req); err != nil {
			logger.Log.Error("store thumbnail failed", "error", err)
			return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to upload thumbnail!")
		}
	case req.RemoveThumbnail:
		crs.Thumbnail = ""
	}

	if err := repo.Save(ctx, crs); err != nil {
		if crs.Thumbnail != oldThumbnail {
			_ = utils.RemoveUpload(crs.Thumbnail)
		}
		if errors.Is(err, repositories.ErrSlugTaken) {
			return slugTaken(c, req)
		}
		logger.Log.Error("update course failed", "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update course!")
	}
	if oldThumbnail != "" && crs.Thumbnail != oldThumbnail {
		if err := utils.RemoveUpload(oldThumbnail); err != nil {
			logger.Log.Warn("remove old thumbnail failed", "path", oldThumbnail, "error", err)
		}
	}

	return middleware.Success(c, fiber.StatusOK, "Course updated successfully.", crs, courseAdminURL(crs.ID))
}

// DeleteCourse removes the course, its lessons, enrollments and uploads.
func DeleteCourse(c *fiber.Ctx) error {
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}

	if err := repositories.NewCourseRepository(database.Database.Db).Delete(c.UserContext(), crs.ID); err != nil {
		logger.Log.Error("delete course failed", "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to delete course!")
	}

	files := []string{crs.Thumbnail}
	for _, l := range crs.Lessons {
		files = append(files, lessonFiles(&l)...)
	}
	removeUploads(files)

	logger.Log.Info("course deleted", "course_id", crs.ID, "slug", crs.Slug)
	return middleware.Success(c, fiber.StatusOK, "Course deleted successfully.", nil, "/admin/courses")
}

func TogglePublish(c *fiber.Ctx) error {
	return toggleCourse(c, func(crs *course.Course) string {
		crs.IsPublished = !crs.IsPublished
		if crs.IsPublished {
			return "Course published."
		}
		return "Course unpublished."
	})
}

func ToggleFeatured(c *fiber.Ctx) error {
	return toggleCourse(c, func(crs *course.Course) string {
		crs.IsFeatured = !crs.IsFeatured
		if crs.IsFeatured {
			return "Course marked as featured."
		}
		return "Course removed from featured."
	})
}

func toggleCourse(c *fiber.Ctx, flip func(crs *course.Course) string) error {
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}
	message := flip(crs)
	if err := repositories.NewCourseRepository(database.Database.Db).Save(c.UserContext(), crs); err != nil {
		logger.Log.Error("toggle course failed", "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update course!")
	}
	return middleware.Success(c, fiber.StatusOK, message, fiber.Map{
		"id":           crs.ID,
		"is_published": crs.IsPublished,
		"is_featured":  crs.IsFeatured,
	}, courseAdminURL(crs.ID))
}

func removeUploads(urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := utils.RemoveUpload(u); err != nil {
			logger.Log.Warn("remove upload failed", "path", u, "error", err)
		}
	}
}
