package adminController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/models/course"
	"coursehub/repositories"
	"coursehub/services/progress"
	"coursehub/utils"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

const videoMetaTimeout = 5 * time.Second

func lessonsAdminURL(courseID uint) string {
	return fmt.Sprintf("/admin/courses/%d/lessons", courseID)
}

// lessonFiles lists the uploads owned by a lesson.
func lessonFiles(l *course.Lesson) []string {
	files := []string{l.VideoPath}
	for _, r := range l.Resources {
		files = append(files, r.Path)
	}
	return files
}

// recalculateCourse brings every enrollment of the course in line with its
// current published lessons.
func recalculateCourse(ctx context.Context, courseID uint) {
	db := database.Database.Db
	lessons, err := repositories.NewLessonRepository(db).Published(ctx, courseID)
	if err != nil {
		logger.Log.Error("load lessons for recalculation failed", "course_id", courseID, "error", err)
		return
	}
	n, err := repositories.NewProgressRepository(db).RecalculateCourse(ctx, courseID, func(p *course.UserCourseProgress) {
		progress.New(p, lessons).Recalculate()
	})
	if err != nil {
		logger.Log.Error("recalculate progress failed", "course_id", courseID, "updated", n, "error", err)
		return
	}
	logger.Log.Debug("progress recalculated", "course_id", courseID, "updated", n)
}

func lessonSlug(ctx context.Context, repo *repositories.LessonRepository, courseID uint, requested, title string, excludeID uint) (string, bool, error) {
	exists := func(s string) (bool, error) {
		return repo.SlugExists(ctx, courseID, s, excludeID)
	}
	if requested != "" {
		taken, err := exists(requested)
		return requested, !taken, err
	}
	base := utils.Slugify(title, utils.SlugMaxLength)
	if base == "" {
		base = "lesson"
	}
	slug, err := utils.UniqueSlug(base, exists)
	return slug, err == nil, err
}

func lessonSlugTaken(c *fiber.Ctx, req *courseValidator.LessonRequest) error {
	return middleware.ValidationFailed(c,
		map[string]string{"slug": "The slug has already been taken in this course!"},
		map[string]string{"title": req.Title, "slug": req.Slug})
}

// storeLessonUploads saves the video and materials of the request onto l and
// returns the URLs written, so they can be removed if the save fails.
func storeLessonUploads(l *course.Lesson, req *courseValidator.LessonRequest) ([]string, error) {
	var written []string
	if req.Video != nil {
		stored, err := utils.SaveUploadedFile(req.Video, utils.VideoUpload())
		if err != nil {
			return written, err
		}
		written = append(written, stored.URL)
		l.VideoPath = stored.URL
		l.VideoURL = ""
		l.VideoTitle = ""
		l.VideoThumbnail = ""
	}
	for _, file := range req.Materials {
		stored, err := utils.SaveUploadedFile(file, utils.MaterialUpload())
		if err != nil {
			return written, err
		}
		written = append(written, stored.URL)
		l.Resources = append(l.Resources, course.LessonResource{
			Name: stored.Name,
			Path: stored.URL,
			Size: stored.Size,
			Type: stored.MIME,
		})
	}
	return written, nil
}

// applyVideoURL sets the external video and refreshes its oEmbed metadata when
// the URL changed. Lookup failures only cost the metadata.
func applyVideoURL(ctx context.Context, l *course.Lesson, videoURL string) {
	if videoURL == l.VideoURL {
		return
	}
	l.VideoURL = videoURL
	l.VideoTitle = ""
	l.VideoThumbnail = ""
	if videoURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, videoMetaTimeout)
	defer cancel()
	meta, err := utils.FetchVideoMeta(ctx, videoURL)
	if err != nil {
		logger.Log.Warn("video metadata lookup failed", "url", videoURL, "error", err)
		return
	}
	l.VideoTitle = meta.Title
	l.VideoThumbnail = meta.ThumbnailURL
}

func ListLessons(c *fiber.Ctx) error {
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully.", fiber.Map{
		"course_id":      crs.ID,
		"lessons":        crs.Lessons,
		"total_duration": crs.TotalDuration(),
	})
}

func CreateLesson(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	crs, err := loadCourse(c)
	if crs == nil {
		return err
	}
	ctx := c.UserContext()
	repo := repositories.NewLessonRepository(database.Database.Db)

	slug, free, err := lessonSlug(ctx, repo, crs.ID, req.Slug, req.Title, 0)
	if err != nil {
		logger.Log.Error("lesson slug lookup failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create lesson!")
	}
	if !free {
		return lessonSlugTaken(c, req)
	}

	sortOrder := req.SortOrder
	if sortOrder == 0 {
		if sortOrder, err = repo.NextSortOrder(ctx, crs.ID); err != nil {
			logger.Log.Error("next sort order failed", "course_id", crs.ID, "error", err)
			return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create lesson!")
		}
	}

	lesson := course.Lesson{
		CourseID:        crs.ID,
		Title:           req.Title,
		Slug:            slug,
		SortOrder:       sortOrder,
		IsPublished:     req.IsPublished,
		DurationMinutes: req.DurationMinutes,
		Content:         req.Content,
		Resources:       []course.LessonResource{},
	}
	written, err := storeLessonUploads(&lesson, req)
	if err != nil {
		removeUploads(written)
		logger.Log.Error("store lesson uploads failed", "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to upload lesson files!")
	}
	if lesson.VideoPath == "" {
		applyVideoURL(ctx, &lesson, req.VideoURL)
	}

	if err := repo.Create(ctx, &lesson); err != nil {
		removeUploads(written)
		if errors.Is(err, repositories.ErrSlugTaken) {
			return lessonSlugTaken(c, req)
		}
		logger.Log.Error("create lesson failed", "course_id", crs.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to create lesson!")
	}

	recalculateCourse(ctx, crs.ID)
	logger.Log.Info("lesson created", "course_id", crs.ID, "lesson_id", lesson.ID)
	return middleware.Success(c, fiber.StatusCreated, "Lesson created successfully.", lesson, lessonsAdminURL(crs.ID))
}

// loadLesson fetches the lesson named by the courseID and lessonID locals.
func loadLesson(c *fiber.Ctx) (*course.Lesson, error) {
	courseID, _ := c.Locals("courseID").(uint)
	lessonID, _ := c.Locals("lessonID").(uint)
	lesson, err := repositories.NewLessonRepository(database.Database.Db).FindInCourse(c.UserContext(), courseID, lessonID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, middleware.Failure(c, fiber.StatusNotFound, "Lesson not found!")
		}
		logger.Log.Error("load lesson failed", "course_id", courseID, "lesson_id", lessonID, "error", err)
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson!", nil)
	}
	return lesson, nil
}

func ShowLesson(c *fiber.Ctx) error {
	lesson, err := loadLesson(c)
	if lesson == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully.", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	lesson, err := loadLesson(c)
	if lesson == nil {
		return err
	}
	ctx := c.UserContext()
	repo := repositories.NewLessonRepository(database.Database.Db)

	requested := req.Slug
	if requested == "" {
		requested = lesson.Slug
	}
	slug, free, err := lessonSlug(ctx, repo, lesson.CourseID, requested, req.Title, lesson.ID)
	if err != nil {
		logger.Log.Error("lesson slug lookup failed", "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update lesson!")
	}
	if !free {
		return lessonSlugTaken(c, req)
	}

	var obsolete []string
	lesson.Title = req.Title
	lesson.Slug = slug
	lesson.Content = req.Content
	lesson.DurationMinutes = req.DurationMinutes
	lesson.IsPublished = req.IsPublished
	if req.SortOrder > 0 {
		lesson.SortOrder = req.SortOrder
	}
	if req.RemoveVideo || req.Video != nil || req.VideoURL != "" {
		if lesson.VideoPath != "" {
			obsolete = append(obsolete, lesson.VideoPath)
			lesson.VideoPath = ""
		}
	}

	written, err := storeLessonUploads(lesson, req)
	if err != nil {
		removeUploads(written)
		logger.Log.Error("store lesson uploads failed", "lesson_id", lesson.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to upload lesson files!")
	}
	if lesson.VideoPath == "" {
		applyVideoURL(ctx, lesson, req.VideoURL)
	}

	if err := repo.Save(ctx, lesson); err != nil {
		removeUploads(written)
		if errors.Is(err, repositories.ErrSlugTaken) {
			return lessonSlugTaken(c, req)
		}
		logger.Log.Error("update lesson failed", "lesson_id", lesson.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update lesson!")
	}
	removeUploads(obsolete)

	recalculateCourse(ctx, lesson.CourseID)
	return middleware.Success(c, fiber.StatusOK, "Lesson updated successfully.", lesson, lessonsAdminURL(lesson.CourseID))
}

func DeleteLesson(c *fiber.Ctx) error {
	lesson, err := loadLesson(c)
	if lesson == nil {
		return err
	}
	ctx := c.UserContext()

	if err := repositories.NewLessonRepository(database.Database.Db).Delete(ctx, lesson.CourseID, lesson.ID); err != nil {
		logger.Log.Error("delete lesson failed", "lesson_id", lesson.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to delete lesson!")
	}
	removeUploads(lessonFiles(lesson))

	recalculateCourse(ctx, lesson.CourseID)
	logger.Log.Info("lesson deleted", "course_id", lesson.CourseID, "lesson_id", lesson.ID)
	return middleware.Success(c, fiber.StatusOK, "Lesson deleted successfully.", nil, lessonsAdminURL(lesson.CourseID))
}

func ToggleLessonPublish(c *fiber.Ctx) error {
	lesson, err := loadLesson(c)
	if lesson == nil {
		return err
	}
	ctx := c.UserContext()

	lesson.IsPublished = !lesson.IsPublished
	if err := repositories.NewLessonRepository(database.Database.Db).Save(ctx, lesson); err != nil {
		logger.Log.Error("toggle lesson failed", "lesson_id", lesson.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to update lesson!")
	}
	recalculateCourse(ctx, lesson.CourseID)

	message := "Lesson unpublished."
	if lesson.IsPublished {
		message = "Lesson published."
	}
	return middleware.Success(c, fiber.StatusOK, message, fiber.Map{
		"id":           lesson.ID,
		"is_published": lesson.IsPublished,
	}, lessonsAdminURL(lesson.CourseID))
}

// ReorderLessons renumbers the course's lessons in the submitted order.
func ReorderLessons(c *fiber.Ctx) error {
	courseID, _ := c.Locals("courseID").(uint)
	ids, _ := c.Locals("lessonOrder").([]uint)

	err := repositories.NewLessonRepository(database.Database.Db).Reorder(c.UserContext(), courseID, ids)
	if errors.Is(err, repositories.ErrNotFound) {
		return middleware.ValidationFailed(c, map[string]string{"lesson_ids": "Every lesson id must belong to this course!"}, nil)
	}
	if err != nil {
		logger.Log.Error("reorder lessons failed", "course_id", courseID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to reorder lessons!")
	}
	return middleware.Success(c, fiber.StatusOK, "Lessons reordered successfully.", fiber.Map{"lesson_ids": ids}, lessonsAdminURL(courseID))
}

// RemoveResource detaches one material from a lesson and deletes its file.
func RemoveResource(c *fiber.Ctx) error {
	lesson, err := loadLesson(c)
	if lesson == nil {
		return err
	}
	index, _ := c.Locals("resourceIndex").(int)
	if index >= len(lesson.Resources) {
		return middleware.Failure(c, fiber.StatusNotFound, "Resource not found!")
	}

	removed := lesson.Resources[index]
	resources := make([]course.LessonResource, 0, len(lesson.Resources)-1)
	resources = append(resources, lesson.Resources[:index]...)
	resources = append(resources, lesson.Resources[index+1:]...)
	lesson.Resources = resources

	if err := repositories.NewLessonRepository(database.Database.Db).Save(c.UserContext(), lesson); err != nil {
		logger.Log.Error("remove resource failed", "lesson_id", lesson.ID, "error", err)
		return middleware.Failure(c, fiber.StatusInternalServerError, "Failed to remove resource!")
	}
	removeUploads([]string{removed.Path})

	return middleware.Success(c, fiber.StatusOK, "Resource removed successfully.", lesson.Resources, lessonsAdminURL(lesson.CourseID))
}
