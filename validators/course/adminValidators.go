package courseValidator

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"coursehub/middleware"
	"coursehub/repositories"
	"coursehub/utils"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

// ============ Course Validators ============

type CourseRequest struct {
	Title            string   `json:"title" form:"title" validate:"required,max=255"`
	Slug             string   `json:"slug" form:"slug" validate:"max=200"`
	ShortDescription string   `json:"short_description" form:"short_description" validate:"max=500"`
	Description      string   `json:"description" form:"description" validate:"required"`
	Difficulty       string   `json:"difficulty" form:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	EstimatedHours   int      `json:"estimated_hours" form:"estimated_hours" validate:"gte=0,lte=10000"`
	SortOrder        int      `json:"sort_order" form:"sort_order" validate:"gte=0"`
	PriceLabel       string   `json:"price_label" form:"price_label" validate:"max=50"`
	Tags             []string `json:"tags" form:"-" validate:"max=20,dive,max=50"`
	IsPublished      bool     `json:"is_published" form:"-"`
	IsFeatured       bool     `json:"is_featured" form:"-"`
	RemoveThumbnail  bool     `json:"remove_thumbnail" form:"-"`

	Thumbnail *multipart.FileHeader `json:"-" form:"-"`
}

func isForm(c *fiber.Ctx) bool {
	ct := c.Get(fiber.HeaderContentType)
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

func splitTags(raw string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		tags = append(tags, t)
	}
	return tags
}

// CourseForm validates admin course create and update requests.
func CourseForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if isForm(c) {
			reqData.Tags = splitTags(c.FormValue("tags"))
			reqData.IsPublished = validators.FormBool(c.FormValue("is_published"))
			reqData.IsFeatured = validators.FormBool(c.FormValue("is_featured"))
			reqData.RemoveThumbnail = validators.FormBool(c.FormValue("remove_thumbnail"))
		} else {
			reqData.Tags = splitTags(strings.Join(reqData.Tags, ","))
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		reqData.ShortDescription = strings.TrimSpace(reqData.ShortDescription)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Difficulty = strings.ToLower(strings.TrimSpace(reqData.Difficulty))
		reqData.PriceLabel = strings.TrimSpace(reqData.PriceLabel)

		errors := validators.Struct(reqData)
		if reqData.Slug != "" && errors["slug"] == "" && !utils.IsValidSlug(reqData.Slug) {
			errors["slug"] = "The slug may only contain lowercase letters, numbers and single hyphens!"
		}

		if isMultipart(c) {
			if file, err := c.FormFile("thumbnail"); err == nil {
				kind := utils.ThumbnailUpload()
				if _, err := utils.CheckUpload(file, kind); err != nil {
					errors["thumbnail"] = utils.UploadErrorMessage("thumbnail", kind, err)
				} else {
					reqData.Thumbnail = file
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, courseOldInput(reqData))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func courseOldInput(r *CourseRequest) map[string]string {
	return map[string]string{
		"title":             r.Title,
		"slug":              r.Slug,
		"short_description": r.ShortDescription,
		"description":       r.Description,
		"difficulty":        r.Difficulty,
		"estimated_hours":   strconv.Itoa(r.EstimatedHours),
		"sort_order":        strconv.Itoa(r.SortOrder),
		"price_label":       r.PriceLabel,
		"tags":              strings.Join(r.Tags, ", "),
		"is_published":      strconv.FormatBool(r.IsPublished),
		"is_featured":       strconv.FormatBool(r.IsFeatured),
	}
}

// CourseID validates the :id route parameter of admin course routes.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// AdminCourseList validates the admin course listing filters.
func AdminCourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		difficulty := strings.ToLower(strings.TrimSpace(c.Query("difficulty")))
		if difficulty != "" && difficulty != "beginner" && difficulty != "intermediate" && difficulty != "advanced" {
			return middleware.ValidationErrorResponse(c, map[string]string{"difficulty": "The selected difficulty is invalid!"})
		}
		c.Locals("adminCourseFilter", repositories.CourseFilter{
			Search:     strings.TrimSpace(c.Query("search")),
			Difficulty: difficulty,
			Published:  validators.OptionalBool(c.Query("published")),
			Page:       validators.ParsePage(c),
		})
		return c.Next()
	}
}

// ============ Lesson Validators ============

type LessonRequest struct {
	Title           string `json:"title" form:"title" validate:"required,max=255"`
	Slug            string `json:"slug" form:"slug" validate:"max=200"`
	Content         string `json:"content" form:"content" validate:"max=100000"`
	SortOrder       int    `json:"sort_order" form:"sort_order" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" form:"duration_minutes" validate:"gte=0,lte=1440"`
	VideoURL        string `json:"video_url" form:"video_url" validate:"omitempty,max=500,url"`
	IsPublished     bool   `json:"is_published" form:"-"`
	RemoveVideo     bool   `json:"remove_video" form:"-"`

	Video     *multipart.FileHeader   `json:"-" form:"-"`
	Materials []*multipart.FileHeader `json:"-" form:"-"`
}

// LessonForm validates admin lesson create and update requests.
func LessonForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if isForm(c) {
			reqData.IsPublished = validators.FormBool(c.FormValue("is_published"))
			reqData.RemoveVideo = validators.FormBool(c.FormValue("remove_video"))
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		reqData.VideoURL = strings.TrimSpace(reqData.VideoURL)

		errors := validators.Struct(reqData)
		if reqData.Slug != "" && errors["slug"] == "" && !utils.IsValidSlug(reqData.Slug) {
			errors["slug"] = "The slug may only contain lowercase letters, numbers and single hyphens!"
		}
		if reqData.VideoURL != "" && errors["video_url"] == "" && !utils.IsValidVideoURL(reqData.VideoURL) {
			errors["video_url"] = "The video url must be a valid URL!"
		}

		if isMultipart(c) {
			if file, err := c.FormFile("video"); err == nil {
				kind := utils.VideoUpload()
				if _, err := utils.CheckUpload(file, kind); err != nil {
					errors["video"] = utils.UploadErrorMessage("video", kind, err)
				} else {
					reqData.Video = file
				}
			}
			if reqData.Video != nil && reqData.VideoURL != "" {
				errors["video_url"] = "Provide either a video file or a video URL, not both!"
			}

			if form, err := c.MultipartForm(); err == nil {
				kind := utils.MaterialUpload()
				for i, file := range form.File["materials"] {
					if _, err := utils.CheckUpload(file, kind); err != nil {
						errors[fmt.Sprintf("materials.%d", i)] = utils.UploadErrorMessage("material "+file.Filename, kind, err)
						continue
					}
					reqData.Materials = append(reqData.Materials, file)
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, map[string]string{
				"title":            reqData.Title,
				"slug":             reqData.Slug,
				"content":          reqData.Content,
				"sort_order":       strconv.Itoa(reqData.SortOrder),
				"duration_minutes": strconv.Itoa(reqData.DurationMinutes),
				"video_url":        reqData.VideoURL,
				"is_published":     strconv.FormatBool(reqData.IsPublished),
			})
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// LessonID validates :id and :lessonId of nested lesson routes.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		lessonID, ok := validators.ParseID(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}
		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// ResourceIndex validates the :index of a lesson resource.
func ResourceIndex() fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := strconv.Atoi(strings.TrimSpace(c.Params("index")))
		if err != nil || index < 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid resource index!", nil)
		}
		c.Locals("resourceIndex", index)
		return c.Next()
	}
}

// ReorderLessons validates the new lesson order: every id once, in order.
func ReorderLessons() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			LessonIDs []uint `json:"lesson_ids" form:"-"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if isForm(c) {
			for _, raw := range strings.Split(c.FormValue("lesson_ids"), ",") {
				id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
				if err != nil || id == 0 {
					return middleware.ValidationFailed(c, map[string]string{"lesson_ids": "The lesson ids must be positive integers!"}, nil)
				}
				reqData.LessonIDs = append(reqData.LessonIDs, uint(id))
			}
		}

		errors := make(map[string]string)
		seen := make(map[uint]bool, len(reqData.LessonIDs))
		if len(reqData.LessonIDs) == 0 {
			errors["lesson_ids"] = "The lesson ids field is required!"
		}
		for _, id := range reqData.LessonIDs {
			if id == 0 || seen[id] {
				errors["lesson_ids"] = "The lesson ids must be distinct positive integers!"
				break
			}
			seen[id] = true
		}
		if len(errors) > 0 {
			return middleware.ValidationFailed(c, errors, nil)
		}

		c.Locals("lessonOrder", reqData.LessonIDs)
		return c.Next()
	}
}
