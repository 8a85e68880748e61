package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"coursehub/config"
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/models/course"
	"coursehub/server"
	"coursehub/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	cfg := config.FromEnv()
	cfg.JWTKey = "test-secret"
	cfg.SaltRound = bcrypt.MinCost
	cfg.UploadDir = t.TempDir()
	cfg.AdminNotifyMail = ""
	cfg.SendgridAPIKey = ""
	cfg.OEmbedEndpoint = ""
	cfg.ContactPerMin = 100
	prevCfg := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = prevCfg })

	db := testutil.DB(t)
	prevDB := database.Database.Db
	database.Database.Db = db
	t.Cleanup(func() { database.Database.Db = prevDB })

	return server.New(server.Options{}), db
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(u.ID, u.Name, u.Role, u.Email)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func TestContactMessageLengthLimit(t *testing.T) {
	app, db := setup(t)

	form := map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Question",
		"message": strings.Repeat("a", models.ContactMessageMaxLength+1),
	}
	status, env := doJSON(t, app, http.MethodPost, "/contact", form, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	var errs map[string]string
	decode(t, env.Data, &errs)
	assert.Contains(t, errs, "message")

	form["message"] = strings.Repeat("é", models.ContactMessageMaxLength+1)
	status, _ = doJSON(t, app, http.MethodPost, "/contact", form, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	form["message"] = strings.Repeat("a", models.ContactMessageMaxLength)
	status, env = doJSON(t, app, http.MethodPost, "/contact", form, "")
	assert.Equal(t, fiber.StatusCreated, status, env.Message)

	var stored []models.Contact
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, models.ContactStatusNew, stored[0].Status)
	assert.Len(t, stored[0].Message, models.ContactMessageMaxLength)
}

func TestContactFormPostRedirectsBackWithErrors(t *testing.T) {
	app, _ := setup(t)

	values := url.Values{"name": {"Ada"}, "email": {"not-an-email"}, "subject": {"Hi"}, "message": {"Hello"}}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	req.Header.Set("Referer", "http://example.com/contact?from=footer")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/contact?from=footer", resp.Header.Get("Location"))
}

func TestEnrollTwiceReportsAlreadyEnrolled(t *testing.T) {
	app, db := setup(t)
	user := testutil.SeedUser(t, db, "learner@example.com", "")
	testutil.SeedCourse(t, db, "go-basics", true, true, true)
	token := tokenFor(t, user)

	status, env := doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, token)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var first struct {
		AlreadyEnrolled bool `json:"already_enrolled"`
	}
	decode(t, env.Data, &first)
	assert.False(t, first.AlreadyEnrolled)

	status, env = doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var second struct {
		AlreadyEnrolled bool `json:"already_enrolled"`
	}
	decode(t, env.Data, &second)
	assert.True(t, second.AlreadyEnrolled)

	var count int64
	require.NoError(t, db.Model(&course.UserCourseProgress{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollRequiresLogin(t *testing.T) {
	app, db := setup(t)
	testutil.SeedCourse(t, db, "go-basics", true, true)

	status, _ := doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCatalogShowsOnlyPublished(t *testing.T) {
	app, db := setup(t)
	testutil.SeedCourse(t, db, "go-basics", true, true, false, true)
	testutil.SeedCourse(t, db, "draft-course", false, true)

	status, env := doJSON(t, app, http.MethodGet, "/courses", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Courses []struct {
			Slug          string `json:"slug"`
			TotalDuration int    `json:"total_duration"`
			LessonCount   int    `json:"lesson_count"`
		} `json:"courses"`
	}
	decode(t, env.Data, &list)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, "go-basics", list.Courses[0].Slug)
	assert.Equal(t, 2, list.Courses[0].LessonCount)
	assert.Equal(t, 20, list.Courses[0].TotalDuration)

	status, _ = doJSON(t, app, http.MethodGet, "/courses/draft-course", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = doJSON(t, app, http.MethodGet, "/courses/go-basics", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var detail struct {
		Course struct {
			Lessons []struct {
				Slug string `json:"slug"`
			} `json:"lessons"`
		} `json:"course"`
		Enrollment struct {
			Enrolled bool `json:"enrolled"`
		} `json:"enrollment"`
	}
	decode(t, env.Data, &detail)
	require.Len(t, detail.Course.Lessons, 2)
	assert.Equal(t, "lesson-1", detail.Course.Lessons[0].Slug)
	assert.Equal(t, "lesson-3", detail.Course.Lessons[1].Slug)
	assert.False(t, detail.Enrollment.Enrolled)
}

type progressView struct {
	Status     string `json:"status"`
	Percentage int    `json:"progress_percentage"`
}

func TestLessonFlow(t *testing.T) {
	app, db := setup(t)
	user := testutil.SeedUser(t, db, "learner@example.com", "")
	testutil.SeedCourse(t, db, "go-basics", true, true, true)
	token := tokenFor(t, user)

	status, _ := doJSON(t, app, http.MethodGet, "/courses/go-basics/lessons/lesson-1", nil, token)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, token)
	require.Equal(t, fiber.StatusCreated, status)

	status, env := doJSON(t, app, http.MethodGet, "/courses/go-basics/lessons/lesson-1", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var shown struct {
		Next     *struct{ Slug string } `json:"next"`
		Previous *struct{ Slug string } `json:"previous"`
		Progress progressView           `json:"progress"`
	}
	decode(t, env.Data, &shown)
	assert.Equal(t, course.StatusInProgress, shown.Progress.Status)
	assert.Equal(t, 0, shown.Progress.Percentage)
	require.NotNil(t, shown.Next)
	assert.Equal(t, "lesson-2", shown.Next.Slug)
	assert.Nil(t, shown.Previous)

	status, env = doJSON(t, app, http.MethodPost, "/courses/go-basics/lessons/lesson-1/navigate-forward", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var forward struct {
		Progress progressView `json:"progress"`
	}
	decode(t, env.Data, &forward)
	assert.Equal(t, 50, forward.Progress.Percentage)

	status, env = doJSON(t, app, http.MethodPost, "/courses/go-basics/lessons/lesson-2/complete", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var done struct {
		Progress progressView `json:"progress"`
	}
	decode(t, env.Data, &done)
	assert.Equal(t, 100, done.Progress.Percentage)
	assert.Equal(t, course.StatusCompleted, done.Progress.Status)

	status, _ = doJSON(t, app, http.MethodGet, "/courses/go-basics/lessons/missing", nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCompleteCourse(t *testing.T) {
	app, db := setup(t)
	user := testutil.SeedUser(t, db, "learner@example.com", "")
	c := testutil.SeedCourse(t, db, "go-basics", true, true, true, false)
	token := tokenFor(t, user)

	status, _ := doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, token)
	require.Equal(t, fiber.StatusCreated, status)

	status, env := doJSON(t, app, http.MethodPost, "/courses/go-basics/complete-course", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var p course.UserCourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, c.ID).First(&p).Error)
	assert.Equal(t, course.StatusCompleted, p.Status)
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.ElementsMatch(t, []uint{c.Lessons[0].ID, c.Lessons[1].ID}, []uint(p.CompletedLessons))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, db := setup(t)
	user := testutil.SeedUser(t, db, "learner@example.com", "")
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)

	status, _ := doJSON(t, app, http.MethodGet, "/admin/courses", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/admin/courses", nil, tokenFor(t, user))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodGet, "/admin/courses", nil, tokenFor(t, admin))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminCourseAuthoring(t *testing.T) {
	app, db := setup(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)
	token := tokenFor(t, admin)

	status, env := doJSON(t, app, http.MethodPost, "/admin/courses", map[string]interface{}{
		"description": "Missing a title",
		"difficulty":  "beginner",
	}, token)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	var errs map[string]string
	decode(t, env.Data, &errs)
	assert.Contains(t, errs, "title")

	payload := map[string]interface{}{
		"title":        "Go Basics",
		"description":  "Learn Go from scratch.",
		"difficulty":   "beginner",
		"tags":         []string{"go", "Go", "backend"},
		"is_published": true,
	}
	status, env = doJSON(t, app, http.MethodPost, "/admin/courses", payload, token)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created course.Course
	decode(t, env.Data, &created)
	assert.Equal(t, "go-basics", created.Slug)
	assert.Equal(t, []string{"go", "backend"}, []string(created.Tags))
	assert.True(t, created.IsPublished)

	status, env = doJSON(t, app, http.MethodPost, "/admin/courses", payload, token)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var second course.Course
	decode(t, env.Data, &second)
	assert.Equal(t, "go-basics-2", second.Slug)

	payload["slug"] = "go-basics"
	status, env = doJSON(t, app, http.MethodPost, "/admin/courses", payload, token)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	decode(t, env.Data, &errs)
	assert.Contains(t, errs, "slug")
}

func TestAddingLessonRecalculatesProgress(t *testing.T) {
	app, db := setup(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)
	learner := testutil.SeedUser(t, db, "learner@example.com", "")
	c := testutil.SeedCourse(t, db, "go-basics", true, true)
	p := course.NewProgress(learner.ID, c.ID)
	p.CompletedLessons = append(p.CompletedLessons, c.Lessons[0].ID)
	p.Status = course.StatusCompleted
	p.ProgressPercentage = 100
	testutil.SeedProgress(t, db, p)

	status, env := doJSON(t, app, http.MethodPost, "/admin/courses/"+itoa(c.ID)+"/lessons", map[string]interface{}{
		"title":            "Interfaces",
		"content":          "Interfaces are satisfied implicitly.",
		"duration_minutes": 15,
		"is_published":     true,
	}, tokenFor(t, admin))
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var lesson course.Lesson
	decode(t, env.Data, &lesson)
	assert.Equal(t, "interfaces", lesson.Slug)
	assert.Equal(t, 2, lesson.SortOrder)

	var reloaded course.UserCourseProgress
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 50, reloaded.ProgressPercentage)
	assert.Equal(t, course.StatusInProgress, reloaded.Status)
	assert.Nil(t, reloaded.CompletedAt)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	app, db := setup(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)

	status, _ := doJSON(t, app, http.MethodDelete, "/admin/users/"+itoa(admin.ID), nil, tokenFor(t, admin))
	assert.Equal(t, fiber.StatusBadRequest, status)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupAndLogin(t *testing.T) {
	app, _ := setup(t)

	status, env := doJSON(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "Ada@Example.com",
		"password": "correct-horse",
	}, "")
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, _ = doJSON(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "correct-horse",
	}, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	}, "")
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, env.Data, &login)
	require.NotEmpty(t, login.Token)

	status, env = doJSON(t, app, http.MethodGet, "/auth/me", nil, login.Token)
	require.Equal(t, fiber.StatusOK, status)
	var me models.User
	decode(t, env.Data, &me)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Empty(t, me.Password)
}

func TestBlockedUserLosesLearnerAccess(t *testing.T) {
	app, db := setup(t)
	user := testutil.SeedUser(t, db, "learner@example.com", "")
	testutil.SeedCourse(t, db, "go-basics", true, true, true)
	token := tokenFor(t, user)

	status, _ := doJSON(t, app, http.MethodPost, "/courses/go-basics/enroll", nil, token)
	require.Equal(t, fiber.StatusCreated, status)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_blocked", true).Error)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/courses/go-basics/lessons/lesson-1/complete"},
		{http.MethodPost, "/courses/go-basics/lessons/lesson-1/navigate-forward"},
		{http.MethodGet, "/courses/go-basics/lessons/lesson-1"},
		{http.MethodPost, "/courses/go-basics/complete-course"},
		{http.MethodPost, "/courses/go-basics/enroll"},
		{http.MethodGet, "/my/courses"},
		{http.MethodGet, "/auth/me"},
	} {
		status, _ := doJSON(t, app, r.method, r.path, nil, token)
		assert.Equal(t, fiber.StatusForbidden, status, r.path)
	}

	var p course.UserCourseProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&p).Error)
	assert.Empty(t, p.CompletedLessons)
	assert.Equal(t, 0, p.ProgressPercentage)

	status, _ = doJSON(t, app, http.MethodGet, "/courses/go-basics", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminContactTriage(t *testing.T) {
	app, db := setup(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)
	token := tokenFor(t, admin)

	msg := models.Contact{Name: "Ada", Email: "ada@example.com", Subject: "Access", Message: "I cannot log in.", Status: models.ContactStatusNew}
	require.NoError(t, db.Omit("Responder").Create(&msg).Error)
	base := "/admin/contacts/" + itoa(msg.ID)

	reload := func() models.Contact {
		var c models.Contact
		require.NoError(t, db.First(&c, msg.ID).Error)
		return c
	}

	status, env := doJSON(t, app, http.MethodGet, "/admin/contacts", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var listed struct {
		Unread int64 `json:"unread"`
	}
	decode(t, env.Data, &listed)
	assert.Equal(t, int64(1), listed.Unread)

	status, env = doJSON(t, app, http.MethodGet, base, nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.True(t, reload().IsRead)

	status, env = doJSON(t, app, http.MethodPatch, base+"/status", map[string]string{"status": models.ContactStatusInProgress}, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, models.ContactStatusInProgress, reload().Status)

	status, env = doJSON(t, app, http.MethodPatch, base+"/status", map[string]string{"status": models.ContactStatusInProgress}, token)
	assert.Equal(t, fiber.StatusOK, status, env.Message)

	status, _ = doJSON(t, app, http.MethodPatch, base+"/status", map[string]string{"status": "archived"}, token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = doJSON(t, app, http.MethodPost, base+"/unread", nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.False(t, reload().IsRead)

	status, env = doJSON(t, app, http.MethodPost, base+"/respond", map[string]string{"admin_response": "Password reset sent."}, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	answered := reload()
	assert.Equal(t, models.ContactStatusResolved, answered.Status)
	assert.True(t, answered.IsRead)
	assert.Equal(t, "Password reset sent.", answered.AdminResponse)
	require.NotNil(t, answered.RespondedBy)
	assert.Equal(t, admin.ID, *answered.RespondedBy)
	assert.NotNil(t, answered.RespondedAt)

	status, _ = doJSON(t, app, http.MethodPost, base+"/respond", map[string]string{"admin_response": " "}, token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = doJSON(t, app, http.MethodDelete, base, nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	status, _ = doJSON(t, app, http.MethodGet, base, nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminUserManagement(t *testing.T) {
	app, db := setup(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin)
	token := tokenFor(t, admin)
	c := testutil.SeedCourse(t, db, "go-basics", true, true)

	status, env := doJSON(t, app, http.MethodPost, "/admin/users", map[string]interface{}{
		"name":     "Grace Hopper",
		"email":    "Grace@Example.com",
		"password": "cobol-forever",
	}, token)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var created models.User
	decode(t, env.Data, &created)
	assert.Equal(t, "grace@example.com", created.Email)
	assert.Equal(t, models.RoleUser, created.Role)

	status, _ = doJSON(t, app, http.MethodPost, "/admin/users", map[string]interface{}{
		"name":  "No Password",
		"email": "nopass@example.com",
	}, token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = doJSON(t, app, http.MethodPut, "/admin/users/"+itoa(created.ID), map[string]interface{}{
		"name":       "Grace Hopper",
		"email":      "grace@example.com",
		"role":       models.RoleAdmin,
		"is_blocked": true,
	}, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var updated models.User
	require.NoError(t, db.First(&updated, created.ID).Error)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.True(t, updated.IsBlocked)

	status, _ = doJSON(t, app, http.MethodPut, "/admin/users/"+itoa(admin.ID), map[string]interface{}{
		"name":  admin.Name,
		"email": admin.Email,
		"role":  models.RoleUser,
	}, token)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, app, http.MethodGet, "/admin/courses", nil, tokenFor(t, &updated))
	assert.Equal(t, fiber.StatusForbidden, status)

	testutil.SeedProgress(t, db, &course.UserCourseProgress{UserID: created.ID, CourseID: c.ID})

	status, env = doJSON(t, app, http.MethodDelete, "/admin/users/"+itoa(created.ID), nil, token)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var count int64
	require.NoError(t, db.Model(&course.UserCourseProgress{}).Where("user_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	status, _ = doJSON(t, app, http.MethodDelete, "/admin/users/"+itoa(created.ID), nil, token)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
