package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog and lesson delivery routes.
func SetupCourseRoutes(app *fiber.App) {
	app.Get("/", controllers.Home)

	courseGroup := app.Group("/courses")

	// Catalog
	courseGroup.Get("/", validators.CatalogQuery(), controllers.ListCourses)
	courseGroup.Get("/:slug", middleware.OptionalJWT, validators.CourseSlug(), controllers.ShowCourse)

	// Enrollment
	courseGroup.Post("/:slug/enroll", middleware.JWTMiddleware, middleware.ActiveUser, validators.CourseSlug(), controllers.Enroll)
	courseGroup.Post("/:slug/complete-course", middleware.JWTMiddleware, middleware.ActiveUser, validators.CourseSlug(), controllers.CompleteCourse)

	// Lessons (enrolled users)
	courseGroup.Get("/:slug/lessons/:lessonSlug", middleware.JWTMiddleware, middleware.ActiveUser, validators.LessonSlug(), controllers.ShowLesson)
	courseGroup.Post("/:slug/lessons/:lessonSlug/complete", middleware.JWTMiddleware, middleware.ActiveUser, validators.LessonSlug(), controllers.CompleteLesson)
	courseGroup.Post("/:slug/lessons/:lessonSlug/navigate-forward", middleware.JWTMiddleware, middleware.ActiveUser, validators.LessonSlug(), controllers.NavigateForward)

	myGroup := app.Group("/my", middleware.JWTMiddleware, middleware.ActiveUser)
	myGroup.Get("/courses", controllers.MyCourses)
}
