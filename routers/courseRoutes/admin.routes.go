package courseRoutes

import (
	adminControllers "coursehub/controllers/admin"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes registers course and lesson authoring on the admin
// group. Every PUT and DELETE also has a POST alias for HTML forms.
func SetupAdminCourseRoutes(adminGroup fiber.Router) {
	// Courses
	adminGroup.Get("/courses", validators.AdminCourseList(), adminControllers.ListCourses)
	adminGroup.Post("/courses", validators.CourseForm(), adminControllers.CreateCourse)
	adminGroup.Get("/courses/:id", validators.CourseID(), adminControllers.ShowCourse)
	adminGroup.Put("/courses/:id", validators.CourseID(), validators.CourseForm(), adminControllers.UpdateCourse)
	adminGroup.Post("/courses/:id", validators.CourseID(), validators.CourseForm(), adminControllers.UpdateCourse)
	adminGroup.Delete("/courses/:id", validators.CourseID(), adminControllers.DeleteCourse)
	adminGroup.Post("/courses/:id/delete", validators.CourseID(), adminControllers.DeleteCourse)
	adminGroup.Post("/courses/:id/toggle-publish", validators.CourseID(), adminControllers.TogglePublish)
	adminGroup.Post("/courses/:id/toggle-featured", validators.CourseID(), adminControllers.ToggleFeatured)
	adminGroup.Get("/courses/:id/enrollments", validators.CourseID(), adminControllers.CourseEnrollments)

	// Lessons
	adminGroup.Get("/courses/:id/lessons", validators.CourseID(), adminControllers.ListLessons)
	adminGroup.Post("/courses/:id/lessons", validators.CourseID(), validators.LessonForm(), adminControllers.CreateLesson)
	adminGroup.Post("/courses/:id/lessons/reorder", validators.CourseID(), validators.ReorderLessons(), adminControllers.ReorderLessons)
	adminGroup.Get("/courses/:id/lessons/:lessonId", validators.LessonID(), adminControllers.ShowLesson)
	adminGroup.Put("/courses/:id/lessons/:lessonId", validators.LessonID(), validators.LessonForm(), adminControllers.UpdateLesson)
	adminGroup.Post("/courses/:id/lessons/:lessonId", validators.LessonID(), validators.LessonForm(), adminControllers.UpdateLesson)
	adminGroup.Delete("/courses/:id/lessons/:lessonId", validators.LessonID(), adminControllers.DeleteLesson)
	adminGroup.Post("/courses/:id/lessons/:lessonId/delete", validators.LessonID(), adminControllers.DeleteLesson)
	adminGroup.Post("/courses/:id/lessons/:lessonId/toggle-publish", validators.LessonID(), adminControllers.ToggleLessonPublish)
	adminGroup.Delete("/courses/:id/lessons/:lessonId/resources/:index", validators.LessonID(), validators.ResourceIndex(), adminControllers.RemoveResource)
	adminGroup.Post("/courses/:id/lessons/:lessonId/resources/:index/delete", validators.LessonID(), validators.ResourceIndex(), adminControllers.RemoveResource)
}
