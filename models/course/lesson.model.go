package course

import (
	"time"

	"gorm.io/datatypes"
)

// LessonResource is a downloadable material attached to a lesson.
type LessonResource struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Lesson is a unit of content inside a course. Slug is unique within the course.
type Lesson struct {
	ID              uint                                `json:"id" gorm:"primaryKey"`
	CourseID        uint                                `json:"course_id" gorm:"not null;index;uniqueIndex:idx_course_lesson_slug"`
	Title           string                              `json:"title" gorm:"size:255;not null"`
	Slug            string                              `json:"slug" gorm:"size:255;not null;uniqueIndex:idx_course_lesson_slug"`
	SortOrder       int                                 `json:"sort_order" gorm:"default:0"`
	IsPublished     bool                                `json:"is_published" gorm:"default:false"`
	DurationMinutes int                                 `json:"duration_minutes" gorm:"default:0"`
	Content         string                              `json:"content" gorm:"type:text"`
	VideoURL        string                              `json:"video_url"`
	VideoPath       string                              `json:"video_path"`
	VideoTitle      string                              `json:"video_title"`
	VideoThumbnail  string                              `json:"video_thumbnail"`
	Resources       datatypes.JSONSlice[LessonResource] `json:"resources"`
	CreatedAt       time.Time                           `json:"created_at"`
	UpdatedAt       time.Time                           `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "course_lessons"
}

// HasVideo reports whether the lesson carries an uploaded video or an external video URL.
func (l *Lesson) HasVideo() bool {
	return l.VideoPath != "" || l.VideoURL != ""
}
