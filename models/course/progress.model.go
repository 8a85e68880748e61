package course

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// UserCourseProgress is one user's enrollment in a course. At most one row
// exists per (user, course). Version is bumped on every write.
type UserCourseProgress struct {
	ID                 uint                      `json:"id" gorm:"primaryKey"`
	UserID             uint                      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID           uint                      `json:"course_id" gorm:"not null;index;uniqueIndex:idx_user_course"`
	Status             string                    `json:"status" gorm:"size:20;index;default:'not_started'"`
	ProgressPercentage int                       `json:"progress_percentage" gorm:"default:0"`
	CompletedLessons   datatypes.JSONSlice[uint] `json:"completed_lessons"`
	AccessedLessons    datatypes.JSONSlice[uint] `json:"accessed_lessons"`
	CurrentLessonID    *uint                     `json:"current_lesson_id"`
	StartedAt          *time.Time                `json:"started_at"`
	LastAccessedAt     *time.Time                `json:"last_accessed_at" gorm:"index"`
	CompletedAt        *time.Time                `json:"completed_at"`
	Version            uint                      `json:"-" gorm:"not null;default:0"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
	Course             *Course                   `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (UserCourseProgress) TableName() string {
	return "user_course_progress"
}

// NewProgress returns an empty enrollment row for user in course.
func NewProgress(userID, courseID uint) *UserCourseProgress {
	return &UserCourseProgress{
		UserID:           userID,
		CourseID:         courseID,
		Status:           StatusNotStarted,
		CompletedLessons: datatypes.JSONSlice[uint]{},
		AccessedLessons:  datatypes.JSONSlice[uint]{},
	}
}

func (p *UserCourseProgress) HasCompleted(lessonID uint) bool {
	return containsID(p.CompletedLessons, lessonID)
}

func (p *UserCourseProgress) HasAccessed(lessonID uint) bool {
	return containsID(p.AccessedLessons, lessonID)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
