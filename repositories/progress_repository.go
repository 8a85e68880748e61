package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursehub/models/course"

	"gorm.io/gorm"
)

// MaxUpdateAttempts bounds how often Update re-reads a row after losing a
// version race.
const MaxUpdateAttempts = 3

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// EnrollmentRow is an enrollment joined with its user and course.
type EnrollmentRow struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	CourseID           uint       `json:"course_id"`
	Status             string     `json:"status"`
	ProgressPercentage int        `json:"progress_percentage"`
	StartedAt          *time.Time `json:"started_at"`
	LastAccessedAt     *time.Time `json:"last_accessed_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UserName           string     `json:"user_name"`
	UserEmail          string     `json:"user_email"`
	CourseTitle        string     `json:"course_title"`
	CourseSlug         string     `json:"course_slug"`
}

func (r *ProgressRepository) Find(ctx context.Context, userID, courseID uint) (*course.UserCourseProgress, error) {
	var p course.UserCourseProgress
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Enroll creates the progress row for (user, course). If one already exists it
// is returned together with ErrAlreadyEnrolled.
func (r *ProgressRepository) Enroll(ctx context.Context, userID, courseID uint) (*course.UserCourseProgress, error) {
	existing, err := r.Find(ctx, userID, courseID)
	if err == nil {
		return existing, ErrAlreadyEnrolled
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p := course.NewProgress(userID, courseID)
	if err := r.db.WithContext(ctx).Omit("Course").Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			existing, ferr := r.Find(ctx, userID, courseID)
			if ferr != nil {
				return nil, ferr
			}
			return existing, ErrAlreadyEnrolled
		}
		return nil, err
	}
	return p, nil
}

// Save writes p if nobody else has written it since it was read.
func (r *ProgressRepository) Save(ctx context.Context, p *course.UserCourseProgress) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&course.UserCourseProgress{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"status":              p.Status,
			"progress_percentage": p.ProgressPercentage,
			"completed_lessons":   p.CompletedLessons,
			"accessed_lessons":    p.AccessedLessons,
			"current_lesson_id":   p.CurrentLessonID,
			"started_at":          p.StartedAt,
			"last_accessed_at":    p.LastAccessedAt,
			"completed_at":        p.CompletedAt,
			"version":             p.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

// Update loads the enrollment, applies mutate and saves it, re-reading and
// re-applying when a concurrent writer got there first.
func (r *ProgressRepository) Update(ctx context.Context, userID, courseID uint, mutate func(p *course.UserCourseProgress) error) (*course.UserCourseProgress, error) {
	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		p, err := r.Find(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		if err := mutate(p); err != nil {
			return nil, err
		}
		err = r.Save(ctx, p)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("update progress for user %d course %d: %w", userID, courseID, ErrVersionConflict)
}

// RecalculateCourse applies fn to every enrollment of the course and returns
// how many rows were rewritten.
func (r *ProgressRepository) RecalculateCourse(ctx context.Context, courseID uint, fn func(p *course.UserCourseProgress)) (int, error) {
	var userIDs []uint
	err := r.db.WithContext(ctx).Model(&course.UserCourseProgress{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, uid := range userIDs {
		_, err := r.Update(ctx, uid, courseID, func(p *course.UserCourseProgress) error {
			fn(p)
			return nil
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// ListByUser returns the user's enrollments with their courses, most recently
// active first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]course.UserCourseProgress, error) {
	var rows []course.UserCourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Course").
		Order("last_accessed_at DESC").Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("user_course_progress AS p").
		Select(`p.id, p.user_id, p.course_id, p.status, p.progress_percentage, p.started_at,
			p.last_accessed_at, p.completed_at, p.created_at,
			u.name AS user_name, u.email AS user_email, c.title AS course_title, c.slug AS course_slug`).
		Joins("JOIN users u ON u.id = p.user_id").
		Joins("JOIN courses c ON c.id = p.course_id")
}

// ListByCourse pages through a course's enrollments, newest first.
func (r *ProgressRepository) ListByCourse(ctx context.Context, courseID uint, page Page) ([]EnrollmentRow, Pagination, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&course.UserCourseProgress{}).
		Where("course_id = ?", courseID).Count(&total).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	var rows []EnrollmentRow
	err = r.joined(ctx).
		Where("p.course_id = ?", courseID).
		Order("p.created_at DESC").Order("p.id DESC").
		Offset(page.offset()).Limit(page.normalized().Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return rows, newPagination(page, total), nil
}

// Recent returns the latest enrollments across all courses.
func (r *ProgressRepository) Recent(ctx context.Context, limit int) ([]EnrollmentRow, error) {
	var rows []EnrollmentRow
	err := r.joined(ctx).Order("p.created_at DESC").Order("p.id DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *ProgressRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&course.UserCourseProgress{}).Where("course_id = ?", courseID).Count(&total).Error
	return total, err
}

func (r *ProgressRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&course.UserCourseProgress{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&total).Error
	return total, err
}

// DeleteByUser drops every enrollment of the user.
func (r *ProgressRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&course.UserCourseProgress{}).Error
}
