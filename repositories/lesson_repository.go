package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"coursehub/models/course"

	"gorm.io/gorm"
)

type LessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListByCourse returns every lesson of the course in display order.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID uint) ([]course.Lesson, error) {
	var lessons []course.Lesson
	err := orderedLessons(r.db.WithContext(ctx)).Where("course_id = ?", courseID).Find(&lessons).Error
	return lessons, err
}

// Published returns the course's published lessons in display order.
func (r *LessonRepository) Published(ctx context.Context, courseID uint) ([]course.Lesson, error) {
	var lessons []course.Lesson
	err := publishedLessons(r.db.WithContext(ctx)).Where("course_id = ?", courseID).Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) FindInCourse(ctx context.Context, courseID, lessonID uint) (*course.Lesson, error) {
	var l course.Lesson
	err := r.db.WithContext(ctx).Where("course_id = ? AND id = ?", courseID, lessonID).First(&l).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *LessonRepository) FindPublishedBySlug(ctx context.Context, courseID uint, slug string) (*course.Lesson, error) {
	var l course.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND slug = ? AND is_published = ?", courseID, slug, true).
		First(&l).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *LessonRepository) SlugExists(ctx context.Context, courseID uint, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&course.Lesson{}).Where("course_id = ? AND slug = ?", courseID, slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSortOrder is one past the highest sort order in the course.
func (r *LessonRepository) NextSortOrder(ctx context.Context, courseID uint) (int, error) {
	var max sql.NullInt64
	row := r.db.WithContext(ctx).Model(&course.Lesson{}).
		Where("course_id = ?", courseID).
		Select("MAX(sort_order)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *LessonRepository) Create(ctx context.Context, l *course.Lesson) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *LessonRepository) Save(ctx context.Context, l *course.Lesson) error {
	err := r.db.WithContext(ctx).Save(l).Error
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *LessonRepository) Delete(ctx context.Context, courseID, lessonID uint) error {
	res := r.db.WithContext(ctx).Where("course_id = ?", courseID).Delete(&course.Lesson{}, lessonID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder assigns sort orders 1..n following ids. Every id must belong to the course.
func (r *LessonRepository) Reorder(ctx context.Context, courseID uint, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&course.Lesson{}).Where("course_id = ? AND id IN ?", courseID, ids).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return fmt.Errorf("reorder: %w", ErrNotFound)
		}
		for i, id := range ids {
			err := tx.Model(&course.Lesson{}).
				Where("course_id = ? AND id = ?", courseID, id).
				Update("sort_order", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LessonRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&course.Lesson{}).Count(&total).Error
	return total, err
}
