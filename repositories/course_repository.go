package repositories

import (
	"context"
	"fmt"
	"strings"

	"coursehub/models/course"

	"gorm.io/gorm"
)

// CourseFilter narrows course listings. Published nil means any state.
type CourseFilter struct {
	Search     string
	Difficulty string
	Published  *bool
	Featured   *bool
	Page
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func publishedLessons(db *gorm.DB) *gorm.DB {
	return db.Where("is_published = ?", true).Order("sort_order ASC").Order("id ASC")
}

func (r *CourseRepository) filtered(ctx context.Context, f CourseFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&course.Course{})
	if f.Published != nil {
		q = q.Where("is_published = ?", *f.Published)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(short_description) LIKE ?", like, like)
	}
	return q
}

// List returns one page of courses. Lessons are not loaded.
func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]course.Course, Pagination, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var courses []course.Course
	err := r.filtered(ctx, f).
		Order("sort_order ASC").Order("id ASC").
		Offset(f.offset()).Limit(f.normalized().Limit).
		Find(&courses).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return courses, newPagination(f.Page, total), nil
}

// ListPublished lists published courses with their published lessons loaded.
func (r *CourseRepository) ListPublished(ctx context.Context, f CourseFilter) ([]course.Course, Pagination, error) {
	published := true
	f.Published = &published

	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var courses []course.Course
	err := r.filtered(ctx, f).
		Preload("Lessons", publishedLessons).
		Order("sort_order ASC").Order("id ASC").
		Offset(f.offset()).Limit(f.normalized().Limit).
		Find(&courses).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return courses, newPagination(f.Page, total), nil
}

// Featured returns up to limit published, featured courses.
func (r *CourseRepository) Featured(ctx context.Context, limit int) ([]course.Course, error) {
	var courses []course.Course
	err := r.db.WithContext(ctx).
		Where("is_published = ? AND is_featured = ?", true, true).
		Preload("Lessons", publishedLessons).
		Order("sort_order ASC").Order("id ASC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

// FindPublishedBySlug loads a published course and only its published lessons.
func (r *CourseRepository) FindPublishedBySlug(ctx context.Context, slug string) (*course.Course, error) {
	var c course.Course
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		Preload("Lessons", publishedLessons).
		First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindByID loads a course with every lesson, published or not.
func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*course.Course, error) {
	var c course.Course
	err := r.db.WithContext(ctx).Preload("Lessons", orderedLessons).First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CourseRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&course.Course{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	err := r.db.WithContext(ctx).Omit("Lessons").Create(c).Error
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

// Save writes every column of c except its lessons.
func (r *CourseRepository) Save(ctx context.Context, c *course.Course) error {
	err := r.db.WithContext(ctx).Omit("Lessons").Save(c).Error
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

// Delete removes the course with its lessons and every enrollment.
func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&course.UserCourseProgress{}).Error; err != nil {
			return fmt.Errorf("delete enrollments: %w", err)
		}
		if err := tx.Where("course_id = ?", id).Delete(&course.Lesson{}).Error; err != nil {
			return fmt.Errorf("delete lessons: %w", err)
		}
		res := tx.Delete(&course.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *CourseRepository) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&course.Course{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	err := q.Count(&total).Error
	return total, err
}
