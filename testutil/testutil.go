// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"coursehub/database"
	"coursehub/models"
	"coursehub/models/course"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh migrated sqlite database private to tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.RunMigrations(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string, role string) *models.User {
	tb.Helper()
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Password: "x",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates a course with one lesson per entry in published; the
// flag decides whether that lesson is published. Lessons get 10 minutes each.
func SeedCourse(tb testing.TB, db *gorm.DB, slug string, isPublished bool, published ...bool) *course.Course {
	tb.Helper()
	c := &course.Course{
		Title:       strings.ToUpper(slug[:1]) + slug[1:],
		Slug:        slug,
		IsPublished: isPublished,
		Difficulty:  course.DifficultyBeginner,
		Tags:        datatypes.JSONSlice[string]{},
	}
	if err := db.Omit("Lessons").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	for i, pub := range published {
		l := course.Lesson{
			CourseID:        c.ID,
			Title:           fmt.Sprintf("Lesson %d", i+1),
			Slug:            fmt.Sprintf("lesson-%d", i+1),
			SortOrder:       i + 1,
			IsPublished:     pub,
			DurationMinutes: 10,
			Resources:       datatypes.JSONSlice[course.LessonResource]{},
		}
		if err := db.Create(&l).Error; err != nil {
			tb.Fatalf("seed lesson: %v", err)
		}
		c.Lessons = append(c.Lessons, l)
	}
	return c
}

func SeedProgress(tb testing.TB, db *gorm.DB, p *course.UserCourseProgress) *course.UserCourseProgress {
	tb.Helper()
	if p.CompletedLessons == nil {
		p.CompletedLessons = datatypes.JSONSlice[uint]{}
	}
	if p.AccessedLessons == nil {
		p.AccessedLessons = datatypes.JSONSlice[uint]{}
	}
	if p.Status == "" {
		p.Status = course.StatusNotStarted
	}
	if err := db.Omit("Course").Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
