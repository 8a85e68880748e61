package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"coursehub/database"
	"coursehub/models"
	"coursehub/models/course"
	"coursehub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const seedYAML = `
admin:
  name: Admin
  email: admin@example.com
  password: secret-password
courses:
  - title: Go Basics
    slug: go-basics
    difficulty: beginner
    tags: [go]
    published: true
    lessons:
      - title: Intro
        slug: intro
        duration: 10
        published: true
      - title: Draft
        slug: draft
        duration: 5
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestSeedFromFile(t *testing.T) {
	db := testutil.DB(t)
	path := writeSeed(t)

	require.NoError(t, database.SeedFromFile(db, path, bcrypt.MinCost))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("secret-password")))

	var c course.Course
	require.NoError(t, db.Preload("Lessons").Where("slug = ?", "go-basics").First(&c).Error)
	assert.True(t, c.IsPublished)
	assert.Equal(t, []string{"go"}, []string(c.Tags))
	require.Len(t, c.Lessons, 2)
	assert.Equal(t, 15, c.TotalDuration())
	assert.Len(t, c.PublishedLessons(), 1)
}

func TestSeedIsRepeatable(t *testing.T) {
	db := testutil.DB(t)
	path := writeSeed(t)

	require.NoError(t, database.SeedFromFile(db, path, bcrypt.MinCost))
	require.NoError(t, database.SeedFromFile(db, path, bcrypt.MinCost))

	var users, courses, lessons int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&course.Course{}).Count(&courses).Error)
	require.NoError(t, db.Model(&course.Lesson{}).Count(&lessons).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), courses)
	assert.Equal(t, int64(2), lessons)
}

func TestSeedFromMissingFile(t *testing.T) {
	db := testutil.DB(t)
	assert.Error(t, database.SeedFromFile(db, filepath.Join(t.TempDir(), "absent.yaml"), bcrypt.MinCost))
}
