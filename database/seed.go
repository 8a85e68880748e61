package database

import (
	"errors"
	"fmt"
	"os"

	"coursehub/logger"
	"coursehub/models"
	"coursehub/models/course"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML layout accepted by Seed.
type SeedFile struct {
	Admin *struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Courses []struct {
		Title            string   `yaml:"title"`
		Slug             string   `yaml:"slug"`
		ShortDescription string   `yaml:"short_description"`
		Description      string   `yaml:"description"`
		Difficulty       string   `yaml:"difficulty"`
		EstimatedHours   int      `yaml:"estimated_hours"`
		Tags             []string `yaml:"tags"`
		Published        bool     `yaml:"published"`
		Featured         bool     `yaml:"featured"`
		SortOrder        int      `yaml:"sort_order"`
		Lessons          []struct {
			Title     string `yaml:"title"`
			Slug      string `yaml:"slug"`
			Duration  int    `yaml:"duration"`
			Content   string `yaml:"content"`
			VideoURL  string `yaml:"video_url"`
			Published bool   `yaml:"published"`
		} `yaml:"lessons"`
	} `yaml:"courses"`
}

// SeedFromFile loads path and inserts anything missing. Existing rows, matched
// by email or slug, are left untouched.
func SeedFromFile(db *gorm.DB, path string, saltRound int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	return Seed(db, &seed, saltRound)
}

func Seed(db *gorm.DB, seed *SeedFile, saltRound int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if seed.Admin != nil && seed.Admin.Email != "" {
			var existing models.User
			err := tx.Where("email = ?", seed.Admin.Email).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				hash, err := bcrypt.GenerateFromPassword([]byte(seed.Admin.Password), saltRound)
				if err != nil {
					return err
				}
				admin := models.User{Name: seed.Admin.Name, Email: seed.Admin.Email, Password: string(hash), Role: models.RoleAdmin}
				if err := tx.Create(&admin).Error; err != nil {
					return err
				}
				logger.Log.Info("seeded admin user", "email", admin.Email)
			} else if err != nil {
				return err
			}
		}

		for _, sc := range seed.Courses {
			var count int64
			if err := tx.Model(&course.Course{}).Where("slug = ?", sc.Slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			c := course.Course{
				Title:            sc.Title,
				Slug:             sc.Slug,
				ShortDescription: sc.ShortDescription,
				Description:      sc.Description,
				Difficulty:       sc.Difficulty,
				EstimatedHours:   sc.EstimatedHours,
				Tags:             sc.Tags,
				IsPublished:      sc.Published,
				IsFeatured:       sc.Featured,
				SortOrder:        sc.SortOrder,
			}
			if c.Difficulty == "" {
				c.Difficulty = course.DifficultyBeginner
			}
			for i, sl := range sc.Lessons {
				c.Lessons = append(c.Lessons, course.Lesson{
					Title:           sl.Title,
					Slug:            sl.Slug,
					SortOrder:       i + 1,
					DurationMinutes: sl.Duration,
					Content:         sl.Content,
					VideoURL:        sl.VideoURL,
					IsPublished:     sl.Published,
					Resources:       []course.LessonResource{},
				})
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("seed course %s: %w", sc.Slug, err)
			}
			logger.Log.Info("seeded course", "slug", c.Slug, "lessons", len(c.Lessons))
		}
		return nil
	})
}
