package course

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Course represents a learning course. Lessons are ordered by SortOrder.
type Course struct {
	ID               uint                        `json:"id" gorm:"primaryKey"`
	Title            string                      `json:"title" gorm:"size:255;not null"`
	Slug             string                      `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description      string                      `json:"description" gorm:"type:text"`
	ShortDescription string                      `json:"short_description" gorm:"size:500"`
	Thumbnail        string                      `json:"thumbnail"`
	IsPublished      bool                        `json:"is_published" gorm:"index;default:false"`
	IsFeatured       bool                        `json:"is_featured" gorm:"default:false"`
	SortOrder        int                         `json:"sort_order" gorm:"index;default:0"`
	Difficulty       string                      `json:"difficulty" gorm:"size:20;default:'beginner'"`
	EstimatedHours   int                         `json:"estimated_hours" gorm:"default:0"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	PriceLabel       string                      `json:"price_label" gorm:"size:50"`
	Lessons          []Lesson                    `json:"lessons,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// TotalDuration is the sum of the loaded lessons' durations in minutes.
func (c *Course) TotalDuration() int {
	total := 0
	for _, l := range c.Lessons {
		total += l.DurationMinutes
	}
	return total
}

// PublishedLessons returns the loaded lessons that are published, keeping their order.
func (c *Course) PublishedLessons() []Lesson {
	out := make([]Lesson, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		if l.IsPublished {
			out = append(out, l)
		}
	}
	return out
}
