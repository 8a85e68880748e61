// Package ranking scores published courses by engagement.
package ranking

import (
	"math"
	"sort"

	"coursehub/models/course"
)

const (
	EnrollmentWeight = 1.0
	CompletionWeight = 2.0
	RecentWeight     = 1.5

	// DefaultLimit is how many courses the home page shows.
	DefaultLimit = 4
)

// CourseStats are the raw engagement counts for one course.
type CourseStats struct {
	Course      course.Course
	Enrollments int64
	Completions int64
	Recent      int64
}

// Ranked is a course with its computed score and completion rate.
type Ranked struct {
	Course         course.Course `json:"course"`
	Enrollments    int64         `json:"enrollment_count"`
	Completions    int64         `json:"completion_count"`
	Recent         int64         `json:"recent_activity_count"`
	Score          float64       `json:"score"`
	CompletionRate float64       `json:"completion_rate"`
}

func Score(s CourseStats) float64 {
	return float64(s.Enrollments)*EnrollmentWeight +
		float64(s.Completions)*CompletionWeight +
		float64(s.Recent)*RecentWeight
}

// CompletionRate is the percentage of enrollments that completed, rounded to
// one decimal. Zero enrollments yield 0.
func CompletionRate(enrollments, completions int64) float64 {
	if enrollments <= 0 {
		return 0
	}
	return math.Round(1000*float64(completions)/float64(enrollments)) / 10
}

// Rank orders stats by descending score. Equal scores keep their input order.
// limit <= 0 returns every course.
func Rank(stats []CourseStats, limit int) []Ranked {
	out := make([]Ranked, 0, len(stats))
	for _, s := range stats {
		out = append(out, Ranked{
			Course:         s.Course,
			Enrollments:    s.Enrollments,
			Completions:    s.Completions,
			Recent:         s.Recent,
			Score:          Score(s),
			CompletionRate: CompletionRate(s.Enrollments, s.Completions),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
