package repositories

import (
	"context"
	"time"

	"coursehub/models/course"
	"coursehub/services/ranking"

	"gorm.io/gorm"
)

// RecentActivityWindow is how far back a last access counts as recent.
const RecentActivityWindow = 30 * 24 * time.Hour

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type courseCounts struct {
	CourseID    uint
	Enrollments int64
	Completions int64
	Recent      int64
}

// PublishedCourseStats returns engagement counts for every published course,
// in catalog order (sort order, then id). Courses without enrollments are
// included with zero counts.
func (r *StatsRepository) PublishedCourseStats(ctx context.Context, now time.Time) ([]ranking.CourseStats, error) {
	var courses []course.Course
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("sort_order ASC").Order("id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return []ranking.CourseStats{}, nil
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var counts []courseCounts
	err = r.db.WithContext(ctx).Model(&course.UserCourseProgress{}).
		Select(`course_id,
			SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS enrollments,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completions,
			SUM(CASE WHEN last_accessed_at >= ? THEN 1 ELSE 0 END) AS recent`,
			course.StatusCancelled, course.StatusCompleted, now.Add(-RecentActivityWindow)).
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byCourse := make(map[uint]courseCounts, len(counts))
	for _, c := range counts {
		byCourse[c.CourseID] = c
	}

	stats := make([]ranking.CourseStats, 0, len(courses))
	for _, c := range courses {
		cc := byCourse[c.ID]
		stats = append(stats, ranking.CourseStats{
			Course:      c,
			Enrollments: cc.Enrollments,
			Completions: cc.Completions,
			Recent:      cc.Recent,
		})
	}
	return stats, nil
}

// PopularCourses ranks published courses and keeps the top limit.
func (r *StatsRepository) PopularCourses(ctx context.Context, limit int) ([]ranking.Ranked, error) {
	stats, err := r.PublishedCourseStats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return ranking.Rank(stats, limit), nil
}

// Dashboard holds the admin overview numbers.
type Dashboard struct {
	TotalUsers       int64            `json:"total_users"`
	TotalCourses     int64            `json:"total_courses"`
	PublishedCourses int64            `json:"published_courses"`
	TotalLessons     int64            `json:"total_lessons"`
	TotalEnrollments int64            `json:"total_enrollments"`
	Completions      int64            `json:"completed_enrollments"`
	UnreadContacts   int64            `json:"unread_contacts"`
	ContactsByStatus map[string]int64 `json:"contacts_by_status"`
	RecentEnrollment []EnrollmentRow  `json:"recent_enrollments"`
}

// Dashboard gathers the overview numbers. recent bounds the enrollment list.
func (r *StatsRepository) Dashboard(ctx context.Context, recent int) (*Dashboard, error) {
	var (
		d        Dashboard
		err      error
		courses  = NewCourseRepository(r.db)
		lessons  = NewLessonRepository(r.db)
		progress = NewProgressRepository(r.db)
		users    = NewUserRepository(r.db)
		contacts = NewContactRepository(r.db)
	)

	if d.TotalUsers, err = users.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalCourses, err = courses.Count(ctx, false); err != nil {
		return nil, err
	}
	if d.PublishedCourses, err = courses.Count(ctx, true); err != nil {
		return nil, err
	}
	if d.TotalLessons, err = lessons.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalEnrollments, err = progress.CountByStatus(ctx, ""); err != nil {
		return nil, err
	}
	if d.Completions, err = progress.CountByStatus(ctx, course.StatusCompleted); err != nil {
		return nil, err
	}
	if d.UnreadContacts, err = contacts.CountUnread(ctx); err != nil {
		return nil, err
	}
	if d.ContactsByStatus, err = contacts.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.RecentEnrollment, err = progress.Recent(ctx, recent); err != nil {
		return nil, err
	}
	return &d, nil
}
