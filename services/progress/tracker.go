// Package progress applies lesson completion and navigation events to a
// user's course progress record. It never touches the database; callers load
// the record and the course's published lessons, apply an operation, then
// persist the result.
package progress

import (
	"errors"
	"math"
	"sort"
	"time"

	"coursehub/models/course"
)

// MinutesPerLesson is the flat per-lesson estimate used for time remaining.
const MinutesPerLesson = 30

var ErrLessonNotInCourse = errors.New("lesson is not a published lesson of this course")

// Tracker binds a progress record to the published lessons of its course.
type Tracker struct {
	Progress *course.UserCourseProgress
	lessons  []course.Lesson
	now      func() time.Time
}

// New returns a tracker over p. lessons must be the course's published
// lessons; they are copied and ordered by sort order, then by ID.
func New(p *course.UserCourseProgress, lessons []course.Lesson) *Tracker {
	ordered := make([]course.Lesson, len(lessons))
	copy(ordered, lessons)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].ID < ordered[j].ID
	})
	return &Tracker{Progress: p, lessons: ordered, now: time.Now}
}

// WithClock replaces the time source, mainly for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Lessons returns the ordered published lessons.
func (t *Tracker) Lessons() []course.Lesson {
	return t.lessons
}

func (t *Tracker) lesson(id uint) *course.Lesson {
	for i := range t.lessons {
		if t.lessons[i].ID == id {
			return &t.lessons[i]
		}
	}
	return nil
}

// MarkLessonCompleted records lessonID as completed. Completing an already
// completed lesson changes nothing.
func (t *Tracker) MarkLessonCompleted(lessonID uint) error {
	if t.lesson(lessonID) == nil {
		return ErrLessonNotInCourse
	}
	p := t.Progress
	if p.HasCompleted(lessonID) {
		return nil
	}

	now := t.now()
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	p.LastAccessedAt = &now
	id := lessonID
	p.CurrentLessonID = &id
	t.recompute(now)
	return nil
}

// TrackLessonAccess records a view of lessonID. Moving forward from a lesson
// counts as completing it.
func (t *Tracker) TrackLessonAccess(lessonID uint, isForwardNav bool) error {
	if t.lesson(lessonID) == nil {
		return ErrLessonNotInCourse
	}
	p := t.Progress

	now := t.now()
	p.LastAccessedAt = &now
	id := lessonID
	p.CurrentLessonID = &id
	if !p.HasAccessed(lessonID) {
		p.AccessedLessons = append(p.AccessedLessons, lessonID)
	}

	if isForwardNav && !p.HasCompleted(lessonID) {
		return t.MarkLessonCompleted(lessonID)
	}
	return nil
}

// NextLesson returns the first published lesson not yet completed, or nil
// when every lesson is done.
func (t *Tracker) NextLesson() *course.Lesson {
	for i := range t.lessons {
		if !t.Progress.HasCompleted(t.lessons[i].ID) {
			return &t.lessons[i]
		}
	}
	return nil
}

// CurrentLesson returns the stored current lesson while it is still a
// published lesson, otherwise the next lesson.
func (t *Tracker) CurrentLesson() *course.Lesson {
	if t.Progress.CurrentLessonID != nil {
		if l := t.lesson(*t.Progress.CurrentLessonID); l != nil {
			return l
		}
	}
	return t.NextLesson()
}

// MarkAsStarted moves a fresh enrollment to in_progress. StartedAt is only
// ever set once.
func (t *Tracker) MarkAsStarted() {
	p := t.Progress
	if p.Status != course.StatusCompleted {
		p.Status = course.StatusInProgress
	}
	if p.StartedAt == nil {
		now := t.now()
		p.StartedAt = &now
	}
}

// EstimatedTimeToCompletion assumes a flat MinutesPerLesson per remaining lesson.
func (t *Tracker) EstimatedTimeToCompletion() time.Duration {
	remaining := len(t.lessons) - t.completedCount()
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining*MinutesPerLesson) * time.Minute
}

// CompleteCourse marks every published lesson as completed.
func (t *Tracker) CompleteCourse() {
	if len(t.lessons) == 0 {
		return
	}
	p := t.Progress
	now := t.now()
	for _, l := range t.lessons {
		if !p.HasCompleted(l.ID) {
			p.CompletedLessons = append(p.CompletedLessons, l.ID)
		}
	}
	last := t.lessons[len(t.lessons)-1].ID
	p.CurrentLessonID = &last
	p.LastAccessedAt = &now
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	t.recompute(now)
}

// Recalculate re-derives percentage and status, e.g. after lessons were added,
// removed or unpublished.
func (t *Tracker) Recalculate() {
	t.recompute(t.now())
}

func (t *Tracker) completedCount() int {
	n := 0
	for _, l := range t.lessons {
		if t.Progress.HasCompleted(l.ID) {
			n++
		}
	}
	return n
}

// Percentage is round(100 * completed / published), 0 for a course with no
// published lessons.
func (t *Tracker) Percentage() int {
	total := len(t.lessons)
	if total == 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(t.completedCount()) / float64(total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (t *Tracker) recompute(now time.Time) {
	p := t.Progress
	p.ProgressPercentage = t.Percentage()

	switch {
	case p.ProgressPercentage >= 100:
		p.Status = course.StatusCompleted
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	case t.completedCount() > 0 || p.StartedAt != nil:
		p.Status = course.StatusInProgress
		p.CompletedAt = nil
	default:
		p.Status = course.StatusNotStarted
		p.CompletedAt = nil
	}
}

// Summary is the progress view returned alongside lessons.
type Summary struct {
	Status               string `json:"status"`
	Percentage           int    `json:"progress_percentage"`
	CompletedLessons     int    `json:"completed_lessons"`
	TotalLessons         int    `json:"total_lessons"`
	NextLessonID         *uint  `json:"next_lesson_id"`
	NextLessonSlug       string `json:"next_lesson_slug,omitempty"`
	CurrentLessonID      *uint  `json:"current_lesson_id"`
	EstimatedMinutesLeft int    `json:"estimated_minutes_left"`
}

func (t *Tracker) Summary() Summary {
	s := Summary{
		Status:               t.Progress.Status,
		Percentage:           t.Progress.ProgressPercentage,
		CompletedLessons:     t.completedCount(),
		TotalLessons:         len(t.lessons),
		EstimatedMinutesLeft: int(t.EstimatedTimeToCompletion() / time.Minute),
	}
	if next := t.NextLesson(); next != nil {
		id := next.ID
		s.NextLessonID = &id
		s.NextLessonSlug = next.Slug
	}
	if cur := t.CurrentLesson(); cur != nil {
		id := cur.ID
		s.CurrentLessonID = &id
	}
	return s
}

// Neighbours returns the published lessons before and after lessonID.
func (t *Tracker) Neighbours(lessonID uint) (prev, next *course.Lesson) {
	for i := range t.lessons {
		if t.lessons[i].ID != lessonID {
			continue
		}
		if i > 0 {
			prev = &t.lessons[i-1]
		}
		if i+1 < len(t.lessons) {
			next = &t.lessons[i+1]
		}
		return prev, next
	}
	return nil, nil
}
