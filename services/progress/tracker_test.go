package progress

import (
	"testing"
	"time"

	"coursehub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func lessons(n int) []course.Lesson {
	out := make([]course.Lesson, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, course.Lesson{ID: uint(i * 10), SortOrder: i, IsPublished: true, Slug: "l" + string(rune('0'+i))})
	}
	return out
}

func newTracker(n int) *Tracker {
	return New(course.NewProgress(1, 1), lessons(n)).WithClock(func() time.Time { return fixedNow })
}

func assertInvariant(t *testing.T, tr *Tracker) {
	t.Helper()
	p := tr.Progress
	total := len(tr.Lessons())
	if total > 0 {
		want := int(float64(100*tr.completedCount())/float64(total) + 0.5)
		assert.Equal(t, want, p.ProgressPercentage)
	}
	switch {
	case p.ProgressPercentage >= 100:
		assert.Equal(t, course.StatusCompleted, p.Status)
		assert.NotNil(t, p.CompletedAt)
	case p.ProgressPercentage > 0:
		assert.Equal(t, course.StatusInProgress, p.Status)
	}
}

func TestMarkLessonCompletedUpdatesPercentageAndStatus(t *testing.T) {
	tr := newTracker(3)

	require.NoError(t, tr.MarkLessonCompleted(10))
	assert.Equal(t, 33, tr.Progress.ProgressPercentage)
	assert.Equal(t, course.StatusInProgress, tr.Progress.Status)
	require.NotNil(t, tr.Progress.CurrentLessonID)
	assert.Equal(t, uint(10), *tr.Progress.CurrentLessonID)
	assert.Equal(t, fixedNow, *tr.Progress.LastAccessedAt)
	assertInvariant(t, tr)

	require.NoError(t, tr.MarkLessonCompleted(20))
	assert.Equal(t, 67, tr.Progress.ProgressPercentage)
	assertInvariant(t, tr)

	require.NoError(t, tr.MarkLessonCompleted(30))
	assert.Equal(t, 100, tr.Progress.ProgressPercentage)
	assert.Equal(t, course.StatusCompleted, tr.Progress.Status)
	assert.Equal(t, fixedNow, *tr.Progress.CompletedAt)
	assertInvariant(t, tr)
}

func TestMarkLessonCompletedIsIdempotent(t *testing.T) {
	tr := newTracker(4)
	require.NoError(t, tr.MarkLessonCompleted(20))
	completed := append([]uint(nil), tr.Progress.CompletedLessons...)
	pct := tr.Progress.ProgressPercentage

	later := fixedNow.Add(time.Hour)
	tr.WithClock(func() time.Time { return later })
	require.NoError(t, tr.MarkLessonCompleted(20))

	assert.Equal(t, completed, []uint(tr.Progress.CompletedLessons))
	assert.Equal(t, pct, tr.Progress.ProgressPercentage)
	assert.Equal(t, fixedNow, *tr.Progress.LastAccessedAt)
}

func TestMarkLessonCompletedRejectsForeignLesson(t *testing.T) {
	tr := newTracker(2)
	err := tr.MarkLessonCompleted(999)
	assert.ErrorIs(t, err, ErrLessonNotInCourse)
	assert.Empty(t, tr.Progress.CompletedLessons)
	assert.Equal(t, course.StatusNotStarted, tr.Progress.Status)
}

func TestForwardNavigationCompletesLesson(t *testing.T) {
	nav := newTracker(3)
	require.NoError(t, nav.TrackLessonAccess(20, true))

	direct := newTracker(3)
	require.NoError(t, direct.MarkLessonCompleted(20))
	direct.Progress.AccessedLessons = append(direct.Progress.AccessedLessons, 20)

	assert.Equal(t, direct.Progress, nav.Progress)
}

func TestTrackLessonAccessWithoutForwardNav(t *testing.T) {
	tr := newTracker(3)
	require.NoError(t, tr.TrackLessonAccess(20, false))
	require.NoError(t, tr.TrackLessonAccess(20, false))

	assert.Equal(t, []uint{20}, []uint(tr.Progress.AccessedLessons))
	assert.Empty(t, tr.Progress.CompletedLessons)
	assert.Equal(t, 0, tr.Progress.ProgressPercentage)
	assert.Equal(t, course.StatusNotStarted, tr.Progress.Status)
	assert.Equal(t, uint(20), *tr.Progress.CurrentLessonID)
}

func TestForwardNavigationOnCompletedLessonOnlyTracks(t *testing.T) {
	tr := newTracker(2)
	require.NoError(t, tr.MarkLessonCompleted(10))
	require.NoError(t, tr.TrackLessonAccess(10, true))
	assert.Equal(t, []uint{10}, []uint(tr.Progress.CompletedLessons))
	assert.Equal(t, []uint{10}, []uint(tr.Progress.AccessedLessons))
	assert.Equal(t, 50, tr.Progress.ProgressPercentage)
}

func TestNextLessonOrdering(t *testing.T) {
	ls := []course.Lesson{
		{ID: 7, SortOrder: 2, IsPublished: true},
		{ID: 5, SortOrder: 2, IsPublished: true},
		{ID: 9, SortOrder: 1, IsPublished: true},
	}
	tr := New(course.NewProgress(1, 1), ls)

	require.NotNil(t, tr.NextLesson())
	assert.Equal(t, uint(9), tr.NextLesson().ID)

	require.NoError(t, tr.MarkLessonCompleted(9))
	assert.Equal(t, uint(5), tr.NextLesson().ID, "equal sort order falls back to lesson id")

	require.NoError(t, tr.MarkLessonCompleted(5))
	require.NoError(t, tr.MarkLessonCompleted(7))
	assert.Nil(t, tr.NextLesson())
}

func TestCurrentLessonFallsBackToNext(t *testing.T) {
	tr := newTracker(3)
	assert.Equal(t, uint(10), tr.CurrentLesson().ID)

	stale := uint(999)
	tr.Progress.CurrentLessonID = &stale
	assert.Equal(t, uint(10), tr.CurrentLesson().ID)

	require.NoError(t, tr.TrackLessonAccess(30, false))
	assert.Equal(t, uint(30), tr.CurrentLesson().ID)
}

func TestMarkAsStartedSetsStartedAtOnce(t *testing.T) {
	tr := newTracker(2)
	tr.MarkAsStarted()
	assert.Equal(t, course.StatusInProgress, tr.Progress.Status)
	assert.Equal(t, fixedNow, *tr.Progress.StartedAt)

	tr.WithClock(func() time.Time { return fixedNow.Add(24 * time.Hour) })
	tr.MarkAsStarted()
	assert.Equal(t, fixedNow, *tr.Progress.StartedAt)
}

func TestMarkAsStartedKeepsCompleted(t *testing.T) {
	tr := newTracker(1)
	require.NoError(t, tr.MarkLessonCompleted(10))
	tr.MarkAsStarted()
	assert.Equal(t, course.StatusCompleted, tr.Progress.Status)
}

func TestEstimatedTimeToCompletion(t *testing.T) {
	tr := newTracker(4)
	assert.Equal(t, 120*time.Minute, tr.EstimatedTimeToCompletion())
	require.NoError(t, tr.MarkLessonCompleted(10))
	assert.Equal(t, 90*time.Minute, tr.EstimatedTimeToCompletion())
}

func TestCompleteCourse(t *testing.T) {
	tr := newTracker(3)
	require.NoError(t, tr.MarkLessonCompleted(20))
	tr.CompleteCourse()

	assert.ElementsMatch(t, []uint{10, 20, 30}, []uint(tr.Progress.CompletedLessons))
	assert.Equal(t, 100, tr.Progress.ProgressPercentage)
	assert.Equal(t, course.StatusCompleted, tr.Progress.Status)
	assert.Nil(t, tr.NextLesson())
	assertInvariant(t, tr)
}

func TestRecalculateAfterLessonAdded(t *testing.T) {
	p := course.NewProgress(1, 1)
	tr := New(p, lessons(2)).WithClock(func() time.Time { return fixedNow })
	tr.CompleteCourse()
	require.Equal(t, course.StatusCompleted, p.Status)

	grown := New(p, lessons(4)).WithClock(func() time.Time { return fixedNow })
	grown.Recalculate()
	assert.Equal(t, 50, p.ProgressPercentage)
	assert.Equal(t, course.StatusInProgress, p.Status)
	assert.Nil(t, p.CompletedAt)
}

func TestRecalculateIgnoresRemovedLessons(t *testing.T) {
	p := course.NewProgress(1, 1)
	tr := New(p, lessons(4)).WithClock(func() time.Time { return fixedNow })
	require.NoError(t, tr.MarkLessonCompleted(40))

	shrunk := New(p, lessons(2)).WithClock(func() time.Time { return fixedNow })
	shrunk.Recalculate()
	assert.Equal(t, 0, p.ProgressPercentage)
	assert.Equal(t, course.StatusNotStarted, p.Status)
}

func TestEmptyCourse(t *testing.T) {
	tr := newTracker(0)
	tr.Recalculate()
	assert.Equal(t, 0, tr.Progress.ProgressPercentage)
	assert.Nil(t, tr.NextLesson())
	assert.Equal(t, time.Duration(0), tr.EstimatedTimeToCompletion())
	tr.CompleteCourse()
	assert.Equal(t, course.StatusNotStarted, tr.Progress.Status)
}

func TestNeighbours(t *testing.T) {
	tr := newTracker(3)
	prev, next := tr.Neighbours(10)
	assert.Nil(t, prev)
	assert.Equal(t, uint(20), next.ID)

	prev, next = tr.Neighbours(30)
	assert.Equal(t, uint(20), prev.ID)
	assert.Nil(t, next)
}
