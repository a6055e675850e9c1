package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

type fakeLoader struct {
	collection models.Collection
	cacheHit   bool
	err        error
}

func (f *fakeLoader) Load(ctx context.Context, ownerID string) (models.Collection, error) {
	collection, _, err := f.LoadTracked(ctx, ownerID)
	return collection, err
}

func (f *fakeLoader) LoadTracked(ctx context.Context, ownerID string) (models.Collection, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.collection.Clone(), f.cacheHit, nil
}

func statsCollection() models.Collection {
	return models.Collection{
		{
			ID:     "sem-1",
			Term:   "Fall",
			Year:   2024,
			Status: models.SemesterStatusCompleted,
			Courses: []models.Course{
				fullyGradedCourse("course-1", 4, 91), // A
				fullyGradedCourse("course-2", 2, 58), // D
			},
		},
		{
			ID:      "sem-2",
			Term:    "Spring",
			Year:    2025,
			Status:  models.SemesterStatusInProgress,
			Current: true,
			Courses: []models.Course{
				{
					ID:      "course-3",
					Name:    "Databases",
					Credits: 3,
					Assessments: []models.Assessment{
						{ID: "a1", Weight: 30, Score: scorePtr(85)},
						{ID: "a2", Weight: 70},
					},
				},
			},
		},
	}
}

func TestStatsOverview(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection()}, nil)

	overview, cacheHit, err := svc.Overview(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 2, overview.SemesterCount)
	assert.Equal(t, 3, overview.CourseCount)
	assert.Equal(t, 4, overview.AssessmentCount)

	require.NotNil(t, overview.CumulativeGPA)
	// (4*4.0 + 2*1.0) / 6; the in-progress course contributes nothing.
	assert.InDelta(t, 3.0, *overview.CumulativeGPA, 1e-9)

	require.NotNil(t, overview.CurrentSemester)
	assert.Equal(t, "sem-2", overview.CurrentSemester.ID)
	assert.True(t, overview.CurrentSemester.Current)
	assert.Nil(t, overview.CurrentSemester.Stats.GPA)
}

func TestStatsOverviewEmptyGradebook(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: models.Collection{}}, nil)

	overview, _, err := svc.Overview(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, overview.CumulativeGPA)
	assert.Nil(t, overview.CurrentSemester)
	assert.Zero(t, overview.SemesterCount)
}

func TestStatsOverviewPropagatesLoadError(t *testing.T) {
	svc := NewStatsService(&fakeLoader{err: errors.New("load failed")}, nil)

	_, _, err := svc.Overview(context.Background(), "user-1")
	require.Error(t, err)
}

func TestStatsOverviewReportsSnapshotHit(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection(), cacheHit: true}, nil)

	_, cacheHit, err := svc.Overview(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, cacheHit)
}

func TestStatsSemester(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection()}, nil)

	result, _, err := svc.Semester(context.Background(), "user-1", "sem-1")
	require.NoError(t, err)

	assert.Equal(t, "Fall", result.Term)
	assert.Equal(t, 6.0, result.Stats.Credits)
	require.NotNil(t, result.Stats.GPA)
	assert.InDelta(t, 3.0, *result.Stats.GPA, 1e-9)

	require.Len(t, result.Courses, 2)
	require.NotNil(t, result.Courses[0].Grade)
	assert.Equal(t, "A", result.Courses[0].Grade.Letter)
	assert.True(t, result.Courses[0].FullyGraded)
}

func TestStatsSemesterNotFound(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection()}, nil)

	_, _, err := svc.Semester(context.Background(), "user-1", "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStatsCourse(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection()}, nil)

	result, _, err := svc.Course(context.Background(), "user-1", "sem-2", "course-3")
	require.NoError(t, err)

	assert.Equal(t, "Databases", result.Name)
	assert.Equal(t, 30.0, result.Metrics.CompletedWeight)
	require.NotNil(t, result.Metrics.Percent)
	assert.InDelta(t, 85.0, *result.Metrics.Percent, 1e-9)
	// Partially graded: a band resolves but GPA inclusion is gated.
	require.NotNil(t, result.Grade)
	assert.Equal(t, "A-", result.Grade.Letter)
	assert.False(t, result.FullyGraded)
}

func TestStatsCourseNotFound(t *testing.T) {
	svc := NewStatsService(&fakeLoader{collection: statsCollection()}, nil)

	_, _, err := svc.Course(context.Background(), "user-1", "sem-1", "missing")
	require.Error(t, err)

	_, _, err = svc.Course(context.Background(), "user-1", "missing", "course-1")
	require.Error(t, err)
}
