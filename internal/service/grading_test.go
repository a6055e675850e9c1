package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

func scorePtr(v float64) *float64 {
	return &v
}

func TestGradeForBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		percent float64
		letter  string
		points  float64
	}{
		{"exact A cutoff", 90, "A", 4.0},
		{"just below A", 89.99, "A-", 3.7},
		{"exact A- cutoff", 85, "A-", 3.7},
		{"exact B+ cutoff", 80, "B+", 3.3},
		{"exact B cutoff", 75, "B", 3.0},
		{"exact B- cutoff", 70, "B-", 2.7},
		{"exact C+ cutoff", 65, "C+", 2.3},
		{"exact C cutoff", 60, "C", 2.0},
		{"exact D cutoff", 55, "D", 1.0},
		{"just below D", 54.99, "F", 0.0},
		{"zero", 0, "F", 0.0},
		{"above hundred keeps top band", 112.5, "A", 4.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			band := GradeFor(scorePtr(tc.percent))
			require.NotNil(t, band)
			assert.Equal(t, tc.letter, band.Letter)
			assert.Equal(t, tc.points, band.Points)
		})
	}
}

func TestGradeForNilAndNonFinite(t *testing.T) {
	assert.Nil(t, GradeFor(nil))
	assert.Nil(t, GradeFor(scorePtr(-1)))
	assert.Nil(t, GradeFor(scorePtr(math.NaN())))
	assert.Nil(t, GradeFor(scorePtr(math.Inf(1))))
}

func TestGradeScaleReturnsCopy(t *testing.T) {
	scale := GradeScale()
	require.Len(t, scale, 9)
	scale[0].Letter = "mutated"
	assert.Equal(t, "A", GradeScale()[0].Letter)
}

func TestComputeCourseMetricsRenormalises(t *testing.T) {
	course := models.Course{
		Assessments: []models.Assessment{
			{ID: "a1", Weight: 40, Score: scorePtr(80)},
			{ID: "a2", Weight: 30, Score: scorePtr(90)},
			{ID: "a3", Weight: 30, Score: nil},
		},
	}
	m := ComputeCourseMetrics(course)
	assert.Equal(t, 100.0, m.TotalWeight)
	assert.Equal(t, 70.0, m.CompletedWeight)
	assert.InDelta(t, 59.0, m.Gained, 1e-9)
	assert.InDelta(t, 11.0, m.Lost, 1e-9)
	require.NotNil(t, m.Percent)
	// Percentage over the completed 70 points, not the full 100.
	assert.InDelta(t, 84.2857142857, *m.Percent, 1e-6)
	assert.InDelta(t, 70.0, m.Progress, 1e-9)
	assert.False(t, m.FullyGraded())
}

func TestComputeCourseMetricsNoScores(t *testing.T) {
	course := models.Course{
		Assessments: []models.Assessment{
			{ID: "a1", Weight: 50},
			{ID: "a2", Weight: 50},
		},
	}
	m := ComputeCourseMetrics(course)
	assert.Equal(t, 100.0, m.TotalWeight)
	assert.Equal(t, 0.0, m.CompletedWeight)
	assert.Nil(t, m.Percent)
	assert.Equal(t, 0.0, m.Progress)
	assert.False(t, m.FullyGraded())
}

func TestComputeCourseMetricsEmptyCourse(t *testing.T) {
	m := ComputeCourseMetrics(models.Course{})
	assert.Equal(t, 0.0, m.TotalWeight)
	assert.Nil(t, m.Percent)
	assert.Equal(t, 0.0, m.Progress)
}

func TestComputeCourseMetricsOverweight(t *testing.T) {
	course := models.Course{
		Assessments: []models.Assessment{
			{ID: "a1", Weight: 80, Score: scorePtr(100)},
			{ID: "a2", Weight: 60, Score: scorePtr(50)},
		},
	}
	m := ComputeCourseMetrics(course)
	assert.Equal(t, 140.0, m.TotalWeight)
	assert.Equal(t, 140.0, m.CompletedWeight)
	assert.InDelta(t, 110.0, m.Gained, 1e-9)
	require.NotNil(t, m.Percent)
	assert.InDelta(t, 78.5714285714, *m.Percent, 1e-6)
	// Progress clamps at 100 even when weights exceed it.
	assert.Equal(t, 100.0, m.Progress)
	assert.True(t, m.FullyGraded())
}

func TestComputeCourseMetricsIgnoresNonFinite(t *testing.T) {
	course := models.Course{
		Assessments: []models.Assessment{
			{ID: "a1", Weight: math.NaN(), Score: scorePtr(90)},
			{ID: "a2", Weight: 100, Score: scorePtr(math.Inf(1))},
			{ID: "a3", Weight: 100, Score: scorePtr(80)},
		},
	}
	m := ComputeCourseMetrics(course)
	assert.Equal(t, 200.0, m.TotalWeight)
	assert.Equal(t, 100.0, m.CompletedWeight)
	require.NotNil(t, m.Percent)
	assert.InDelta(t, 80.0, *m.Percent, 1e-9)
}

func fullyGradedCourse(id string, credits, percent float64) models.Course {
	return models.Course{
		ID:      id,
		Credits: credits,
		Assessments: []models.Assessment{
			{ID: id + "-a", Weight: 100, Score: scorePtr(percent)},
		},
	}
}

func TestComputeSemesterStats(t *testing.T) {
	sem := models.Semester{
		Courses: []models.Course{
			fullyGradedCourse("math", 4, 92),  // A, 4.0
			fullyGradedCourse("phys", 2, 76),  // B, 3.0
			{ID: "wip", Credits: 3, Assessments: []models.Assessment{{ID: "w", Weight: 50, Score: scorePtr(100)}}},
		},
	}
	stats := ComputeSemesterStats(sem)
	assert.Equal(t, 9.0, stats.Credits)
	assert.Equal(t, 3, stats.CourseCount)
	require.NotNil(t, stats.GPA)
	// (4*4.0 + 2*3.0) / 6; the in-progress course carries no grade points.
	assert.InDelta(t, 22.0/6.0, *stats.GPA, 1e-9)
}

func TestComputeSemesterStatsNoGradedCourses(t *testing.T) {
	sem := models.Semester{
		Courses: []models.Course{
			{ID: "c1", Credits: 3},
		},
	}
	stats := ComputeSemesterStats(sem)
	assert.Equal(t, 3.0, stats.Credits)
	assert.Nil(t, stats.GPA)
}

func TestCumulativeGPAAcrossSemesters(t *testing.T) {
	collection := models.Collection{
		{ID: "s1", Year: 2023, Courses: []models.Course{
			fullyGradedCourse("c1", 3, 95), // A, 4.0
		}},
		{ID: "s2", Year: 2024, Courses: []models.Course{
			fullyGradedCourse("c2", 3, 62), // C, 2.0
			{ID: "c3", Credits: 5},         // ungraded, excluded
		}},
	}
	gpa := CumulativeGPA(collection)
	require.NotNil(t, gpa)
	assert.InDelta(t, 3.0, *gpa, 1e-9)
}

func TestCumulativeGPAEmpty(t *testing.T) {
	assert.Nil(t, CumulativeGPA(models.Collection{}))
	assert.Nil(t, CumulativeGPA(models.Collection{{ID: "s1", Courses: []models.Course{{ID: "c1", Credits: 3}}}}))
}

func TestCumulativeGPAZeroCreditCoursesOnly(t *testing.T) {
	collection := models.Collection{
		{ID: "s1", Courses: []models.Course{fullyGradedCourse("c1", 0, 90)}},
	}
	assert.Nil(t, CumulativeGPA(collection))
}

func TestCurrentSemesterPrefersFlag(t *testing.T) {
	collection := models.Collection{
		{ID: "s1", Year: 2025},
		{ID: "s2", Year: 2023, Current: true},
		{ID: "s3", Year: 2024, Current: true},
	}
	current := CurrentSemester(collection)
	require.NotNil(t, current)
	assert.Equal(t, "s2", current.ID)
}

func TestCurrentSemesterFallsBackToLatestYear(t *testing.T) {
	collection := models.Collection{
		{ID: "s1", Year: 2023},
		{ID: "s2", Year: 2025},
		{ID: "s3", Year: 2025},
	}
	current := CurrentSemester(collection)
	require.NotNil(t, current)
	// First entry wins the year tie.
	assert.Equal(t, "s2", current.ID)
}

func TestCurrentSemesterEmpty(t *testing.T) {
	assert.Nil(t, CurrentSemester(nil))
	assert.Nil(t, CurrentSemester(models.Collection{}))
}

func TestHalfGradedCourseKeepsGradedSlicePercent(t *testing.T) {
	course := models.Course{
		Assessments: []models.Assessment{
			{ID: "a1", Weight: 50, Score: scorePtr(80)},
			{ID: "a2", Weight: 50},
		},
	}
	m := ComputeCourseMetrics(course)
	require.NotNil(t, m.Percent)
	assert.InDelta(t, 80.0, *m.Percent, 1e-9)
	assert.False(t, m.FullyGraded())
}

func TestFallSemesterScenario(t *testing.T) {
	sem := models.Semester{
		ID:   "fall-2024",
		Term: "Fall",
		Year: 2024,
		Courses: []models.Course{
			{
				ID:      "c1",
				Credits: 3,
				Assessments: []models.Assessment{
					{ID: "a1", Weight: 60, Score: scorePtr(90)},
					{ID: "a2", Weight: 40, Score: scorePtr(70)},
				},
			},
		},
	}
	m := ComputeCourseMetrics(sem.Courses[0])
	require.NotNil(t, m.Percent)
	assert.InDelta(t, 82.0, *m.Percent, 1e-9)
	assert.True(t, m.FullyGraded())

	band := GradeFor(m.Percent)
	require.NotNil(t, band)
	assert.Equal(t, "B+", band.Letter)
	assert.Equal(t, 3.3, band.Points)

	stats := ComputeSemesterStats(sem)
	require.NotNil(t, stats.GPA)
	assert.InDelta(t, 3.3, *stats.GPA, 1e-9)
}

func TestCurrentSemesterReturnsDetachedCopy(t *testing.T) {
	collection := models.Collection{
		{ID: "s1", Year: 2024, Courses: []models.Course{{ID: "c1", Name: "Algebra"}}},
	}
	current := CurrentSemester(collection)
	require.NotNil(t, current)
	current.Courses[0].Name = "mutated"
	assert.Equal(t, "Algebra", collection[0].Courses[0].Name)
}
