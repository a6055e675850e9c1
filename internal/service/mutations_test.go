package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

func sampleCollection() models.Collection {
	return models.Collection{
		{
			ID:   "sem-1",
			Term: "Fall",
			Year: 2024,
			Courses: []models.Course{
				{
					ID:                "course-1",
					Name:              "Linear Algebra",
					Credits:           4,
					GradeDistribution: []models.GradeDistributionEntry{},
					Assessments: []models.Assessment{
						{ID: "as-1", Name: "Midterm", Weight: 40, Score: scorePtr(88)},
						{ID: "as-2", Name: "Final", Weight: 60},
					},
				},
			},
		},
		{
			ID:      "sem-2",
			Term:    "Spring",
			Year:    2025,
			Courses: []models.Course{},
		},
	}
}

func TestAddSemesterAppendsWithoutMutatingInput(t *testing.T) {
	original := sampleCollection()
	updated := AddSemester(original, models.Semester{ID: "sem-3", Term: "Winter", Year: 2026})

	require.Len(t, updated, 3)
	assert.Equal(t, "sem-3", updated[2].ID)
	assert.Len(t, original, 2)
}

func TestDeleteSemesterCascades(t *testing.T) {
	original := sampleCollection()
	updated := DeleteSemester(original, "sem-1")

	require.Len(t, updated, 1)
	assert.Equal(t, "sem-2", updated[0].ID)
	// Original keeps the deleted subtree intact.
	require.Len(t, original, 2)
	assert.Len(t, original[0].Courses, 1)
}

func TestDeleteSemesterUnknownIDIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated := DeleteSemester(original, "missing")
	assert.Equal(t, original, updated)
}

func TestAddCourse(t *testing.T) {
	original := sampleCollection()
	updated := AddCourse(original, "sem-2", models.Course{ID: "course-2", Name: "Statistics"})

	require.Len(t, updated[1].Courses, 1)
	assert.Equal(t, "Statistics", updated[1].Courses[0].Name)
	assert.Empty(t, original[1].Courses)
}

func TestAddCourseUnknownSemesterIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated := AddCourse(original, "missing", models.Course{ID: "course-2"})
	assert.Equal(t, original, updated)
}

func TestDeleteCourseCascades(t *testing.T) {
	original := sampleCollection()
	updated := DeleteCourse(original, "sem-1", "course-1")

	assert.Empty(t, updated[0].Courses)
	require.Len(t, original[0].Courses, 1)
	assert.Len(t, original[0].Courses[0].Assessments, 2)
}

func TestDeleteCourseUnknownIDIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated := DeleteCourse(original, "sem-1", "missing")
	assert.Equal(t, original, updated)
}

func TestAddAssessmentLeavesSiblingsUntouched(t *testing.T) {
	original := sampleCollection()
	original[0].Courses = append(original[0].Courses, models.Course{
		ID:                "course-b",
		Name:              "Sibling",
		GradeDistribution: []models.GradeDistributionEntry{},
		Assessments:       []models.Assessment{{ID: "sb-1", Weight: 100}},
	})

	updated := AddAssessment(original, "sem-1", "course-1", models.Assessment{ID: "as-new", Weight: 5})

	require.Len(t, updated[0].Courses[0].Assessments, 3)
	assert.Equal(t, original[0].Courses[1], updated[0].Courses[1])
	assert.Equal(t, original[1], updated[1])
}

func TestAddAssessment(t *testing.T) {
	original := sampleCollection()
	updated := AddAssessment(original, "sem-1", "course-1", models.Assessment{ID: "as-3", Name: "Quiz", Weight: 10})

	require.Len(t, updated[0].Courses[0].Assessments, 3)
	assert.Len(t, original[0].Courses[0].Assessments, 2)
}

func TestAddAssessmentUnknownCourseIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated := AddAssessment(original, "sem-1", "missing", models.Assessment{ID: "as-3"})
	assert.Equal(t, original, updated)
}

func TestDeleteAssessment(t *testing.T) {
	original := sampleCollection()
	updated := DeleteAssessment(original, "sem-1", "course-1", "as-1")

	require.Len(t, updated[0].Courses[0].Assessments, 1)
	assert.Equal(t, "as-2", updated[0].Courses[0].Assessments[0].ID)
}

func TestUpdateCoursePatchesOnlyPresentFields(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"name": "  Advanced Algebra  ", "credits": 3}`)

	updated, err := UpdateCourse(original, "sem-1", "course-1", patch)
	require.NoError(t, err)

	course := updated[0].Courses[0]
	assert.Equal(t, "Advanced Algebra", course.Name)
	assert.Equal(t, 3.0, course.Credits)
	// Untouched fields survive.
	assert.Len(t, course.Assessments, 2)
	assert.Equal(t, "Linear Algebra", original[0].Courses[0].Name)
}

func TestUpdateCourseAcceptsSnakeCaseAliases(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"target_grade": "A-"}`)

	updated, err := UpdateCourse(original, "sem-1", "course-1", patch)
	require.NoError(t, err)
	assert.Equal(t, "A-", updated[0].Courses[0].TargetGrade)
}

func TestUpdateCourseGradeDistribution(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"gradeDistribution": [{"grade": "A", "value": 90}, {"grade": "B", "value": 75}]}`)

	updated, err := UpdateCourse(original, "sem-1", "course-1", patch)
	require.NoError(t, err)
	require.Len(t, updated[0].Courses[0].GradeDistribution, 2)
	assert.Equal(t, 90.0, updated[0].Courses[0].GradeDistribution[0].Value)
}

func TestUpdateCourseRejectsWrongTypes(t *testing.T) {
	original := sampleCollection()
	_, err := UpdateCourse(original, "sem-1", "course-1", json.RawMessage(`{"credits": "four"}`))
	require.Error(t, err)

	_, err = UpdateCourse(original, "sem-1", "course-1", json.RawMessage(`not json at all`))
	require.Error(t, err)
}

func TestUpdateCourseUnknownIDIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated, err := UpdateCourse(original, "sem-1", "missing", json.RawMessage(`{"name": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, original, updated)
}

func TestUpdateAssessmentScore(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"score": 95, "completed": true}`)

	updated, err := UpdateAssessment(original, "sem-1", "course-1", "as-2", patch)
	require.NoError(t, err)

	a := updated[0].Courses[0].Assessments[1]
	require.NotNil(t, a.Score)
	assert.Equal(t, 95.0, *a.Score)
	assert.True(t, a.Completed)
	assert.Nil(t, original[0].Courses[0].Assessments[1].Score)
}

func TestUpdateAssessmentNullScoreClearsGrade(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"score": null}`)

	updated, err := UpdateAssessment(original, "sem-1", "course-1", "as-1", patch)
	require.NoError(t, err)

	a := updated[0].Courses[0].Assessments[0]
	assert.Nil(t, a.Score)
	// Completed is untouched by a score-only patch.
	assert.Equal(t, original[0].Courses[0].Assessments[0].Completed, a.Completed)
}

func TestUpdateAssessmentAbsentScoreLeavesGrade(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"name": "Midterm Exam"}`)

	updated, err := UpdateAssessment(original, "sem-1", "course-1", "as-1", patch)
	require.NoError(t, err)

	a := updated[0].Courses[0].Assessments[0]
	assert.Equal(t, "Midterm Exam", a.Name)
	require.NotNil(t, a.Score)
	assert.Equal(t, 88.0, *a.Score)
}

func TestUpdateAssessmentDueDateAlias(t *testing.T) {
	original := sampleCollection()
	patch := json.RawMessage(`{"due_date": "Oct 12, 2025"}`)

	updated, err := UpdateAssessment(original, "sem-1", "course-1", "as-1", patch)
	require.NoError(t, err)
	assert.Equal(t, "Oct 12, 2025", updated[0].Courses[0].Assessments[0].DueDate)
}

func TestUpdateAssessmentUnknownIDIsNoOp(t *testing.T) {
	original := sampleCollection()
	updated, err := UpdateAssessment(original, "sem-1", "course-1", "missing", json.RawMessage(`{"score": 50}`))
	require.NoError(t, err)
	assert.Equal(t, original, updated)
}
