package service

import (
	"math"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

// GradeBand maps a minimum percentage onto a letter grade and grade points.
type GradeBand struct {
	Min    float64 `json:"min"`
	Letter string  `json:"letter"`
	Points float64 `json:"points"`
}

// gradeScale is ordered descending; lookup takes the first band whose
// minimum the percentage reaches.
var gradeScale = []GradeBand{
	{Min: 90, Letter: "A", Points: 4.0},
	{Min: 85, Letter: "A-", Points: 3.7},
	{Min: 80, Letter: "B+", Points: 3.3},
	{Min: 75, Letter: "B", Points: 3.0},
	{Min: 70, Letter: "B-", Points: 2.7},
	{Min: 65, Letter: "C+", Points: 2.3},
	{Min: 60, Letter: "C", Points: 2.0},
	{Min: 55, Letter: "D", Points: 1.0},
	{Min: 0, Letter: "F", Points: 0.0},
}

// GradeScale returns a copy of the scale for presentation.
func GradeScale() []GradeBand {
	out := make([]GradeBand, len(gradeScale))
	copy(out, gradeScale)
	return out
}

// GradeFor resolves the band for a course percentage. A nil percentage (no
// graded work yet) has no band. Percentages above 100 still land in the top
// band; there is no upper clamp.
func GradeFor(percent *float64) *GradeBand {
	if percent == nil || !isFinitef(*percent) {
		return nil
	}
	for _, band := range gradeScale {
		if *percent >= band.Min {
			b := band
			return &b
		}
	}
	return nil
}

// CourseMetrics aggregates a course's weighted assessments.
type CourseMetrics struct {
	TotalWeight     float64  `json:"total_weight"`
	CompletedWeight float64  `json:"completed_weight"`
	Gained          float64  `json:"gained"`
	Lost            float64  `json:"lost"`
	Percent         *float64 `json:"percent"`
	Progress        float64  `json:"progress"`
}

// ComputeCourseMetrics walks the assessments once. Only assessments carrying
// a score count as completed; the running percentage renormalises over the
// completed weight so ungraded work never drags the figure down.
func ComputeCourseMetrics(course models.Course) CourseMetrics {
	m := CourseMetrics{}
	for _, a := range course.Assessments {
		weight := a.Weight
		if !isFinitef(weight) {
			weight = 0
		}
		m.TotalWeight += weight
		if a.Score == nil || !isFinitef(*a.Score) {
			continue
		}
		m.CompletedWeight += weight
		m.Gained += weight * (*a.Score) / 100
	}
	m.Lost = m.CompletedWeight - m.Gained
	if m.Lost < 0 {
		m.Lost = 0
	}
	if m.CompletedWeight > 0 {
		percent := m.Gained / m.CompletedWeight * 100
		m.Percent = &percent
	}
	if m.TotalWeight > 0 {
		progress := m.CompletedWeight / m.TotalWeight * 100
		m.Progress = math.Min(100, math.Max(0, progress))
	}
	return m
}

// FullyGraded reports whether enough weight is graded for the course to
// carry grade points into GPA figures.
func (m CourseMetrics) FullyGraded() bool {
	return m.CompletedWeight >= 100
}

// SemesterStats summarises one semester for list and detail views.
type SemesterStats struct {
	Credits     float64  `json:"credits"`
	CourseCount int      `json:"course_count"`
	GPA         *float64 `json:"gpa"`
}

// ComputeSemesterStats derives credits, course count and a credit-weighted
// GPA over the semester's fully graded courses.
func ComputeSemesterStats(sem models.Semester) SemesterStats {
	stats := SemesterStats{CourseCount: len(sem.Courses)}
	var pointsSum, gradedCredits float64
	for _, course := range sem.Courses {
		credits := course.Credits
		if !isFinitef(credits) {
			credits = 0
		}
		stats.Credits += credits
		metrics := ComputeCourseMetrics(course)
		if !metrics.FullyGraded() {
			continue
		}
		band := GradeFor(metrics.Percent)
		if band == nil {
			continue
		}
		pointsSum += band.Points * credits
		gradedCredits += credits
	}
	if gradedCredits > 0 {
		gpa := pointsSum / gradedCredits
		stats.GPA = &gpa
	}
	return stats
}

// CumulativeGPA is a single credit-weighted mean over every fully graded
// course in the collection; nil when nothing is fully graded.
func CumulativeGPA(collection models.Collection) *float64 {
	var pointsSum, gradedCredits float64
	for _, sem := range collection {
		for _, course := range sem.Courses {
			metrics := ComputeCourseMetrics(course)
			if !metrics.FullyGraded() {
				continue
			}
			band := GradeFor(metrics.Percent)
			if band == nil {
				continue
			}
			credits := course.Credits
			if !isFinitef(credits) {
				credits = 0
			}
			pointsSum += band.Points * credits
			gradedCredits += credits
		}
	}
	if gradedCredits == 0 {
		return nil
	}
	gpa := pointsSum / gradedCredits
	return &gpa
}

// CurrentSemester picks the semester flagged current, falling back to the
// highest year. Ties keep the earliest entry, matching insertion order.
func CurrentSemester(collection models.Collection) *models.Semester {
	if len(collection) == 0 {
		return nil
	}
	for i := range collection {
		if collection[i].Current {
			sem := collection[i].Clone()
			return &sem
		}
	}
	best := 0
	for i := 1; i < len(collection); i++ {
		if collection[i].Year > collection[best].Year {
			best = i
		}
	}
	sem := collection[best].Clone()
	return &sem
}

func isFinitef(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
