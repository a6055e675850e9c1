package models

import "math"

// Semester lifecycle statuses as stored in the gradebook document.
const (
	SemesterStatusInProgress = "In Progress"
	SemesterStatusCompleted  = "Completed"
	SemesterStatusPlanned    = "Planned"
)

// Assessment is a weighted graded item inside a course. Score is a pointer so
// an ungraded assessment serialises as JSON null and an explicit null on
// update clears the grade.
type Assessment struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Weight    float64  `json:"weight"`
	DueDate   string   `json:"dueDate"`
	Completed bool     `json:"completed"`
	Score     *float64 `json:"score"`
}

// GradeDistributionEntry is one slice of a course's planned weighting scheme.
type GradeDistributionEntry struct {
	Grade string  `json:"grade"`
	Value float64 `json:"value"`
}

// Course groups assessments under a semester. Grade and the semester-level
// GPA/Credits fields are legacy document fields kept for wire compatibility;
// consumers derive live values from the aggregation functions instead.
type Course struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Code              string                   `json:"code"`
	Credits           float64                  `json:"credits"`
	Instructor        string                   `json:"instructor"`
	TargetGrade       string                   `json:"targetGrade"`
	Notes             string                   `json:"notes"`
	GradeDistribution []GradeDistributionEntry `json:"gradeDistribution"`
	Grade             *string                  `json:"grade"`
	Assessments       []Assessment             `json:"assessments"`
}

// Semester is one ordered entry of the gradebook collection.
type Semester struct {
	ID      string   `json:"id"`
	Term    string   `json:"term"`
	Year    int      `json:"year"`
	Status  string   `json:"status"`
	GPA     *float64 `json:"gpa"`
	Courses []Course `json:"courses"`
	Credits float64  `json:"credits"`
	Current bool     `json:"current"`
}

// Collection is the full per-user gradebook document, ordered as entered.
type Collection []Semester

// Normalize repairs a collection decoded from an external document: nil
// slices become empty and non-finite numerics collapse to zero so downstream
// aggregation never observes NaN or Inf. It mutates in place and returns the
// receiver for chaining.
func (c Collection) Normalize() Collection {
	for i := range c {
		sem := &c[i]
		if sem.Courses == nil {
			sem.Courses = []Course{}
		}
		sem.Credits = finiteOrZero(sem.Credits)
		if sem.GPA != nil && !isFinite(*sem.GPA) {
			sem.GPA = nil
		}
		for j := range sem.Courses {
			course := &sem.Courses[j]
			if course.Assessments == nil {
				course.Assessments = []Assessment{}
			}
			if course.GradeDistribution == nil {
				course.GradeDistribution = []GradeDistributionEntry{}
			}
			course.Credits = finiteOrZero(course.Credits)
			for k := range course.GradeDistribution {
				course.GradeDistribution[k].Value = finiteOrZero(course.GradeDistribution[k].Value)
			}
			for k := range course.Assessments {
				a := &course.Assessments[k]
				a.Weight = finiteOrZero(a.Weight)
				if a.Score != nil && !isFinite(*a.Score) {
					a.Score = nil
				}
			}
		}
	}
	if c == nil {
		return Collection{}
	}
	return c
}

// Clone returns a deep copy so mutation functions can stay copy-on-write.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, sem := range c {
		out[i] = sem.Clone()
	}
	return out
}

// Clone deep-copies a semester including its course subtree.
func (s Semester) Clone() Semester {
	out := s
	if s.GPA != nil {
		gpa := *s.GPA
		out.GPA = &gpa
	}
	out.Courses = make([]Course, len(s.Courses))
	for i, course := range s.Courses {
		out.Courses[i] = course.Clone()
	}
	return out
}

// Clone deep-copies a course including its assessments.
func (co Course) Clone() Course {
	out := co
	if co.Grade != nil {
		grade := *co.Grade
		out.Grade = &grade
	}
	out.GradeDistribution = make([]GradeDistributionEntry, len(co.GradeDistribution))
	copy(out.GradeDistribution, co.GradeDistribution)
	out.Assessments = make([]Assessment, len(co.Assessments))
	for i, a := range co.Assessments {
		out.Assessments[i] = a.Clone()
	}
	return out
}

// Clone copies an assessment, detaching the score pointer.
func (a Assessment) Clone() Assessment {
	out := a
	if a.Score != nil {
		score := *a.Score
		out.Score = &score
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteOrZero(f float64) float64 {
	if !isFinite(f) {
		return 0
	}
	return f
}
