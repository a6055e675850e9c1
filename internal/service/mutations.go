package service

import (
	"encoding/json"
	"strings"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

// Collection mutations are copy-on-write: every function returns a fresh
// collection and never touches the input. Targeting an unknown id yields an
// unchanged copy rather than an error, so callers can treat the result as
// authoritative either way.

// AddSemester appends the semester to the end of the collection.
func AddSemester(c models.Collection, sem models.Semester) models.Collection {
	out := c.Clone()
	return append(out, sem.Clone())
}

// DeleteSemester removes the semester and, implicitly, its whole course
// subtree.
func DeleteSemester(c models.Collection, semesterID string) models.Collection {
	out := make(models.Collection, 0, len(c))
	for _, sem := range c {
		if sem.ID == semesterID {
			continue
		}
		out = append(out, sem.Clone())
	}
	return out
}

// AddCourse appends a course to the identified semester.
func AddCourse(c models.Collection, semesterID string, course models.Course) models.Collection {
	out := c.Clone()
	for i := range out {
		if out[i].ID == semesterID {
			out[i].Courses = append(out[i].Courses, course.Clone())
			break
		}
	}
	return out
}

// DeleteCourse removes a course and its assessments.
func DeleteCourse(c models.Collection, semesterID, courseID string) models.Collection {
	out := c.Clone()
	for i := range out {
		if out[i].ID != semesterID {
			continue
		}
		courses := make([]models.Course, 0, len(out[i].Courses))
		for _, course := range out[i].Courses {
			if course.ID == courseID {
				continue
			}
			courses = append(courses, course)
		}
		out[i].Courses = courses
		break
	}
	return out
}

// UpdateCourse applies a field-presence patch to the identified course.
func UpdateCourse(c models.Collection, semesterID, courseID string, patch json.RawMessage) (models.Collection, error) {
	out := c.Clone()
	for i := range out {
		if out[i].ID != semesterID {
			continue
		}
		for j := range out[i].Courses {
			if out[i].Courses[j].ID != courseID {
				continue
			}
			updated, err := applyCoursePatch(out[i].Courses[j], patch)
			if err != nil {
				return nil, err
			}
			out[i].Courses[j] = updated
			return out, nil
		}
		break
	}
	return out, nil
}

// AddAssessment appends an assessment to the identified course.
func AddAssessment(c models.Collection, semesterID, courseID string, a models.Assessment) models.Collection {
	out := c.Clone()
	for i := range out {
		if out[i].ID != semesterID {
			continue
		}
		for j := range out[i].Courses {
			if out[i].Courses[j].ID == courseID {
				out[i].Courses[j].Assessments = append(out[i].Courses[j].Assessments, a.Clone())
				return out
			}
		}
		break
	}
	return out
}

// DeleteAssessment removes an assessment from the identified course.
func DeleteAssessment(c models.Collection, semesterID, courseID, assessmentID string) models.Collection {
	out := c.Clone()
	for i := range out {
		if out[i].ID != semesterID {
			continue
		}
		for j := range out[i].Courses {
			if out[i].Courses[j].ID != courseID {
				continue
			}
			assessments := make([]models.Assessment, 0, len(out[i].Courses[j].Assessments))
			for _, a := range out[i].Courses[j].Assessments {
				if a.ID == assessmentID {
					continue
				}
				assessments = append(assessments, a)
			}
			out[i].Courses[j].Assessments = assessments
			return out
		}
		break
	}
	return out
}

// UpdateAssessment applies a field-presence patch to the identified
// assessment. An explicit JSON null for score clears the grade; an absent
// score key leaves it untouched.
func UpdateAssessment(c models.Collection, semesterID, courseID, assessmentID string, patch json.RawMessage) (models.Collection, error) {
	out := c.Clone()
	for i := range out {
		if out[i].ID != semesterID {
			continue
		}
		for j := range out[i].Courses {
			if out[i].Courses[j].ID != courseID {
				continue
			}
			for k := range out[i].Courses[j].Assessments {
				if out[i].Courses[j].Assessments[k].ID != assessmentID {
					continue
				}
				updated, err := applyAssessmentPatch(out[i].Courses[j].Assessments[k], patch)
				if err != nil {
					return nil, err
				}
				out[i].Courses[j].Assessments[k] = updated
				return out, nil
			}
			return out, nil
		}
		break
	}
	return out, nil
}

func applyCoursePatch(course models.Course, patch json.RawMessage) (models.Course, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(patch, &payload); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "invalid course patch payload")
	}
	if str, ok, err := readString(payload, "name"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "name must be a string")
	} else if ok {
		course.Name = *str
	}
	if str, ok, err := readString(payload, "code"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "code must be a string")
	} else if ok {
		course.Code = *str
	}
	if val, ok, err := readNumber(payload, "credits"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "credits must be a number")
	} else if ok {
		course.Credits = val
	}
	if str, ok, err := readString(payload, "instructor"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "instructor must be a string")
	} else if ok {
		course.Instructor = *str
	}
	if str, ok, err := readString(payload, "targetGrade", "target_grade"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "targetGrade must be a string")
	} else if ok {
		course.TargetGrade = *str
	}
	if str, ok, err := readString(payload, "notes"); err != nil {
		return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "notes must be a string")
	} else if ok {
		course.Notes = *str
	}
	if raw, ok := payload["gradeDistribution"]; ok {
		var dist []models.GradeDistributionEntry
		if err := json.Unmarshal(raw, &dist); err != nil {
			return models.Course{}, appErrors.Clone(appErrors.ErrValidation, "gradeDistribution must be a list of {grade, value}")
		}
		if dist == nil {
			dist = []models.GradeDistributionEntry{}
		}
		course.GradeDistribution = dist
	}
	return course, nil
}

func applyAssessmentPatch(a models.Assessment, patch json.RawMessage) (models.Assessment, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(patch, &payload); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "invalid assessment patch payload")
	}
	if str, ok, err := readString(payload, "name"); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "name must be a string")
	} else if ok {
		a.Name = *str
	}
	if str, ok, err := readString(payload, "type"); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "type must be a string")
	} else if ok {
		a.Type = *str
	}
	if val, ok, err := readNumber(payload, "weight"); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "weight must be a number")
	} else if ok {
		a.Weight = val
	}
	if str, ok, err := readString(payload, "dueDate", "due_date"); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "dueDate must be a string")
	} else if ok {
		a.DueDate = *str
	}
	if val, ok, err := readBool(payload, "completed"); err != nil {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "completed must be a boolean")
	} else if ok {
		a.Completed = val
	}
	if raw, ok := payload["score"]; ok {
		var score *float64
		if err := json.Unmarshal(raw, &score); err != nil {
			return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "score must be a number or null")
		}
		a.Score = score
	}
	return a, nil
}

func readString(payload map[string]json.RawMessage, keys ...string) (*string, bool, error) {
	for _, key := range keys {
		if raw, ok := payload[key]; ok {
			var val string
			if err := json.Unmarshal(raw, &val); err != nil {
				return nil, false, err
			}
			val = strings.TrimSpace(val)
			return &val, true, nil
		}
	}
	return nil, false, nil
}

func readBool(payload map[string]json.RawMessage, keys ...string) (bool, bool, error) {
	for _, key := range keys {
		if raw, ok := payload[key]; ok {
			var val bool
			if err := json.Unmarshal(raw, &val); err != nil {
				return false, false, err
			}
			return val, true, nil
		}
	}
	return false, false, nil
}

func readNumber(payload map[string]json.RawMessage, keys ...string) (float64, bool, error) {
	for _, key := range keys {
		if raw, ok := payload[key]; ok {
			var val float64
			if err := json.Unmarshal(raw, &val); err != nil {
				return 0, false, err
			}
			return val, true, nil
		}
	}
	return 0, false, nil
}
