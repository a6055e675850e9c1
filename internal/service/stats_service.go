package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
)

type collectionLoader interface {
	Load(ctx context.Context, ownerID string) (models.Collection, error)
}

type trackedLoader interface {
	LoadTracked(ctx context.Context, ownerID string) (models.Collection, bool, error)
}

// OverviewStats is the home-screen aggregate for one gradebook.
type OverviewStats struct {
	CumulativeGPA   *float64         `json:"cumulative_gpa"`
	SemesterCount   int              `json:"semester_count"`
	CourseCount     int              `json:"course_count"`
	AssessmentCount int              `json:"assessment_count"`
	CurrentSemester *SemesterSummary `json:"current_semester"`
}

// SemesterSummary pairs a semester's identity with its derived stats.
type SemesterSummary struct {
	ID      string        `json:"id"`
	Term    string        `json:"term"`
	Year    int           `json:"year"`
	Status  string        `json:"status"`
	Current bool          `json:"current"`
	Stats   SemesterStats `json:"stats"`
}

// CourseStatsResult carries course metrics plus the resolved grade band.
type CourseStatsResult struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Credits     float64       `json:"credits"`
	Metrics     CourseMetrics `json:"metrics"`
	Grade       *GradeBand    `json:"grade"`
	FullyGraded bool          `json:"fully_graded"`
}

// SemesterStatsResult is the semester detail aggregate.
type SemesterStatsResult struct {
	SemesterSummary
	Courses []CourseStatsResult `json:"courses"`
}

// StatsService derives read-only aggregates from a loaded gradebook.
type StatsService struct {
	loader trackedLoader
	logger *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(loader trackedLoader, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{loader: loader, logger: logger}
}

// Overview aggregates the whole collection. The second return reports whether
// the snapshot served the underlying read.
func (s *StatsService) Overview(ctx context.Context, ownerID string) (*OverviewStats, bool, error) {
	collection, cacheHit, err := s.loader.LoadTracked(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	overview := &OverviewStats{
		CumulativeGPA: CumulativeGPA(collection),
		SemesterCount: len(collection),
	}
	for _, sem := range collection {
		overview.CourseCount += len(sem.Courses)
		for _, course := range sem.Courses {
			overview.AssessmentCount += len(course.Assessments)
		}
	}
	if current := CurrentSemester(collection); current != nil {
		overview.CurrentSemester = &SemesterSummary{
			ID:      current.ID,
			Term:    current.Term,
			Year:    current.Year,
			Status:  current.Status,
			Current: current.Current,
			Stats:   ComputeSemesterStats(*current),
		}
	}
	return overview, cacheHit, nil
}

// Semester resolves one semester's stats with per-course breakdown.
func (s *StatsService) Semester(ctx context.Context, ownerID, semesterID string) (*SemesterStatsResult, bool, error) {
	collection, cacheHit, err := s.loader.LoadTracked(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	for _, sem := range collection {
		if sem.ID != semesterID {
			continue
		}
		result := &SemesterStatsResult{
			SemesterSummary: SemesterSummary{
				ID:      sem.ID,
				Term:    sem.Term,
				Year:    sem.Year,
				Status:  sem.Status,
				Current: sem.Current,
				Stats:   ComputeSemesterStats(sem),
			},
			Courses: make([]CourseStatsResult, 0, len(sem.Courses)),
		}
		for _, course := range sem.Courses {
			result.Courses = append(result.Courses, courseStats(course))
		}
		return result, cacheHit, nil
	}
	return nil, false, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
}

// Course resolves one course's metrics and grade band.
func (s *StatsService) Course(ctx context.Context, ownerID, semesterID, courseID string) (*CourseStatsResult, bool, error) {
	collection, cacheHit, err := s.loader.LoadTracked(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	for _, sem := range collection {
		if sem.ID != semesterID {
			continue
		}
		for _, course := range sem.Courses {
			if course.ID == courseID {
				result := courseStats(course)
				return &result, cacheHit, nil
			}
		}
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return nil, false, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
}

func courseStats(course models.Course) CourseStatsResult {
	metrics := ComputeCourseMetrics(course)
	return CourseStatsResult{
		ID:          course.ID,
		Name:        course.Name,
		Code:        course.Code,
		Credits:     course.Credits,
		Metrics:     metrics,
		Grade:       GradeFor(metrics.Percent),
		FullyGraded: metrics.FullyGraded(),
	}
}
