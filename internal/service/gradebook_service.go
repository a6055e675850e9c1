package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
)

type gradebookStore interface {
	Fetch(ctx context.Context, ownerID string) (models.Collection, error)
	Save(ctx context.Context, ownerID string, collection models.Collection) error
	Delete(ctx context.Context, ownerID string) error
}

type snapshotStore interface {
	Get(ctx context.Context, ownerID string) (models.Collection, error)
	Set(ctx context.Context, ownerID string, collection models.Collection) error
	Delete(ctx context.Context, ownerID string) error
}

type persistQueue interface {
	Enqueue(job jobs.Job) error
}

// PersistJobType labels gradebook save jobs on the shared queue.
const PersistJobType = "gradebook_save"

// PersistPayload carries the document a queued save should write.
type PersistPayload struct {
	OwnerID    string
	Collection models.Collection
}

// CreateSemesterRequest is the payload for adding a semester.
type CreateSemesterRequest struct {
	Term    string `json:"term" validate:"required,oneof=Winter Summer Spring Fall"`
	Year    int    `json:"year" validate:"required,gte=1900,lte=2200"`
	Status  string `json:"status" validate:"omitempty,oneof=Planned 'In Progress' Completed"`
	Current bool   `json:"current"`
}

// CreateCourseRequest is the payload for adding a course to a semester.
type CreateCourseRequest struct {
	Name              string                          `json:"name" validate:"required"`
	Code              string                          `json:"code"`
	Credits           float64                         `json:"credits" validate:"gte=0"`
	Instructor        string                          `json:"instructor"`
	TargetGrade       string                          `json:"targetGrade"`
	Notes             string                          `json:"notes"`
	GradeDistribution []models.GradeDistributionEntry `json:"gradeDistribution" validate:"omitempty,dive"`
}

// CreateAssessmentRequest is the payload for adding an assessment. Weight may
// exceed 100; the aggregation copes and clients warn instead of blocking.
type CreateAssessmentRequest struct {
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type"`
	Weight    float64  `json:"weight" validate:"gte=0"`
	DueDate   string   `json:"dueDate"`
	Completed bool     `json:"completed"`
	Score     *float64 `json:"score"`
}

// GradebookService orchestrates load, mutation and persistence of per-user
// gradebook documents.
type GradebookService struct {
	store     gradebookStore
	snapshots snapshotStore
	queue     persistQueue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradebookService constructs the service.
func NewGradebookService(store gradebookStore, snapshots snapshotStore, queue persistQueue, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradebookService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{
		store:     store,
		snapshots: snapshots,
		queue:     queue,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Load resolves the owner's collection: the authoritative store wins and
// refreshes the snapshot; an orphaned snapshot seeds the store; otherwise the
// gradebook starts empty.
func (s *GradebookService) Load(ctx context.Context, ownerID string) (models.Collection, error) {
	collection, _, err := s.LoadTracked(ctx, ownerID)
	return collection, err
}

// LoadTracked behaves like Load and additionally reports whether the snapshot
// served the read, for response metadata.
func (s *GradebookService) LoadTracked(ctx context.Context, ownerID string) (models.Collection, bool, error) {
	remote, err := s.store.Fetch(ctx, ownerID)
	if err != nil {
		s.logger.Warn("gradebook fetch failed, falling back to snapshot", zap.String("owner_id", ownerID), zap.Error(err))
		snapshot, snapErr := s.snapshotGet(ctx, ownerID)
		if snapErr != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook")
		}
		return snapshot.Normalize(), true, nil
	}
	if len(remote) > 0 {
		collection := remote.Normalize()
		if err := s.snapshotSet(ctx, ownerID, collection); err != nil {
			s.logger.Warn("snapshot refresh failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
		return collection, false, nil
	}
	snapshot, snapErr := s.snapshotGet(ctx, ownerID)
	if snapErr == nil && len(snapshot) > 0 {
		collection := snapshot.Normalize()
		s.enqueueSave(ctx, ownerID, collection)
		return collection, true, nil
	}
	return models.Collection{}, false, nil
}

// Clear wipes the owner's gradebook in both stores.
func (s *GradebookService) Clear(ctx context.Context, ownerID string) error {
	if err := s.store.Delete(ctx, ownerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear gradebook")
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, ownerID); err != nil {
			s.logger.Warn("snapshot delete failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	return nil
}

// AddSemester validates and appends a new semester.
func (s *GradebookService) AddSemester(ctx context.Context, ownerID string, req CreateSemesterRequest) (models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.SemesterStatusPlanned
	}
	sem := models.Semester{
		ID:      uuid.NewString(),
		Term:    req.Term,
		Year:    req.Year,
		Status:  status,
		Courses: []models.Course{},
		Current: req.Current,
	}
	updated := AddSemester(collection, sem)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// DeleteSemester removes a semester and its subtree. Unknown ids are no-ops.
func (s *GradebookService) DeleteSemester(ctx context.Context, ownerID, semesterID string) (models.Collection, error) {
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	updated := DeleteSemester(collection, semesterID)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// AddCourse validates and appends a course under the semester.
func (s *GradebookService) AddCourse(ctx context.Context, ownerID, semesterID string, req CreateCourseRequest) (models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dist := req.GradeDistribution
	if dist == nil {
		dist = []models.GradeDistributionEntry{}
	}
	course := models.Course{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Code:              req.Code,
		Credits:           req.Credits,
		Instructor:        req.Instructor,
		TargetGrade:       req.TargetGrade,
		Notes:             req.Notes,
		GradeDistribution: dist,
		Assessments:       []models.Assessment{},
	}
	updated := AddCourse(collection, semesterID, course)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// UpdateCourse applies a field-presence patch.
func (s *GradebookService) UpdateCourse(ctx context.Context, ownerID, semesterID, courseID string, patch json.RawMessage) (models.Collection, error) {
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	updated, err := UpdateCourse(collection, semesterID, courseID, patch)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// DeleteCourse removes a course and its assessments.
func (s *GradebookService) DeleteCourse(ctx context.Context, ownerID, semesterID, courseID string) (models.Collection, error) {
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	updated := DeleteCourse(collection, semesterID, courseID)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// AddAssessment validates and appends an assessment under the course.
func (s *GradebookService) AddAssessment(ctx context.Context, ownerID, semesterID, courseID string, req CreateAssessmentRequest) (models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	kind := req.Type
	if kind == "" {
		kind = "Assignment"
	}
	a := models.Assessment{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      kind,
		Weight:    req.Weight,
		DueDate:   req.DueDate,
		Completed: req.Completed,
		Score:     req.Score,
	}
	updated := AddAssessment(collection, semesterID, courseID, a)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// UpdateAssessment applies a field-presence patch; an explicit null score
// clears the grade.
func (s *GradebookService) UpdateAssessment(ctx context.Context, ownerID, semesterID, courseID, assessmentID string, patch json.RawMessage) (models.Collection, error) {
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	updated, err := UpdateAssessment(collection, semesterID, courseID, assessmentID, patch)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// DeleteAssessment removes an assessment.
func (s *GradebookService) DeleteAssessment(ctx context.Context, ownerID, semesterID, courseID, assessmentID string) (models.Collection, error) {
	collection, err := s.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	updated := DeleteAssessment(collection, semesterID, courseID, assessmentID)
	s.persist(ctx, ownerID, updated)
	return updated, nil
}

// HandlePersistJob is the queue handler flushing documents to the store.
func (s *GradebookService) HandlePersistJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(PersistPayload)
	if !ok {
		s.logger.Error("unexpected persist payload", zap.String("job_id", job.ID))
		return nil
	}
	start := time.Now()
	err := s.store.Save(ctx, payload.OwnerID, payload.Collection)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("gradebook_save", time.Since(start))
		s.metrics.RecordPersist(err == nil)
	}
	return err
}

// persist writes the snapshot synchronously and schedules the authoritative
// save. Failures are logged; the mutated collection already returned to the
// caller stays valid regardless.
func (s *GradebookService) persist(ctx context.Context, ownerID string, collection models.Collection) {
	if err := s.snapshotSet(ctx, ownerID, collection); err != nil {
		s.logger.Warn("snapshot write failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
	s.enqueueSave(ctx, ownerID, collection)
}

func (s *GradebookService) enqueueSave(ctx context.Context, ownerID string, collection models.Collection) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    PersistJobType,
		Payload: PersistPayload{OwnerID: ownerID, Collection: collection.Clone()},
	}
	if s.queue == nil {
		if err := s.store.Save(ctx, ownerID, collection); err != nil {
			s.logger.Error("gradebook save failed", zap.String("owner_id", ownerID), zap.Error(err))
			if s.metrics != nil {
				s.metrics.RecordPersist(false)
			}
		} else if s.metrics != nil {
			s.metrics.RecordPersist(true)
		}
		return
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("persist enqueue failed, saving inline", zap.String("owner_id", ownerID), zap.Error(err))
		if saveErr := s.store.Save(ctx, ownerID, collection); saveErr != nil {
			s.logger.Error("gradebook save failed", zap.String("owner_id", ownerID), zap.Error(saveErr))
		}
	}
}

func (s *GradebookService) snapshotGet(ctx context.Context, ownerID string) (models.Collection, error) {
	if s.snapshots == nil {
		return nil, appErrors.ErrCacheMiss
	}
	start := time.Now()
	snapshot, err := s.snapshots.Get(ctx, ownerID)
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	}
	return snapshot, err
}

func (s *GradebookService) snapshotSet(ctx context.Context, ownerID string, collection models.Collection) error {
	if s.snapshots == nil {
		return nil
	}
	start := time.Now()
	err := s.snapshots.Set(ctx, ownerID, collection)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return err
}
