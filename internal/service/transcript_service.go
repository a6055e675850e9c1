package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type transcriptGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportJobType labels transcript jobs on the export queue.
const ExportJobType = "transcript_export"

// TranscriptServiceConfig governs retries and artifact cleanup.
type TranscriptServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// TranscriptDownload aggregates resolved download data.
type TranscriptDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// TranscriptService manages transcript export jobs. The registry is held in
// memory: single node, jobs do not survive a restart.
type TranscriptService struct {
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      TranscriptServiceConfig

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewTranscriptService constructs the service.
func NewTranscriptService(queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg TranscriptServiceConfig) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &TranscriptService{
		queue:    queue,
		exporter: exporter,
		logger:   logger,
		cfg:      cfg,
		jobs:     make(map[string]*models.ExportJob),
	}
}

// CreateJob registers a job for the owner and enqueues generation.
func (s *TranscriptService) CreateJob(ctx context.Context, ownerID string, format models.ExportFormat) (*models.ExportJob, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		s.markFailed(job.ID, "failed to enqueue export job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return s.snapshotJob(job.ID), nil
}

// GetJob returns job metadata for its owner. Jobs of other owners are
// reported as missing rather than forbidden.
func (s *TranscriptService) GetJob(ctx context.Context, jobID, ownerID string) (*models.ExportJob, error) {
	job := s.snapshotJob(jobID)
	if job == nil || job.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// ResolveDownload validates the signed token and opens the stored artifact.
func (s *TranscriptService) ResolveDownload(ctx context.Context, jobID, token string) (*TranscriptDownload, error) {
	tokenJobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil || tokenJobID != jobID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job := s.snapshotJob(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &TranscriptDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// Handle processes a queue job, rendering and storing the transcript.
func (s *TranscriptService) Handle(ctx context.Context, job jobs.Job) error {
	record := s.snapshotJob(job.ID)
	if record == nil {
		s.logger.Warn("export job missing from registry", zap.String("job_id", job.ID))
		return nil
	}
	s.setStatus(job.ID, models.ExportStatusProcessing)

	result, err := s.exporter.Generate(ctx, record)
	if err != nil {
		if job.Attempt >= s.cfg.MaxRetries {
			s.markFailed(job.ID, err.Error())
		}
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.jobs[job.ID]; ok {
		stored.Status = models.ExportStatusFinished
		stored.FilePath = result.RelativePath
		stored.DownloadURL = &result.URL
		stored.ExpiresAt = &result.ExpiresAt
		stored.FinishedAt = &now
		stored.ErrorMessage = nil
	}
	s.mu.Unlock()
	return nil
}

// StartCleanup boots a goroutine that purges expired artifacts and registry
// entries periodically.
func (s *TranscriptService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *TranscriptService) cleanupExpired() {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.FinishedAt == nil || job.FinishedAt.After(cutoff) {
			continue
		}
		if job.FilePath != "" {
			if err := s.exporter.Delete(job.FilePath); err != nil {
				s.logger.Warn("cleanup delete failed", zap.String("job_id", id), zap.Error(err))
			}
		}
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
}

func (s *TranscriptService) snapshotJob(jobID string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *TranscriptService) setStatus(jobID string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
	}
}

func (s *TranscriptService) markFailed(jobID, message string) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = models.ExportStatusFailed
		job.ErrorMessage = &message
		job.FinishedAt = &now
	}
}
