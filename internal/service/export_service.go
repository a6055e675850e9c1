package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/pkg/export"
	"github.com/noah-isme/gradetrack-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders transcript datasets and persists the artifacts.
type ExportService struct {
	loader  collectionLoader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(loader collectionLoader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		loader:  loader,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the transcript dataset for the job's owner and stores the
// rendered file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	collection, err := s.loader.Load(ctx, job.OwnerID)
	if err != nil {
		return nil, err
	}
	dataset, title := buildTranscriptDataset(collection)

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/exports/%s/download?token=%s", prefix, job.ID, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("transcript_%s_%s.%s", sanitizeFilename(job.OwnerID), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func buildTranscriptDataset(collection models.Collection) (export.Dataset, string) {
	headers := []string{"Semester", "Course", "Code", "Credits", "Percent", "Grade", "Grade Points", "Progress (%)"}
	rows := make([]map[string]string, 0)
	for _, sem := range collection {
		semLabel := fmt.Sprintf("%s %d", sem.Term, sem.Year)
		for _, course := range sem.Courses {
			metrics := ComputeCourseMetrics(course)
			row := map[string]string{
				"Semester":     semLabel,
				"Course":       course.Name,
				"Code":         course.Code,
				"Credits":      fmt.Sprintf("%.1f", course.Credits),
				"Percent":      "",
				"Grade":        "",
				"Grade Points": "",
				"Progress (%)": fmt.Sprintf("%.1f", metrics.Progress),
			}
			if metrics.Percent != nil {
				row["Percent"] = fmt.Sprintf("%.2f", *metrics.Percent)
			}
			if band := GradeFor(metrics.Percent); band != nil && metrics.FullyGraded() {
				row["Grade"] = band.Letter
				row["Grade Points"] = fmt.Sprintf("%.1f", band.Points)
			}
			rows = append(rows, row)
		}
	}
	if gpa := CumulativeGPA(collection); gpa != nil {
		rows = append(rows, map[string]string{
			"Semester":     "Cumulative",
			"Course":       "",
			"Code":         "",
			"Credits":      "",
			"Percent":      "",
			"Grade":        "",
			"Grade Points": fmt.Sprintf("%.2f", *gpa),
			"Progress (%)": "",
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Transcript"
}
