package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/internal/service"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
	"github.com/noah-isme/gradetrack-api/pkg/storage"
)

type manualQueue struct {
	enqueued []jobs.Job
}

func (m *manualQueue) Enqueue(job jobs.Job) error {
	m.enqueued = append(m.enqueued, job)
	return nil
}

func newExportRouter(t *testing.T, userID string) (*gin.Engine, *service.TranscriptService, *manualQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	collection := models.Collection{
		{ID: "sem-1", Term: "Fall", Year: 2024, Courses: []models.Course{gradedCourse("algebra", 3, 91)}},
	}
	exporter := service.NewExportService(&staticLoader{collection: collection}, store, signer, service.ExportConfig{
		APIPrefix: "/api/v1",
		ResultTTL: time.Hour,
	}, nil, nil, nil)

	queue := &manualQueue{}
	transcripts := service.NewTranscriptService(queue, exporter, nil, service.TranscriptServiceConfig{
		ResultTTL:  time.Hour,
		MaxRetries: 3,
	})

	h := NewExportHandler(transcripts)
	r := gin.New()
	r.Use(authAs(userID))
	r.POST("/exports", h.Create)
	r.GET("/exports/:jobID", h.Status)
	r.GET("/exports/:jobID/download", h.Download)
	return r, transcripts, queue
}

func TestExportCreateQueuesJob(t *testing.T) {
	r, _, queue := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodPost, "/exports", `{"format":"csv"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var envelope struct {
		Data models.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, models.ExportStatusQueued, envelope.Data.Status)
	assert.Len(t, queue.enqueued, 1)
}

func TestExportCreateRejectsBadFormat(t *testing.T) {
	r, _, _ := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodPost, "/exports", `{"format":"docx"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportStatusAfterProcessing(t *testing.T) {
	r, transcripts, queue := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodPost, "/exports", `{"format":"csv"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var created struct {
		Data models.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	require.NoError(t, transcripts.Handle(context.Background(), queue.enqueued[0]))

	w = doJSON(t, r, http.MethodGet, "/exports/"+created.Data.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Data models.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.ExportStatusFinished, status.Data.Status)
	require.NotNil(t, status.Data.DownloadURL)
}

func TestExportStatusUnknownJob(t *testing.T) {
	r, _, _ := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodGet, "/exports/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportDownload(t *testing.T) {
	r, transcripts, queue := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodPost, "/exports", `{"format":"csv"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var created struct {
		Data models.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NoError(t, transcripts.Handle(context.Background(), queue.enqueued[0]))

	status, err := transcripts.GetJob(context.Background(), created.Data.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, status.DownloadURL)
	idx := strings.Index(*status.DownloadURL, "token=")
	require.GreaterOrEqual(t, idx, 0)
	token := (*status.DownloadURL)[idx+len("token="):]

	w = doJSON(t, r, http.MethodGet, "/exports/"+created.Data.ID+"/download?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Semester,Course")
}

func TestExportDownloadRequiresToken(t *testing.T) {
	r, _, _ := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodGet, "/exports/some-job/download", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDownloadRejectsForgedToken(t *testing.T) {
	r, transcripts, queue := newExportRouter(t, "user-1")

	w := doJSON(t, r, http.MethodPost, "/exports", `{"format":"csv"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var created struct {
		Data models.ExportJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NoError(t, transcripts.Handle(context.Background(), queue.enqueued[0]))

	w = doJSON(t, r, http.MethodGet, "/exports/"+created.Data.ID+"/download?token=a.b.c.d", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
