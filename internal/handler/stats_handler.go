package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/middleware"
	"github.com/noah-isme/gradetrack-api/internal/service"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

// StatsHandler exposes derived gradebook aggregates.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview godoc
// @Summary Gradebook overview with cumulative GPA and current semester
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gradebook/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.stats.Overview(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, statsMeta(c, cacheHit, start))
}

// Semester godoc
// @Summary Semester stats with per-course breakdown
// @Tags Stats
// @Produce json
// @Param semesterID path string true "Semester id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/stats [get]
func (h *StatsHandler) Semester(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.stats.Semester(c.Request.Context(), ownerID, c.Param("semesterID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, statsMeta(c, cacheHit, start))
}

// Course godoc
// @Summary Course metrics and resolved grade band
// @Tags Stats
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID}/stats [get]
func (h *StatsHandler) Course(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.stats.Course(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, statsMeta(c, cacheHit, start))
}

// Scale godoc
// @Summary The fixed grade scale
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gradebook/scale [get]
func (h *StatsHandler) Scale(c *gin.Context) {
	response.JSON(c, http.StatusOK, service.GradeScale())
}

// statsMeta records the cache-hit flag and processing time before the
// envelope is written; the post-request middleware hook fires too late.
func statsMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	return meta
}
