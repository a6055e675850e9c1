package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/service"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

// GradebookHandler exposes the gradebook document and its mutations.
type GradebookHandler struct {
	gradebooks *service.GradebookService
}

// NewGradebookHandler constructs the handler.
func NewGradebookHandler(gradebooks *service.GradebookService) *GradebookHandler {
	return &GradebookHandler{gradebooks: gradebooks}
}

// Get godoc
// @Summary Fetch the authenticated user's gradebook
// @Tags Gradebook
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gradebook [get]
func (h *GradebookHandler) Get(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.Load(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// Clear godoc
// @Summary Delete all gradebook data for the authenticated user
// @Tags Gradebook
// @Success 204
// @Router /gradebook [delete]
func (h *GradebookHandler) Clear(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	if err := h.gradebooks.Clear(c.Request.Context(), ownerID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSemester godoc
// @Summary Append a semester
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param payload body service.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Router /gradebook/semesters [post]
func (h *GradebookHandler) AddSemester(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	var req service.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collection, err := h.gradebooks.AddSemester(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collection)
}

// DeleteSemester godoc
// @Summary Delete a semester and its courses
// @Tags Gradebook
// @Produce json
// @Param semesterID path string true "Semester id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID} [delete]
func (h *GradebookHandler) DeleteSemester(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.DeleteSemester(c.Request.Context(), ownerID, c.Param("semesterID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// AddCourse godoc
// @Summary Append a course to a semester
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses [post]
func (h *GradebookHandler) AddCourse(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collection, err := h.gradebooks.AddCourse(c.Request.Context(), ownerID, c.Param("semesterID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collection)
}

// UpdateCourse godoc
// @Summary Patch course fields
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID} [patch]
func (h *GradebookHandler) UpdateCourse(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	patch, ok := rawBody(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.UpdateCourse(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// DeleteCourse godoc
// @Summary Delete a course and its assessments
// @Tags Gradebook
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID} [delete]
func (h *GradebookHandler) DeleteCourse(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.DeleteCourse(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// AddAssessment godoc
// @Summary Append an assessment to a course
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Param payload body service.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID}/assessments [post]
func (h *GradebookHandler) AddAssessment(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	var req service.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collection, err := h.gradebooks.AddAssessment(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collection)
}

// UpdateAssessment godoc
// @Summary Patch assessment fields; a null score clears the grade
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Param assessmentID path string true "Assessment id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID}/assessments/{assessmentID} [patch]
func (h *GradebookHandler) UpdateAssessment(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	patch, ok := rawBody(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.UpdateAssessment(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"), c.Param("assessmentID"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// DeleteAssessment godoc
// @Summary Delete an assessment
// @Tags Gradebook
// @Produce json
// @Param semesterID path string true "Semester id"
// @Param courseID path string true "Course id"
// @Param assessmentID path string true "Assessment id"
// @Success 200 {object} response.Envelope
// @Router /gradebook/semesters/{semesterID}/courses/{courseID}/assessments/{assessmentID} [delete]
func (h *GradebookHandler) DeleteAssessment(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	collection, err := h.gradebooks.DeleteAssessment(c.Request.Context(), ownerID, c.Param("semesterID"), c.Param("courseID"), c.Param("assessmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection)
}

// rawBody reads the request body as raw JSON for field-presence patches,
// writing the error response on failure.
func rawBody(c *gin.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 || !json.Valid(body) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid patch payload"))
		return nil, false
	}
	return body, true
}
