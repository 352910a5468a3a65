package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/response"
	"github.com/prepforge/mockexam-backend/internal/service"
	"github.com/prepforge/mockexam-backend/internal/validator"
)

// TestHandler handles test management: generation, listing, retests, export.
type TestHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(examService *service.ExamService, attemptService *service.AttemptService) *TestHandler {
	return &TestHandler{examService: examService, attemptService: attemptService}
}

// Generate godoc
// POST /api/v1/tests/generate
// Creates a new mock test from source material. All-or-nothing: a failed
// section generation produces no test at all.
func (h *TestHandler) Generate(c *gin.Context) {
	var req model.GenerateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.examService.Generate(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAINotConfigured):
			response.Fail(c, http.StatusConflict, response.ErrAINotConfigured)
		case errors.Is(err, service.ErrGenerationFailed):
			response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": session})
}

// List godoc
// GET /api/v1/tests
func (h *TestHandler) List(c *gin.Context) {
	summaries, err := h.examService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": summaries})
}

// Get godoc
// GET /api/v1/tests/:test_id
func (h *TestHandler) Get(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	session, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		failTestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": session})
}

// Retest godoc
// POST /api/v1/tests/:test_id/retest
// Creates a fresh attempt over the same question set.
func (h *TestHandler) Retest(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	clone, err := h.examService.Retest(c.Request.Context(), id)
	if err != nil {
		failTestError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": clone})
}

// Delete godoc
// DELETE /api/v1/tests/:test_id
func (h *TestHandler) Delete(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id); err != nil {
		failTestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "test deleted"})
}

// State godoc
// GET /api/v1/tests/:test_id/state
// Returns the live attempt view (session, cursor, pending action).
func (h *TestHandler) State(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	view, err := h.attemptService.State(c.Request.Context(), id)
	if err != nil {
		failTestError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": view})
}

// Export godoc
// GET /api/v1/tests/:test_id/export
// Downloads the full session snapshot as a JSON attachment.
func (h *TestHandler) Export(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	payload, err := h.attemptService.Export(c.Request.Context(), id)
	if err != nil {
		failTestError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="mocktest-%s.json"`, id))
	c.Data(http.StatusOK, "application/json", payload)
}

func parseTestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func failTestError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTestNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
