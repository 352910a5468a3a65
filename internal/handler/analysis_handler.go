package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/mockexam-backend/internal/response"
	"github.com/prepforge/mockexam-backend/internal/service"
)

// AnalysisHandler serves post-exam AI analysis.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Analyze godoc
// POST /api/v1/tests/:test_id/analysis
// Runs analysis for every section that is not yet READY and returns the
// updated states. Sections fail independently; FAILED ones retry on the
// next call.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	ts, err := h.analysisService.Analyze(c.Request.Context(), id)
	if err != nil {
		failAnalysisError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"analysis": ts.Analysis})
}

// AnalyzeSection godoc
// POST /api/v1/tests/:test_id/analysis/:section
// Re-runs analysis for a single section, READY or not.
func (h *AnalysisHandler) AnalyzeSection(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	section, err := strconv.Atoi(c.Param("section"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ts, err := h.analysisService.Analyze(c.Request.Context(), id, section)
	if err != nil {
		failAnalysisError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"analysis": ts.Analysis[section]})
}

// Get godoc
// GET /api/v1/tests/:test_id/analysis
// Returns the stored analysis without triggering AI calls.
func (h *AnalysisHandler) Get(c *gin.Context) {
	id, ok := parseTestID(c)
	if !ok {
		return
	}

	analysis, err := h.analysisService.Get(c.Request.Context(), id)
	if err != nil {
		failAnalysisError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"analysis": analysis})
}

func failAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
	case errors.Is(err, service.ErrAttemptNotScored):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotScored)
	case errors.Is(err, service.ErrAINotConfigured):
		response.Fail(c, http.StatusConflict, response.ErrAINotConfigured)
	case errors.Is(err, service.ErrAnalysisRunning):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrBadSection):
		response.Fail(c, http.StatusBadRequest, response.ErrBadIndex)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
