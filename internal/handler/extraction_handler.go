package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acordex/internal/domain"
	"acordex/internal/service"
)

// extractRequest is the body accepted by the extraction and validation
// endpoints. Fields keep the order they were sent in.
type extractRequest struct {
	Fields     domain.RawFieldMap `json:"fields"`
	PageText   string             `json:"page_text"`
	ForceACORD bool               `json:"force_acord"`
}

func (r *extractRequest) input() *service.ExtractInput {
	return &service.ExtractInput{Fields: r.Fields, PageText: r.PageText, ForceACORD: r.ForceACORD}
}

// ExtractionHandler handles form detection and extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Detect handles POST /api/v1/extractions/detect.
func (h *ExtractionHandler) Detect(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fields must be an object of field names to values")
		return
	}
	RespondOK(c, h.extractionService.Detect(req.Fields))
}

// Extract handles POST /api/v1/extractions.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fields must be an object of field names to values")
		return
	}

	result, err := h.extractionService.Extract(c.Request.Context(), req.input())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
