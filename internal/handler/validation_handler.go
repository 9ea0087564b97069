package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acordex/internal/domain"
	"acordex/internal/service"
)

// ValidationHandler handles rule matching endpoints.
type ValidationHandler struct {
	validationService service.ValidationService
	ruleService       service.RuleService
}

// NewValidationHandler creates a new ValidationHandler.
func NewValidationHandler(validationService service.ValidationService, ruleService service.RuleService) *ValidationHandler {
	return &ValidationHandler{validationService: validationService, ruleService: ruleService}
}

// Validate handles POST /api/v1/validations. It extracts the document and
// matches the result against the rules.
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fields must be an object of field names to values")
		return
	}

	result, err := h.validationService.Validate(c.Request.Context(), req.input())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Match handles POST /api/v1/validations/match for an already extracted
// document.
func (h *ValidationHandler) Match(c *gin.Context) {
	var req struct {
		DocumentType string `json:"document_type" binding:"required"`
		Information  struct {
			CertificateType string `json:"certificate_type"`
			ProductName     string `json:"product_name"`
		} `json:"information"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_type is required")
		return
	}

	result, err := h.ruleService.Match(c.Request.Context(), domain.MatchInput{
		DocumentType:    req.DocumentType,
		CertificateType: req.Information.CertificateType,
		ProductName:     req.Information.ProductName,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
