package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/middleware"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	respondError(c, status, &APIError{Code: code, Message: msg})
}

func respondError(c *gin.Context, status int, apiErr *APIError) {
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateRulesInRequest):
		return http.StatusConflict, "DUPLICATE_RULES_IN_REQUEST", err.Error()
	case errors.Is(err, domain.ErrDuplicateRule):
		return http.StatusConflict, "DUPLICATE_RULE", err.Error()
	case errors.Is(err, domain.ErrRuleNotFound):
		return http.StatusNotFound, "RULE_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrInvalidRule):
		return http.StatusBadRequest, "INVALID_RULE", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, domain.ErrOrganizerUnavailable):
		return http.StatusServiceUnavailable, "ORGANIZER_UNAVAILABLE", "organizer unavailable"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "REQUEST_CANCELED", "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// ErrorDetails returns the machine-readable part of detail-carrying errors:
// the conflicting indices, the existing rule or the missing ids.
func ErrorDetails(err error) interface{} {
	var (
		inRequest *domain.DuplicateRulesInRequestError
		duplicate *domain.DuplicateRuleError
		notFound  *domain.RuleNotFoundError
		invalid   *domain.InvalidRuleError
	)
	switch {
	case errors.As(err, &inRequest):
		return gin.H{"conflicts": inRequest.Conflicts}
	case errors.As(err, &duplicate):
		return gin.H{
			"index":            duplicate.Index,
			"existing_id":      duplicate.ExistingID,
			"certificate_type": duplicate.CertificateType,
			"product_name":     duplicate.ProductName,
			"conflicts":        duplicate.All(),
		}
	case errors.As(err, &notFound):
		return gin.H{"ids": notFound.IDs}
	case errors.As(err, &invalid):
		return gin.H{"index": invalid.Index, "reason": invalid.Reason}
	}
	return nil
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		zap.L().Error("internal error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
	}
	respondError(c, status, &APIError{Code: code, Message: msg, Details: ErrorDetails(err)})
}
