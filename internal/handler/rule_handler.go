package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"acordex/internal/export"
	"acordex/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ruleRequest struct {
	ID              int64  `json:"id"`
	CertificateType string `json:"certificate_type"`
	ProductName     string `json:"product_name"`
	IsActive        *bool  `json:"is_active"`
}

func (r ruleRequest) createInput() service.RuleInput {
	return service.RuleInput{CertificateType: r.CertificateType, ProductName: r.ProductName, IsActive: r.IsActive}
}

func (r ruleRequest) updateInput(id int64) service.UpdateRuleInput {
	return service.UpdateRuleInput{ID: id, CertificateType: r.CertificateType, ProductName: r.ProductName, IsActive: r.IsActive}
}

// RuleHandler handles validation rule management endpoints.
type RuleHandler struct {
	ruleService service.RuleService
	now         func() time.Time
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, now: time.Now}
}

// Create handles POST /api/v1/rules. The body is either one rule or an
// array of rules; an array is stored all or nothing.
func (h *RuleHandler) Create(c *gin.Context) {
	batch, single, ok := bindRules(c)
	if !ok {
		return
	}

	if batch == nil {
		rule, err := h.ruleService.Create(c.Request.Context(), single.createInput())
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondCreated(c, rule)
		return
	}

	inputs := make([]service.RuleInput, len(batch))
	for i, r := range batch {
		inputs[i] = r.createInput()
	}
	rules, err := h.ruleService.CreateBatch(c.Request.Context(), inputs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, rules)
}

// List handles GET /api/v1/rules.
func (h *RuleHandler) List(c *gin.Context) {
	rules, err := h.ruleService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// GetByID handles GET /api/v1/rules/:id.
func (h *RuleHandler) GetByID(c *gin.Context) {
	id, ok := parseRuleID(c)
	if !ok {
		return
	}
	rule, err := h.ruleService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rule)
}

// Update handles PUT /api/v1/rules/:id.
func (h *RuleHandler) Update(c *gin.Context) {
	id, ok := parseRuleID(c)
	if !ok {
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid rule body")
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), req.updateInput(id))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rule)
}

// UpdateBulk handles PUT /api/v1/rules with an array of rules carrying ids.
func (h *RuleHandler) UpdateBulk(c *gin.Context) {
	var req []ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be an array of rules with ids")
		return
	}

	inputs := make([]service.UpdateRuleInput, len(req))
	for i, r := range req {
		inputs[i] = r.updateInput(r.ID)
	}
	rules, err := h.ruleService.UpdateBatch(c.Request.Context(), inputs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// Delete handles DELETE /api/v1/rules/:id.
func (h *RuleHandler) Delete(c *gin.Context) {
	id, ok := parseRuleID(c)
	if !ok {
		return
	}
	rule, err := h.ruleService.Delete(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rule)
}

// DeleteBulk handles DELETE /api/v1/rules with body {"ids": [...]}. Either
// every rule is deleted or none is.
func (h *RuleHandler) DeleteBulk(c *gin.Context) {
	var req struct {
		IDs []int64 `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "ids is required")
		return
	}

	rules, err := h.ruleService.DeleteBatch(c.Request.Context(), req.IDs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// Export handles GET /api/v1/rules/export?format=xlsx|csv.
func (h *RuleHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	rules, err := h.ruleService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("validation_rules", format, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "xlsx" {
		data, err := export.RulesXLSX(rules)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	var buf bytes.Buffer
	buf.Write(export.BOM)
	w := export.NewCSVWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteRules(rules); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.Flush(); err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// bindRules decodes a body holding either a single rule or an array.
func bindRules(c *gin.Context) (batch []ruleRequest, single ruleRequest, ok bool) {
	body, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read body")
		return nil, single, false
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &batch); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be a rule or an array of rules")
			return nil, single, false
		}
		if batch == nil {
			batch = []ruleRequest{}
		}
		return batch, single, true
	}
	if err := json.Unmarshal(body, &single); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be a rule or an array of rules")
		return nil, single, false
	}
	return nil, single, true
}

func parseRuleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "rule id must be an integer")
		return 0, false
	}
	return id, true
}
