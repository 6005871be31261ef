package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
)

// ExpiryRuleHandler serves expiry alert rules and their product links
type ExpiryRuleHandler struct {
	BaseHandler
	ruleService *catalogapp.ExpiryRuleService
}

// NewExpiryRuleHandler creates a new ExpiryRuleHandler
func NewExpiryRuleHandler(ruleService *catalogapp.ExpiryRuleService) *ExpiryRuleHandler {
	return &ExpiryRuleHandler{ruleService: ruleService}
}

// List handles GET /admin/expiry-rules
func (h *ExpiryRuleHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rules, total, err := h.ruleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, rules, total, page, pageSize)
}

// Create handles POST /admin/expiry-rules
func (h *ExpiryRuleHandler) Create(c *gin.Context) {
	var req catalogapp.ExpiryRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rule, err := h.ruleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// Get handles GET /admin/expiry-rules/:id
func (h *ExpiryRuleHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	rule, err := h.ruleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Update handles PUT /admin/expiry-rules/:id
func (h *ExpiryRuleHandler) Update(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ExpiryRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rule, err := h.ruleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Delete handles DELETE /admin/expiry-rules/:id
func (h *ExpiryRuleHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.ruleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ExpiryRuleHandler) ruleAndProduct(c *gin.Context) (ruleID, productID uuid.UUID, ok bool) {
	if ruleID, ok = h.paramUUID(c, "id"); !ok {
		return
	}
	productID, ok = h.paramUUID(c, "product_id")
	return
}

// Attach handles PUT /admin/expiry-rules/:id/products/:product_id
func (h *ExpiryRuleHandler) Attach(c *gin.Context) {
	ruleID, productID, ok := h.ruleAndProduct(c)
	if !ok {
		return
	}
	if err := h.ruleService.Attach(c.Request.Context(), ruleID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Detach handles DELETE /admin/expiry-rules/:id/products/:product_id
func (h *ExpiryRuleHandler) Detach(c *gin.Context) {
	ruleID, productID, ok := h.ruleAndProduct(c)
	if !ok {
		return
	}
	if err := h.ruleService.Detach(c.Request.Context(), ruleID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
