package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
)

// NutritionHandler serves nutrition facts used by product detail pages
type NutritionHandler struct {
	BaseHandler
	nutritionService *catalogapp.NutritionService
}

// NewNutritionHandler creates a new NutritionHandler
func NewNutritionHandler(nutritionService *catalogapp.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

// List handles GET /admin/nutrition
func (h *NutritionHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	nutrition, total, err := h.nutritionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, nutrition, total, page, pageSize)
}

// Create handles POST /admin/nutrition
func (h *NutritionHandler) Create(c *gin.Context) {
	var req catalogapp.NutritionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	info, err := h.nutritionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Get handles GET /admin/nutrition/:id
func (h *NutritionHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	info, err := h.nutritionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// Update handles PUT /admin/nutrition/:id
func (h *NutritionHandler) Update(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.NutritionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	info, err := h.nutritionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// Delete handles DELETE /admin/nutrition/:id
func (h *NutritionHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.nutritionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
