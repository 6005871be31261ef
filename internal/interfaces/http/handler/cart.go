package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/stockroom/backend/internal/application/cart"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// CartHandler serves the session cart. Routes run behind CartSession.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// View handles GET /cart
func (h *CartHandler) View(c *gin.Context) {
	view, err := h.cartService.View(c.Request.Context(), middleware.GetCartSessionKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Add handles POST /cart; quantities merge into an existing line
func (h *CartHandler) Add(c *gin.Context) {
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.cartService.Add(c.Request.Context(), middleware.GetCartSessionKey(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SetQuantity handles PUT /cart/items/:product_id
func (h *CartHandler) SetQuantity(c *gin.Context) {
	productID, ok := h.paramUUID(c, "product_id")
	if !ok {
		return
	}
	var req cartapp.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	view, err := h.cartService.SetQuantity(c.Request.Context(), middleware.GetCartSessionKey(c), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Remove handles DELETE /cart/items/:product_id
func (h *CartHandler) Remove(c *gin.Context) {
	productID, ok := h.paramUUID(c, "product_id")
	if !ok {
		return
	}
	view, err := h.cartService.Remove(c.Request.Context(), middleware.GetCartSessionKey(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.GetCartSessionKey(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
