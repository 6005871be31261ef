package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves checkout, order history and the staff order board
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) actor(c *gin.Context) (orderapp.Actor, bool) {
	userID, ok := h.currentUser(c)
	if !ok {
		return orderapp.Actor{}, false
	}
	return orderapp.Actor{UserID: userID, Staff: middleware.IsStaff(c)}, true
}

// Place handles POST /orders: turns the caller's cart into an order.
// A stock shortage answers 422 naming the product and leaves the cart intact.
func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, middleware.GetCartSessionKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListMine handles GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter orderapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, page)
}

// Get handles GET /orders/:id and GET /admin/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /orders/:id/cancel and restores stock
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListAll handles GET /admin/orders?status=&user_id=
func (h *OrderHandler) ListAll(c *gin.Context) {
	var filter orderapp.AdminListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, page)
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
