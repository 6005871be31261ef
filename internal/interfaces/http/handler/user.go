package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/stockroom/backend/internal/application/identity"
)

// UserHandler handles user administration
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SetActiveRequest toggles whether a user may sign in
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// List handles GET /admin/users
func (h *UserHandler) List(c *gin.Context) {
	var filter identityapp.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageResponse(c, page)
}

// Roles handles GET /admin/roles
func (h *UserHandler) Roles(c *gin.Context) {
	roles, err := h.userService.ListRoles(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}

// AssignRole handles PUT /admin/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req identityapp.AssignRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.AssignRole(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// SetActive handles PUT /admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if self, _ := h.currentUser(c); self == id && !*req.Active {
		h.fieldError(c, "active", "You cannot deactivate your own account")
		return
	}
	user, err := h.userService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
