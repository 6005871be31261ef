package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stockroom/backend/internal/application/identity"
)

// avatarField is the multipart field carrying the avatar image
const avatarField = "avatar"

// AccountHandler serves the caller's own profile
type AccountHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(userService *identityapp.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

// Me handles GET /me
func (h *AccountHandler) Me(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile handles PUT /me
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UploadAvatar handles POST /me/avatar (multipart/form-data, field "avatar")
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile(avatarField)
	if err != nil {
		h.fieldError(c, avatarField, "An image file is required")
		return
	}
	if fh.Size > identityapp.MaxAvatarSize {
		h.fieldError(c, avatarField, "Image must be at most 2 MB")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, identityapp.MaxAvatarSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	user, err := h.userService.SetAvatar(c.Request.Context(), userID, identityapp.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
