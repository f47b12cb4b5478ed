package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dolapkampus/backend/internal/services"
	"github.com/dolapkampus/backend/pkg/response"
)

// ProfileHandler serves the authenticated account's own profile.
type ProfileHandler struct {
	users *services.UserService
}

func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.users.Profile(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// PUT /profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req services.UpdateProfileInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
