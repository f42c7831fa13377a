package handler

import (
	"net/http"

	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login exchanges e-mail and password for an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	u, token, err := auth.Login(c.Request.Context(), h.Store, h.Tokens, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, User: u})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	u, err := h.Store.GetUserByID(c.Request.Context(), actor(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, u)
}
